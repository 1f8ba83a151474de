package domain

import "time"

// ClickEvent represents a single outbound redirect to be tracked.
type ClickEvent struct {
	ToolID          string    `json:"tool_id,omitempty"`
	DestinationHash string    `json:"destination_hash"`
	UserAgentHash   string    `json:"user_agent_hash,omitempty"`
	ClickedAt       time.Time `json:"clicked_at"`
}
