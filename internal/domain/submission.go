// Package domain holds the core types of the tooldex catalog.
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Status is the review state of a submission.
type Status string

// Submission statuses. A submission starts pending and is decided exactly once;
// a decided submission can only change again through an explicit reopen.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Validation errors for submission intake.
var (
	ErrMissingToolName = errors.New("tool name is required")
	ErrMissingURL      = errors.New("website url is required")
	ErrInvalidURL      = errors.New("website url must be an absolute http or https url")
)

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// IsDecision reports whether the status is a moderator decision.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a submission may move from s to next.
// The only allowed transitions are pending -> approved|rejected and, for
// the explicit reopen operation, approved|rejected -> pending.
func (s Status) CanTransition(next Status) bool {
	switch {
	case s == StatusPending && next.IsDecision():
		return true
	case s.IsDecision() && next == StatusPending:
		return true
	default:
		return false
	}
}

// Submission is a proposed tool listing awaiting review.
type Submission struct {
	ID             string    `json:"id"`
	ToolName       string    `json:"toolName"`
	WebsiteURL     string    `json:"websiteUrl"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	SubmitterEmail string    `json:"submitterEmail"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewSubmission is the validated intake payload for a submission.
type NewSubmission struct {
	ToolName       string `json:"toolName"`
	WebsiteURL     string `json:"websiteUrl"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	SubmitterEmail string `json:"submitterEmail"`
}

// Validate enforces required fields at the write boundary so reads never
// have to repair a record.
func (n *NewSubmission) Validate() error {
	if strings.TrimSpace(n.ToolName) == "" {
		return ErrMissingToolName
	}
	if strings.TrimSpace(n.WebsiteURL) == "" {
		return ErrMissingURL
	}
	if !IsHTTPURL(n.WebsiteURL) {
		return ErrInvalidURL
	}
	return nil
}

// IsHTTPURL reports whether raw parses as an absolute http or https URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
