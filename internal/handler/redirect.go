// Package handler contains the gin request handlers for the tooldex API.
package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/metrics"
	"github.com/jonesrussell/tooldex/internal/storage"
)

// uaHashLength is the number of hex characters kept from the user-agent hash.
const uaHashLength = 12

// RedirectHandler handles outbound redirect requests.
type RedirectHandler struct {
	buffer  *storage.Buffer
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewRedirectHandler creates a RedirectHandler with the given dependencies.
func NewRedirectHandler(buffer *storage.Buffer, m *metrics.Metrics, log logger.Logger) *RedirectHandler {
	return &RedirectHandler{
		buffer:  buffer,
		metrics: m,
		logger:  log,
	}
}

// HandleRedirect validates the target URL, records the click, and issues
// a temporary redirect. Any absolute http/https URL is accepted; bot
// traffic is redirected but not recorded.
func (h *RedirectHandler) HandleRedirect(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		h.metrics.RedirectErrors.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	if !domain.IsHTTPURL(rawURL) {
		h.metrics.RedirectErrors.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
		return
	}

	toolID := c.Query("toolId")

	h.logger.Debug("Outbound redirect",
		logger.String("tool_id", toolID),
		logger.String("url", rawURL),
	)

	if !c.GetBool("is_bot") {
		h.recordClick(toolID, rawURL, c.Request.UserAgent())
	}

	c.Redirect(http.StatusFound, rawURL)
}

// recordClick enqueues a click event without blocking the redirect.
func (h *RedirectHandler) recordClick(toolID, rawURL, userAgent string) {
	event := domain.ClickEvent{
		ToolID:          toolID,
		DestinationHash: hashURL(rawURL),
		UserAgentHash:   hashUA(userAgent),
		ClickedAt:       time.Now().UTC(),
	}
	if h.buffer.Send(event) {
		h.metrics.ClicksRecorded.Inc()
		return
	}

	h.metrics.ClicksDropped.Inc()
	h.logger.Warn("Click event buffer full, dropping event",
		logger.String("tool_id", toolID),
	)
}

func hashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

func hashUA(ua string) string {
	if ua == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ua))
	return hex.EncodeToString(sum[:])[:uaHashLength]
}
