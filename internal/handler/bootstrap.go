package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/auth"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/metrics"
	"github.com/jonesrussell/tooldex/internal/middleware"
)

// BootstrapHandler exposes the admin claim-elevation endpoint.
type BootstrapHandler struct {
	bootstrapper *auth.Bootstrapper
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewBootstrapHandler creates a BootstrapHandler.
func NewBootstrapHandler(b *auth.Bootstrapper, m *metrics.Metrics, log logger.Logger) *BootstrapHandler {
	return &BootstrapHandler{
		bootstrapper: b,
		metrics:      m,
		logger:       log,
	}
}

// Bootstrap grants admin capability to the caller when the bearer token
// proves ownership of an allow-listed email. Repeat calls are safe.
func (h *BootstrapHandler) Bootstrap(c *gin.Context) {
	token := middleware.BearerToken(c)

	result, err := h.bootstrapper.Elevate(c.Request.Context(), token)
	switch {
	case err == nil:
		// handled below
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		h.metrics.BootstrapAttempts.WithLabelValues("unauthenticated").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	case errors.Is(err, auth.ErrNotAllowed):
		h.metrics.BootstrapAttempts.WithLabelValues("forbidden").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	default:
		h.metrics.BootstrapAttempts.WithLabelValues("error").Inc()
		h.logger.Error("Bootstrap failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bootstrap failed"})
		return
	}

	h.metrics.BootstrapAttempts.WithLabelValues("granted").Inc()
	if result.Already {
		c.JSON(http.StatusOK, gin.H{"ok": true, "already": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
