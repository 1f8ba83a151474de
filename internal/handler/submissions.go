package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/metrics"
	"github.com/jonesrussell/tooldex/internal/moderation"
	"github.com/jonesrussell/tooldex/internal/storage"
)

// SubmissionsHandler exposes the intake and moderation endpoints.
type SubmissionsHandler struct {
	service *moderation.Service
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewSubmissionsHandler creates a SubmissionsHandler.
func NewSubmissionsHandler(service *moderation.Service, m *metrics.Metrics, log logger.Logger) *SubmissionsHandler {
	return &SubmissionsHandler{
		service: service,
		metrics: m,
		logger:  log,
	}
}

// Submit accepts a new public submission.
func (h *SubmissionsHandler) Submit(c *gin.Context) {
	var req domain.NewSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Submission intake failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store submission"})
		return
	}

	h.metrics.Submissions.Inc()
	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// List returns every submission, most recent first.
func (h *SubmissionsHandler) List(c *gin.Context) {
	subs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list submissions", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// statusRequest is the body for the status transition endpoint.
type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus applies a moderator decision to a pending submission.
func (h *SubmissionsHandler) SetStatus(c *gin.Context) {
	id := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), id, status); err != nil {
		h.respondModerationError(c, err)
		return
	}

	h.metrics.Decisions.WithLabelValues(string(status)).Inc()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Reopen returns a decided submission to the pending state.
func (h *SubmissionsHandler) Reopen(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Reopen(c.Request.Context(), id); err != nil {
		h.respondModerationError(c, err)
		return
	}

	h.metrics.Decisions.WithLabelValues(string(domain.StatusPending)).Inc()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondModerationError maps service errors to status codes. Not-found
// and forbidden are distinct by contract; store failures stay generic.
func (h *SubmissionsHandler) respondModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
	case errors.Is(err, moderation.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, moderation.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Moderation operation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation operation failed"})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrMissingToolName) ||
		errors.Is(err, domain.ErrMissingURL) ||
		errors.Is(err, domain.ErrInvalidURL)
}
