package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/cache"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/search"
)

// SearchHandler serves the denormalized tool search payload.
type SearchHandler struct {
	tools  search.ToolLister
	cache  *cache.SearchCache
	logger logger.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(tools search.ToolLister, c *cache.SearchCache, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		tools:  tools,
		cache:  c,
		logger: log,
	}
}

// Tools returns the flattened catalog for client-side fuzzy search,
// served through the Redis cache when warm.
func (h *SearchHandler) Tools(c *gin.Context) {
	ctx := c.Request.Context()

	if data, ok := h.cache.Get(ctx); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	tools, err := h.tools.ListPublished(ctx)
	if err != nil {
		h.logger.Error("Failed to build search payload", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tools"})
		return
	}

	payload := search.BuildPayload(tools)
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode search payload", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode payload"})
		return
	}

	h.cache.Set(ctx, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
