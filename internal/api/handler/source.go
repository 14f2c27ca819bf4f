package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/service"
)

// SourceHandler handles scrape source endpoints.
type SourceHandler struct {
	sources *service.SourceService
}

// NewSourceHandler creates a new source handler.
func NewSourceHandler(sources *service.SourceService) *SourceHandler {
	return &SourceHandler{sources: sources}
}

// List handles GET /api/sources.
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.sources.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(sources), "items": sources})
}

// Create handles POST /api/sources.
func (h *SourceHandler) Create(c *gin.Context) {
	var in service.SourceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	src, err := h.sources.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, src)
}

// Get handles GET /api/sources/:id.
func (h *SourceHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	src, err := h.sources.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, src)
}

// Update handles PATCH /api/sources/:id.
func (h *SourceHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in service.SourceUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	src, err := h.sources.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, src)
}

// Delete handles DELETE /api/sources/:id.
func (h *SourceHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.sources.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type blockRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Block handles POST /api/sources/:id/block.
func (h *SourceHandler) Block(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "reason is required")
		return
	}
	src, err := h.sources.Block(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, src)
}
