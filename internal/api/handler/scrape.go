package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/service"
)

// ScrapeHandler triggers manual scrape runs. Runs are synchronous.
type ScrapeHandler struct {
	scrape *service.ScrapeService
}

// NewScrapeHandler creates a new scrape handler.
func NewScrapeHandler(scrape *service.ScrapeService) *ScrapeHandler {
	return &ScrapeHandler{scrape: scrape}
}

// RunAll handles POST /api/scrape/run.
func (h *ScrapeHandler) RunAll(c *gin.Context) {
	ctx := service.WithTrigger(c.Request.Context(), service.TriggerAPI)
	result, err := h.scrape.RunAllSources(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunSource handles POST /api/scrape/run/:id.
func (h *ScrapeHandler) RunSource(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := service.WithTrigger(c.Request.Context(), service.TriggerAPI)
	result, err := h.scrape.RunSourceByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
