package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/service"
)

// JobHandler handles job listing endpoints.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// List handles GET /api/jobs.
// Query: status, source, limit (1..200, default 50), offset (>= 0).
func (h *JobHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultJobListLimit, 1, service.MaxJobListLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0, int(^uint(0)>>1))
	if !ok {
		return
	}

	list, err := h.jobs.List(c.Request.Context(), service.JobQuery{
		Status: c.Query("status"),
		Source: c.Query("source"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get handles GET /api/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/jobs/:id.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	job, err := h.jobs.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
