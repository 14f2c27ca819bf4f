package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/scheduler"
)

// ScheduleHandler exposes the automatic run schedule.
type ScheduleHandler struct {
	scheduler *scheduler.Scheduler
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(s *scheduler.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{scheduler: s}
}

// Get handles GET /api/schedule.
func (h *ScheduleHandler) Get(c *gin.Context) {
	sched, err := h.scheduler.Schedule(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// Update handles PATCH /api/schedule.
// Intervals below the minimum are raised to it rather than rejected.
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req scheduler.ScheduleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sched, err := h.scheduler.UpdateSchedule(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}
