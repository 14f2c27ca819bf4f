package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/logger"
)

const (
	defaultLogLines = 200
	maxLogLines     = 2000
)

// LogsHandler serves the tail of the application log file.
type LogsHandler struct {
	path string
}

// NewLogsHandler creates a handler reading from the rotating log file at path.
func NewLogsHandler(path string) *LogsHandler {
	return &LogsHandler{path: path}
}

// Tail handles GET /api/logs?limit=N.
func (h *LogsHandler) Tail(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultLogLines, 1, maxLogLines)
	if !ok {
		return
	}

	lines := []string{}
	if h.path != "" {
		var err error
		lines, err = logger.Tail(h.path, limit)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(lines), "items": lines})
}
