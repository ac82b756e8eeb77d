package handlers

import (
	"net/http"
	"time"

	"github.com/campusware/course-portal/utils"
)

// HealthHandler reports process liveness
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Check serves the liveness probe.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}
