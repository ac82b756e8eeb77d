package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/stats"
	"github.com/campusware/course-portal/utils"
)

// DashboardHandler serves the admin overview
type DashboardHandler struct {
	stats  *stats.Service
	logger *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *stats.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		stats:  service,
		logger: logger,
	}
}

// Overview serves the platform counters. The service degrades rather
// than fails, so this always answers 200 with whatever it could gather.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.stats.Overview(r.Context()))
}
