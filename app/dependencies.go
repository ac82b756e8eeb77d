package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/config"
	"github.com/campusware/course-portal/guard"
	"github.com/campusware/course-portal/handlers"
	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/session"
	"github.com/campusware/course-portal/stats"
	"github.com/campusware/course-portal/views"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Session and access control
	Sessions *session.Manager
	Guard    *guard.Guard
	Views    *views.Registry

	// LMS client and services
	API   *lms.Client
	Stats *stats.Service

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	CatalogHandler   *handlers.CatalogHandler
	ViewHandler      *handlers.ViewHandler
	DashboardHandler *handlers.DashboardHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.SecureCookie, logger)
	registry := views.NewRegistry()

	// The client reads the caller's credential from the request context,
	// where the guard stashes it for every admitted request.
	api := lms.NewClient(cfg.LMS.BaseURL, session.ContextCredentials{}, cfg.LMS.Timeout, logger)

	enrollment := lms.EnrollmentWorkflow{Client: api, SetSize: cfg.LMS.EnrolledSetSize}
	assignment := lms.AssignmentWorkflow{Client: api, SetSize: cfg.LMS.AssignedSetSize}

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Guard:    guard.New(sessions, logger),
		Views:    registry,
		API:      api,
		Stats:    stats.NewService(api, logger),
	}

	deps.HealthHandler = handlers.NewHealthHandler()
	deps.AuthHandler = handlers.NewAuthHandler(api, sessions, registry, logger)
	deps.CatalogHandler = handlers.NewCatalogHandler(api, cfg.LMS.CatalogPageSize, logger)
	deps.ViewHandler = handlers.NewViewHandler(enrollment, assignment, sessions, registry, cfg.LMS.CatalogPageSize, logger)
	deps.DashboardHandler = handlers.NewDashboardHandler(deps.Stats, logger)

	logger.Info("all dependencies initialized",
		zap.String("lms_base_url", cfg.LMS.BaseURL))
	return deps
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
