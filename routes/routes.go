package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campusware/course-portal/app"
	"github.com/campusware/course-portal/guard"
	"github.com/campusware/course-portal/identity"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/healthz", deps.HealthHandler.Check)

	// Public entry points
	r.Get("/", deps.AuthHandler.Landing)
	r.Get("/login", deps.AuthHandler.LoginGate)
	r.Post("/login", deps.AuthHandler.Login)
	r.Post("/logout", deps.AuthHandler.Logout)

	// Student area: self-scoped, a mismatched id is corrected in place
	r.Route("/students/{studentID}", func(r chi.Router) {
		r.Use(deps.Guard.Protect(guard.Requirement{
			AllowedRoles: []identity.Role{identity.RoleStudent},
			EnforceSelf:  true,
		}))
		r.Use(deps.Guard.CorrectSelfScope)
		r.Get("/courses", deps.CatalogHandler.EnrolledCourses)
		r.Post("/enrollment-views", deps.ViewHandler.OpenEnrollment)
	})

	// Instructor area
	r.Route("/instructors/{instructorID}", func(r chi.Router) {
		r.Use(deps.Guard.Protect(guard.Requirement{
			AllowedRoles: []identity.Role{identity.RoleInstructor},
			EnforceSelf:  true,
		}))
		r.Use(deps.Guard.CorrectSelfScope)
		r.Get("/courses", deps.CatalogHandler.AssignedCourses)
	})

	// Admin area: full catalog plus view creation for any subject
	r.Route("/admin", func(r chi.Router) {
		r.Use(deps.Guard.Protect(guard.Requirement{
			AllowedRoles: []identity.Role{identity.RoleAdmin},
		}))
		r.Get("/dashboard", deps.DashboardHandler.Overview)
		r.Get("/courses", deps.CatalogHandler.Courses)
		r.Post("/students/{studentID}/enrollment-views", deps.ViewHandler.OpenEnrollment)
		r.Post("/instructors/{instructorID}/assignment-views", deps.ViewHandler.OpenAssignment)
	})

	// Views are session-owned; any authenticated role may hold one
	r.Route("/views/{viewID}", func(r chi.Router) {
		r.Use(deps.Guard.Protect(guard.Requirement{
			AllowedRoles: []identity.Role{identity.RoleStudent, identity.RoleInstructor, identity.RoleAdmin},
		}))
		r.Get("/", deps.ViewHandler.Refresh)
		r.Post("/associations", deps.ViewHandler.Associate)
		r.Delete("/", deps.ViewHandler.Close)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
