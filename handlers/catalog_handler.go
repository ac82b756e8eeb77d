package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/utils"
)

// CatalogHandler serves the course listings for each role
type CatalogHandler struct {
	api      *lms.Client
	pageSize int
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(api *lms.Client, pageSize int, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		api:      api,
		pageSize: pageSize,
		logger:   logger,
	}
}

// EnrolledCourses serves the courses a student is enrolled in.
func (h *CatalogHandler) EnrolledCourses(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentID")
	if !ok {
		_ = utils.WriteBadRequest(w, "Invalid student ID", nil)
		return
	}
	page, err := h.api.EnrolledCourses(r.Context(), studentID, h.pageQuery(r))
	if err != nil {
		h.upstreamError(w, "fetch enrolled courses", err)
		return
	}
	_ = utils.WriteOK(w, page)
}

// AssignedCourses serves the courses an instructor teaches.
func (h *CatalogHandler) AssignedCourses(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		_ = utils.WriteBadRequest(w, "Invalid instructor ID", nil)
		return
	}
	page, err := h.api.AssignedCourses(r.Context(), instructorID, h.pageQuery(r))
	if err != nil {
		h.upstreamError(w, "fetch assigned courses", err)
		return
	}
	_ = utils.WriteOK(w, page)
}

// Courses serves the full catalog, with optional title filtering.
func (h *CatalogHandler) Courses(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.Courses(r.Context(), h.pageQuery(r))
	if err != nil {
		h.upstreamError(w, "fetch course catalog", err)
		return
	}
	_ = utils.WriteOK(w, page)
}

func (h *CatalogHandler) pageQuery(r *http.Request) lms.PageQuery {
	q := lms.PageQuery{Size: h.pageSize, Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			q.Page = n
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Size = n
		}
	}
	return q
}

func (h *CatalogHandler) upstreamError(w http.ResponseWriter, op string, err error) {
	var fe *lms.FetchError
	if errors.As(err, &fe) {
		h.logger.Error("upstream request failed",
			zap.String("operation", op),
			zap.String("path", fe.Path),
			zap.Int("status", fe.Status),
			zap.Error(err))
	} else {
		h.logger.Error("upstream request failed",
			zap.String("operation", op),
			zap.Error(err))
	}
	_ = utils.WriteBadGateway(w, "Course service unavailable", nil)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
