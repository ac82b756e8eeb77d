package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/reconcile"
	"github.com/campusware/course-portal/session"
	"github.com/campusware/course-portal/utils"
	"github.com/campusware/course-portal/views"
)

// ViewState is the wire shape of a membership view snapshot.
type ViewState struct {
	ViewID     string          `json:"viewId"`
	SubjectID  int64           `json:"subjectId"`
	Rows       []reconcile.Row `json:"rows"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Last       bool            `json:"last"`
}

// AssociateRequest asks a view to attach one resource to its subject.
type AssociateRequest struct {
	ResourceID int64 `json:"resourceId" validate:"required,gt=0"`
}

// ViewHandler manages the lifecycle of membership views: a view is
// opened for a subject, refreshed with filter and page changes,
// mutated through associations, and finally closed.
type ViewHandler struct {
	enrollment reconcile.Source
	assignment reconcile.Source
	sessions   *session.Manager
	views      *views.Registry
	pageSize   int
	logger     *zap.Logger
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(enrollment, assignment reconcile.Source, sessions *session.Manager, registry *views.Registry, pageSize int, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		enrollment: enrollment,
		assignment: assignment,
		sessions:   sessions,
		views:      registry,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// OpenEnrollment opens an enrollment view for the student in the path.
func (h *ViewHandler) OpenEnrollment(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, h.enrollment, "studentID")
}

// OpenAssignment opens an assignment view for the instructor in the path.
func (h *ViewHandler) OpenAssignment(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, h.assignment, "instructorID")
}

func (h *ViewHandler) open(w http.ResponseWriter, r *http.Request, source reconcile.Source, param string) {
	subjectID, ok := pathID(r, param)
	if !ok {
		_ = utils.WriteBadRequest(w, "Invalid subject ID", nil)
		return
	}
	sessionID, _, ok := h.sessions.Resolve(r)
	if !ok {
		_ = utils.WriteUnauthorized(w, "Session required")
		return
	}

	rec := reconcile.New(source, h.pageSize, h.logger)
	if err := rec.Open(r.Context(), subjectID); err != nil {
		h.logger.Error("view open failed",
			zap.Int64("subject_id", subjectID),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "Course service unavailable", nil)
		return
	}
	viewID := h.views.Open(sessionID, rec)
	h.logger.Info("view opened",
		zap.String("view_id", viewID),
		zap.Int64("subject_id", subjectID))
	_ = utils.WriteCreated(w, h.snapshot(viewID, rec))
}

// Refresh serves the current state of a view, applying an optional
// filter (q) or page change before snapshotting.
func (h *ViewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	viewID, rec, ok := h.resolve(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if query.Has("q") {
		if err := rec.SetQuery(r.Context(), query.Get("q")); err != nil {
			h.viewError(w, viewID, "filter", err)
			return
		}
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			_ = utils.WriteBadRequest(w, "Invalid page number", nil)
			return
		}
		if err := rec.SetPage(r.Context(), page); err != nil {
			h.viewError(w, viewID, "page change", err)
			return
		}
	}
	_ = utils.WriteOK(w, h.snapshot(viewID, rec))
}

// Associate attaches one resource to the view's subject. A failed
// association is row-scoped: the view stays open and the row stays
// actionable, so the caller gets the failure details plus a snapshot
// that still reflects the authoritative membership set.
func (h *ViewHandler) Associate(w http.ResponseWriter, r *http.Request) {
	viewID, rec, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req AssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Validation failed", nil)
		return
	}

	if err := rec.Associate(r.Context(), req.ResourceID); err != nil {
		h.viewError(w, viewID, "associate", err)
		return
	}
	_ = utils.WriteOK(w, h.snapshot(viewID, rec))
}

// Close tears the view down and forgets it.
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.sessions.Resolve(r)
	if !ok {
		_ = utils.WriteUnauthorized(w, "Session required")
		return
	}
	h.views.Close(sessionID, chi.URLParam(r, "viewID"))
	utils.WriteNoContent(w)
}

func (h *ViewHandler) resolve(w http.ResponseWriter, r *http.Request) (string, *reconcile.Reconciler, bool) {
	sessionID, _, ok := h.sessions.Resolve(r)
	if !ok {
		_ = utils.WriteUnauthorized(w, "Session required")
		return "", nil, false
	}
	viewID := chi.URLParam(r, "viewID")
	rec, ok := h.views.Get(sessionID, viewID)
	if !ok {
		_ = utils.WriteNotFound(w, "View not found")
		return "", nil, false
	}
	return viewID, rec, true
}

func (h *ViewHandler) viewError(w http.ResponseWriter, viewID, op string, err error) {
	if errors.Is(err, reconcile.ErrNotOpen) {
		_ = utils.WriteNotFound(w, "View not found")
		return
	}
	var assocErr *reconcile.AssociationError
	if errors.As(err, &assocErr) {
		h.logger.Warn("association failed",
			zap.String("view_id", viewID),
			zap.Int64("resource_id", assocErr.ResourceID),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "Association failed", map[string]interface{}{
			"resourceId": assocErr.ResourceID,
		})
		return
	}
	h.logger.Error("view operation failed",
		zap.String("view_id", viewID),
		zap.String("operation", op),
		zap.Error(err))
	_ = utils.WriteBadGateway(w, "Course service unavailable", nil)
}

func (h *ViewHandler) snapshot(viewID string, rec *reconcile.Reconciler) ViewState {
	page, totalPages, last := rec.PageInfo()
	return ViewState{
		ViewID:     viewID,
		SubjectID:  rec.SubjectID(),
		Rows:       rec.Rows(),
		Page:       page,
		TotalPages: totalPages,
		Last:       last,
	}
}
