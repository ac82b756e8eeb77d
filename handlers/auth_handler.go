package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/guard"
	"github.com/campusware/course-portal/identity"
	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/models"
	"github.com/campusware/course-portal/session"
	"github.com/campusware/course-portal/utils"
	"github.com/campusware/course-portal/views"
)

// Authenticator performs the login exchange against the LMS API.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
}

// LoginRequest is the portal login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse tells the front end who logged in and where to go
type LoginResponse struct {
	Role       identity.Role `json:"role"`
	UserID     int64         `json:"userId"`
	SubjectID  *int64        `json:"subjectId,omitempty"`
	RedirectTo string        `json:"redirectTo"`
}

// AuthHandler handles login, logout, and the landing redirects
type AuthHandler struct {
	api      Authenticator
	sessions *session.Manager
	views    *views.Registry
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(api Authenticator, sessions *session.Manager, registry *views.Registry, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		api:      api,
		sessions: sessions,
		views:    registry,
		logger:   logger,
	}
}

// Login exchanges a username/password pair with the LMS, starts a
// session holding the credential, and answers with the post-login
// destination. A remembered "from" location is honored only when it is
// an origin-relative path.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		details := map[string]interface{}{}
		for field, msg := range utils.GetValidationFields(err) {
			details[field] = msg
		}
		_ = utils.WriteBadRequest(w, "Validation failed", details)
		return
	}

	auth, err := h.api.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, lms.ErrInvalidCredentials) {
			_ = utils.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		h.logger.Error("login exchange failed", zap.Error(err))
		_ = utils.WriteBadGateway(w, "Login service unavailable", nil)
		return
	}

	claims := claimsFromAuth(auth)
	if claims == nil {
		// Fall back to decoding the credential itself.
		claims, _ = identity.Decode(auth.Token)
	}
	if claims == nil {
		h.logger.Error("login response carried no usable identity",
			zap.String("role", auth.Role))
		_ = utils.WriteBadGateway(w, "Login service returned an unusable response", nil)
		return
	}

	id, store := h.sessions.Begin(w)
	store.Save(auth.Token, claims)

	redirect := guard.HomePath(claims)
	if from := r.URL.Query().Get("from"); isSafeRelativePath(from) {
		redirect = from
	}

	var subjectID *int64
	if sid, ok := identity.SubjectID(claims); ok {
		subjectID = &sid
	}
	h.logger.Info("login succeeded",
		zap.String("session_id", id),
		zap.String("role", string(claims.Role())))
	_ = utils.WriteOK(w, LoginResponse{
		Role:       claims.Role(),
		UserID:     claims.UserID(),
		SubjectID:  subjectID,
		RedirectTo: redirect,
	})
}

// Logout drops the session, its credential, and every view it owns.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, _, ok := h.sessions.Resolve(r); ok {
		h.views.CloseAll(id)
	}
	h.sessions.Drop(w, r)
	utils.WriteNoContent(w)
}

// LoginGate serves GET /login: an already-authenticated caller is sent
// to their landing route instead of the login form.
func (h *AuthHandler) LoginGate(w http.ResponseWriter, r *http.Request) {
	if claims, ok := h.sessions.ClaimsFor(r); ok {
		http.Redirect(w, r, guard.HomePath(claims), http.StatusFound)
		return
	}
	_ = utils.WriteOK(w, map[string]string{"message": "login required"})
}

// Landing serves GET /: every caller is redirected to their default
// landing route; the mapping is total, so unauthenticated callers land
// on the login entry point.
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	claims, _ := h.sessions.ClaimsFor(r)
	http.Redirect(w, r, guard.HomePath(claims), http.StatusFound)
}

// claimsFromAuth builds claims from the authoritative login response
// fields. Responses missing the subject id for their role yield nil.
func claimsFromAuth(auth *models.AuthResponse) identity.Claims {
	switch identity.Role(auth.Role) {
	case identity.RoleStudent:
		if auth.StudentID != nil {
			return identity.Student{User: auth.UserID, StudentID: *auth.StudentID}
		}
	case identity.RoleInstructor:
		if auth.InstructorID != nil {
			return identity.Instructor{User: auth.UserID, InstructorID: *auth.InstructorID}
		}
	case identity.RoleAdmin:
		return identity.Admin{User: auth.UserID}
	}
	return nil
}

// isSafeRelativePath accepts only origin-relative redirect targets.
func isSafeRelativePath(p string) bool {
	return strings.HasPrefix(p, "/") &&
		!strings.HasPrefix(p, "//") &&
		!strings.Contains(p, "://")
}
