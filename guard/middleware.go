package guard

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/identity"
	"github.com/campusware/course-portal/session"
)

// SessionSource resolves a request to its session's claims and
// credential. Implemented by session.Manager.
type SessionSource interface {
	ClaimsFor(r *http.Request) (identity.Claims, bool)
	CredentialFor(r *http.Request) (string, bool)
}

// Guard wires the pure admission decision into the HTTP layer.
type Guard struct {
	sessions SessionSource
	logger   *zap.Logger
}

// New creates a Guard backed by the given session source.
func New(sessions SessionSource, logger *zap.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// Protect returns middleware enforcing the requirement on every
// request under a route. Anything but an admitted navigation turns
// into a silent redirect; admitted requests continue with claims and
// credential on the context.
func (g *Guard) Protect(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := g.sessions.ClaimsFor(r)
			decision := Evaluate(claims, req, pathSubjectID(r), r.URL.RequestURI())

			if decision.State != Admitted {
				g.logger.Debug("navigation redirected",
					zap.Stringer("state", decision.State),
					zap.String("requested", r.URL.Path),
					zap.String("redirect", decision.RedirectTo))
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if cred, ok := g.sessions.CredentialFor(r); ok {
				ctx = session.WithCredential(ctx, cred)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CorrectSelfScope is the second enforcement point inside an admitted
// student or instructor shell: when the path-embedded subject id
// diverges from the claims-derived one (for example via a manual URL
// edit), the request is redirected to the corrected self-scoped path
// instead of rendering content for a foreign subject.
func (g *Guard) CorrectSelfScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		own, has := identity.SubjectID(claims)
		pid := pathSubjectID(r)
		if !has || pid == nil || *pid == own {
			next.ServeHTTP(w, r)
			return
		}

		corrected := strings.Replace(r.URL.Path,
			fmt.Sprintf("/%d", *pid), fmt.Sprintf("/%d", own), 1)
		g.logger.Debug("self-scope corrected",
			zap.Int64("path_subject", *pid),
			zap.Int64("own_subject", own),
			zap.String("redirect", corrected))
		http.Redirect(w, r, corrected, http.StatusFound)
	})
}

// pathSubjectID extracts the subject id embedded in the route path,
// whichever role parameter the route declares.
func pathSubjectID(r *http.Request) *int64 {
	for _, param := range []string{"studentID", "instructorID"} {
		if raw := chi.URLParam(r, param); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return &id
			}
		}
	}
	return nil
}
