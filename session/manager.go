package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/identity"
)

// CookieName is the browser cookie carrying the opaque session id.
const CookieName = "portal_session"

// Manager maps opaque session ids to per-session credential stores.
// Each browser session owns exactly one Store, so a page reload keeps
// the login for as long as the gateway runs.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Store

	ttl    time.Duration
	secure bool
	logger *zap.Logger
}

// NewManager creates a session manager. secure controls the cookie's
// Secure attribute and should be true behind HTTPS.
func NewManager(ttl time.Duration, secure bool, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Store),
		ttl:      ttl,
		secure:   secure,
		logger:   logger,
	}
}

// Begin creates a fresh session, sets its cookie on the response, and
// returns the session id with its empty store. Called on login.
func (m *Manager) Begin(w http.ResponseWriter) (string, *Store) {
	id := uuid.NewString()
	store := NewStore()

	m.mu.Lock()
	m.sessions[id] = store
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Debug("session started", zap.String("session_id", id))
	return id, store
}

// Resolve returns the request's session id and store, if the request
// carries a cookie for a live session.
func (m *Manager) Resolve(r *http.Request) (string, *Store, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", nil, false
	}

	m.mu.Lock()
	store, ok := m.sessions[cookie.Value]
	m.mu.Unlock()
	if !ok {
		return "", nil, false
	}
	return cookie.Value, store, true
}

// ClaimsFor resolves the request's session and returns the claims for
// its credential, when both exist.
func (m *Manager) ClaimsFor(r *http.Request) (identity.Claims, bool) {
	_, store, ok := m.Resolve(r)
	if !ok {
		return nil, false
	}
	return store.Claims()
}

// CredentialFor resolves the request's session and returns its
// credential, when both exist.
func (m *Manager) CredentialFor(r *http.Request) (string, bool) {
	_, store, ok := m.Resolve(r)
	if !ok {
		return "", false
	}
	return store.Credential()
}

// Drop clears and discards the request's session and expires its
// cookie. Called on logout.
func (m *Manager) Drop(w http.ResponseWriter, r *http.Request) {
	if id, store, ok := m.Resolve(r); ok {
		store.Clear()
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		m.logger.Debug("session dropped", zap.String("session_id", id))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
