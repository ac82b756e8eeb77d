package session

import (
	"sync"

	"github.com/campusware/course-portal/identity"
)

// Store holds the bearer credential for one logged-in session together
// with the claims derived from it. It is the only process-wide mutable
// state in the access-control layer: written by login and logout,
// read on every guarded navigation. At most one credential is held;
// Save unconditionally overwrites whatever was there.
type Store struct {
	mu     sync.Mutex
	cred   string
	claims identity.Claims
}

// NewStore returns an empty store (no credential).
func NewStore() *Store {
	return &Store{}
}

// Save records the credential and its claims, replacing any previous
// pair. The claims act as a hint cached alongside the credential; they
// share its lifecycle and are never persisted independently.
func (s *Store) Save(credential string, claims identity.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = credential
	s.claims = claims
}

// Credential returns the stored credential, or false when logged out.
func (s *Store) Credential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == "" {
		return "", false
	}
	return s.cred, true
}

// Claims returns the claims for the stored credential. When no hint
// was cached at Save time they are re-derived from the credential;
// the decoder is pure, so both paths agree.
func (s *Store) Claims() (identity.Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == "" {
		return nil, false
	}
	if s.claims != nil {
		return s.claims, true
	}
	return identity.Decode(s.cred)
}

// Clear drops the credential and claims. Called on explicit logout and
// when the guard hits an unrecoverable auth failure.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = ""
	s.claims = nil
}
