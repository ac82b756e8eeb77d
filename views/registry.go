package views

import (
	"sync"

	"github.com/google/uuid"

	"github.com/campusware/course-portal/reconcile"
)

// Registry tracks live reconciliation views. Each view belongs to the
// session that opened it; lookups from any other session miss, so
// membership state is never shared across sessions or modals.
type Registry struct {
	mu    sync.Mutex
	views map[string]entry
}

type entry struct {
	owner string
	rec   *reconcile.Reconciler
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]entry)}
}

// Open registers a reconciler for the owning session and returns the
// opaque view id.
func (g *Registry) Open(owner string, rec *reconcile.Reconciler) string {
	id := uuid.NewString()
	g.mu.Lock()
	g.views[id] = entry{owner: owner, rec: rec}
	g.mu.Unlock()
	return id
}

// Get returns the view when it exists and is owned by the session.
func (g *Registry) Get(owner, id string) (*reconcile.Reconciler, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.views[id]
	if !ok || e.owner != owner {
		return nil, false
	}
	return e.rec, true
}

// Close tears a view down and forgets it.
func (g *Registry) Close(owner, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.views[id]; ok && e.owner == owner {
		e.rec.Close()
		delete(g.views, id)
	}
}

// CloseAll tears down every view a session owns. Called on logout.
func (g *Registry) CloseAll(owner string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, e := range g.views {
		if e.owner == owner {
			e.rec.Close()
			delete(g.views, id)
		}
	}
}
