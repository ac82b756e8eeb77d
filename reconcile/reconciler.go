package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/models"
)

// Source is the collaborator behind one reconciliation workflow: a
// paginated universe collection, the subject's full associated set,
// and the idempotent association call. lms.EnrollmentWorkflow and
// lms.AssignmentWorkflow satisfy it.
type Source interface {
	FetchUniverse(ctx context.Context, q lms.PageQuery) (lms.Page[models.Course], error)
	FetchAssociated(ctx context.Context, subjectID int64) (lms.Page[models.Course], error)
	Associate(ctx context.Context, subjectID, resourceID int64) error
}

// Row is one universe entry with its membership status. The membership
// flag is recomputed from the set on every Rows call, so a successful
// Associate flips it without any re-fetch.
type Row struct {
	Course   models.Course `json:"course"`
	Member   bool          `json:"member"`
	InFlight bool          `json:"inFlight"`
}

// Reconciler drives one open assign/enroll view: a page of the
// universe merged with the subject's full membership set, plus an
// optimistic associate operation. Each instance owns its membership
// set and in-flight flags exclusively; instances are never shared
// across open views. The set is a local cache whose staleness window
// is the lifetime of the view.
type Reconciler struct {
	source   Source
	pageSize int
	logger   *zap.Logger

	mu        sync.Mutex
	subjectID int64
	query     string
	page      int
	universe  lms.Page[models.Course]
	members   map[int64]struct{}
	inFlight  map[int64]struct{}
	ready     bool
	loadErr   error

	// Generation counters guard against stale-response races: a fetch
	// result is committed only if its slot was not re-triggered and the
	// view was not torn down while it was in flight. Cancellation is
	// cooperative; in-flight calls are never hard-aborted.
	viewGen     uint64
	universeGen uint64
}

// New creates a reconciler over the given source. pageSize bounds the
// universe page length.
func New(source Source, pageSize int, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		source:   source,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Open initializes the view for a subject. The universe page and the
// complete associated set are fetched concurrently; both must land
// before the view is ready. Either failing leaves a single load-error
// state and no partially rendered membership.
func (r *Reconciler) Open(ctx context.Context, subjectID int64) error {
	r.mu.Lock()
	r.viewGen++
	r.universeGen++
	r.subjectID = subjectID
	r.query = ""
	r.page = 0
	r.ready = false
	r.loadErr = nil
	r.members = nil
	r.inFlight = make(map[int64]struct{})
	viewGen := r.viewGen
	uniGen := r.universeGen
	q := lms.PageQuery{Page: 0, Size: r.pageSize}
	r.mu.Unlock()

	var (
		wg         sync.WaitGroup
		universe   lms.Page[models.Course]
		associated lms.Page[models.Course]
		uniErr     error
		assocErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		universe, uniErr = r.source.FetchUniverse(ctx, q)
	}()
	go func() {
		defer wg.Done()
		associated, assocErr = r.source.FetchAssociated(ctx, subjectID)
	}()
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewGen != viewGen || r.universeGen != uniGen {
		r.logger.Debug("discarding superseded open result",
			zap.Int64("subject_id", subjectID))
		return nil
	}

	if uniErr != nil || assocErr != nil {
		err := uniErr
		if err == nil {
			err = assocErr
		}
		r.loadErr = err
		return err
	}

	members := make(map[int64]struct{}, len(associated.Content))
	for _, c := range associated.Content {
		members[c.ID] = struct{}{}
	}
	r.universe = universe
	r.members = members
	r.ready = true
	return nil
}

// SetQuery changes the free-text filter and re-fetches only the
// universe page, reset to page zero. The associated set was fetched in
// full at Open and is not re-derived.
func (r *Reconciler) SetQuery(ctx context.Context, text string) error {
	r.mu.Lock()
	if !r.ready && r.loadErr == nil {
		r.mu.Unlock()
		return ErrNotOpen
	}
	r.query = text
	r.page = 0
	r.mu.Unlock()
	return r.refreshUniverse(ctx)
}

// SetPage moves the universe view to another zero-based page,
// re-fetching only the universe slot.
func (r *Reconciler) SetPage(ctx context.Context, page int) error {
	r.mu.Lock()
	if !r.ready && r.loadErr == nil {
		r.mu.Unlock()
		return ErrNotOpen
	}
	r.page = page
	r.mu.Unlock()
	return r.refreshUniverse(ctx)
}

func (r *Reconciler) refreshUniverse(ctx context.Context) error {
	r.mu.Lock()
	r.universeGen++
	gen := r.universeGen
	viewGen := r.viewGen
	q := lms.PageQuery{Page: r.page, Size: r.pageSize, Query: r.query}
	r.mu.Unlock()

	universe, err := r.source.FetchUniverse(ctx, q)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewGen != viewGen || r.universeGen != gen {
		r.logger.Debug("discarding superseded universe page",
			zap.Int("page", q.Page),
			zap.String("query", q.Query))
		return nil
	}
	if err != nil {
		r.loadErr = err
		return err
	}
	r.universe = universe
	r.loadErr = nil
	return nil
}

// Associate idempotently adds one association. A resource that is
// already a member, or whose call is still in flight, is never
// re-issued; callers disable the triggering control first, this check
// is defense in depth behind it. On success the id joins the
// membership set optimistically, without server re-verification. On
// failure the set is untouched, the in-flight flag clears so the row
// stays actionable, and a row-scoped error is returned. There is no
// automatic retry.
func (r *Reconciler) Associate(ctx context.Context, resourceID int64) error {
	r.mu.Lock()
	if !r.ready {
		r.mu.Unlock()
		return ErrNotOpen
	}
	if _, member := r.members[resourceID]; member {
		r.mu.Unlock()
		return nil
	}
	if _, busy := r.inFlight[resourceID]; busy {
		r.mu.Unlock()
		return nil
	}
	r.inFlight[resourceID] = struct{}{}
	subjectID := r.subjectID
	viewGen := r.viewGen
	r.mu.Unlock()

	err := r.source.Associate(ctx, subjectID, resourceID)

	r.mu.Lock()
	if r.viewGen == viewGen {
		delete(r.inFlight, resourceID)
		if err == nil {
			r.members[resourceID] = struct{}{}
		}
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("association failed",
			zap.Int64("subject_id", subjectID),
			zap.Int64("resource_id", resourceID),
			zap.Error(err))
		return &AssociationError{SubjectID: subjectID, ResourceID: resourceID, Err: err}
	}
	return nil
}

// Rows merges the current universe page with the membership set. Rows
// appear in server order; duplicate ids within a page are trusted not
// to occur and are not de-duplicated.
func (r *Reconciler) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]Row, 0, len(r.universe.Content))
	for _, c := range r.universe.Content {
		_, member := r.members[c.ID]
		_, busy := r.inFlight[c.ID]
		rows = append(rows, Row{Course: c, Member: member, InFlight: busy})
	}
	return rows
}

// Ready reports whether Open completed with both fetches landed.
func (r *Reconciler) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Err returns the current load error, if the last fetch for the view
// failed.
func (r *Reconciler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// SubjectID returns the subject this view was opened for.
func (r *Reconciler) SubjectID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subjectID
}

// PageInfo returns the universe page position for rendering paging
// controls.
func (r *Reconciler) PageInfo() (number, totalPages int, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.universe.Number, r.universe.TotalPages, r.universe.Last
}

// Close tears the view down. Results of fetches still in flight are
// discarded when they land.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewGen++
	r.ready = false
	r.members = nil
	r.inFlight = nil
	r.universe = lms.Page[models.Course]{}
}
