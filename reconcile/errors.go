package reconcile

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned when an operation is invoked on a view that
// was never opened or has been closed.
var ErrNotOpen = errors.New("reconcile: view not open")

// AssociationError is a row-scoped association failure. It invalidates
// nothing: the membership set keeps its entries and the row stays
// actionable for a manual retry.
type AssociationError struct {
	SubjectID  int64
	ResourceID int64
	Err        error
}

func (e *AssociationError) Error() string {
	return fmt.Sprintf("associate resource %d with subject %d: %v", e.ResourceID, e.SubjectID, e.Err)
}

func (e *AssociationError) Unwrap() error { return e.Err }
