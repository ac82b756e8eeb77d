package lms

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Login when the LMS rejects the
// username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FetchError is a typed failure from a collection fetch. Status is
// zero when the transport failed before a response arrived. Fetch
// failures propagate to the caller untouched; nothing in this layer
// retries or caches.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
