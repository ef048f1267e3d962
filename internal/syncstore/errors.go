package syncstore

import "fmt"

// LoadFailure reports that a remote read could not be completed. Callers show
// it as a dismissible banner and keep whatever local state they had; it is
// never fatal. An absent document is not a failure, it is an empty result.
type LoadFailure struct {
	Identity string
	Err      error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("loading courses for %q: %v", e.Identity, e.Err)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

// WriteFailure reports that a remote write could not be completed. It
// triggers the caller's optimistic rollback; timeouts surface as this same
// kind, not a distinct one.
type WriteFailure struct {
	Identity string
	CourseID string
	Err      error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("writing resources for course %q of %q: %v", e.CourseID, e.Identity, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }
