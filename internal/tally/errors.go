package tally

import (
	"errors"
	"fmt"
)

// Common transport-level errors.
var (
	// ErrUnexpectedStatus is returned when the import endpoint answers with a
	// non-2xx HTTP status. Tally normally answers 200 even for rejected
	// documents; anything else means the request never reached the importer.
	ErrUnexpectedStatus = errors.New("accounting endpoint returned unexpected HTTP status")

	// ErrEmptyResponse is returned when the import endpoint answers with an
	// empty body, which leaves the outcome of the import unknown.
	ErrEmptyResponse = errors.New("accounting endpoint returned an empty response")
)

// TransportError wraps a failure to deliver a document to the import
// endpoint. It carries no interpretation of the payload; retry policy is the
// caller's concern.
type TransportError struct {
	// Op is the operation that failed (e.g., "Post").
	Op string

	// URL is the endpoint the request was sent to.
	URL string

	// StatusCode is the HTTP status received, if any (0 when the request
	// never completed).
	StatusCode int

	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tally: %s %s failed with status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tally: %s %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *TransportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
