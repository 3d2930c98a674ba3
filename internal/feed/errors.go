package feed

import "fmt"

// FetchError is returned when a document could not be retrieved: the
// request failed or the server answered with a non-2xx status.
type FetchError struct {
	SourceID string
	Path     string
	// Status is 0 when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to load %s for source %q (%d)", e.Path, e.SourceID, e.Status)
	}
	return fmt.Sprintf("failed to load %s for source %q: %v", e.Path, e.SourceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is returned when neither the repaired nor the original body
// could be parsed.
type ParseError struct {
	SourceID string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("source %q is not a valid document: %v", e.SourceID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
