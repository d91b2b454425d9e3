package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is matched by every *InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid regular expression")
	// ErrEmptyText is returned when the text source has no content.
	ErrEmptyText = errors.New("log is empty")
	// ErrEmptyTerm is returned when a search is submitted without a term.
	ErrEmptyTerm = errors.New("search term cannot be empty")
	// ErrSessionClosed is returned by every operation on a closed session.
	ErrSessionClosed = errors.New("search session is closed")
	// ErrSourceUnavailable is returned when the text source cannot be read.
	ErrSourceUnavailable = errors.New("log viewer not accessible")
	// ErrNoPreviousSearch is returned by quick search before any term was used.
	ErrNoPreviousSearch = errors.New("no search has been performed yet")
	// ErrNotLogViewer means the focused object is not the log viewer and the
	// gesture should be passed through to the host.
	ErrNotLogViewer = errors.New("focus is not the log viewer")
	// ErrConflictingApp means a bookmark gesture belongs to the focused application.
	ErrConflictingApp = errors.New("focused application owns this gesture")
)

// InvalidPatternError carries the regex compiler's message.
type InvalidPatternError struct {
	Pattern string
	Message string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid regular expression %q: %s", e.Pattern, e.Message)
}

// Is makes errors.Is(err, ErrInvalidPattern) true.
func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
