package library

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned by AddTrack when the id is already taken.
	ErrDuplicateID = errors.New("library: track id already exists")
	// ErrNotFound is returned by operations referencing an absent id.
	ErrNotFound = errors.New("library: track id not found")
	// ErrInvalidRating is returned when a rating is outside 0-5.
	ErrInvalidRating = errors.New("library: rating must be between 0 and 5")
)

// RowError describes one backing-table row that could not be parsed during
// Load. Such rows are skipped; the load itself still succeeds.
type RowError struct {
	Line  int // 1-based line in the backing file, header included
	ID    string
	Field string
	Value string
}

func (e RowError) Error() string {
	return fmt.Sprintf("library: row %d (track %q): bad %s value %q", e.Line, e.ID, e.Field, e.Value)
}
