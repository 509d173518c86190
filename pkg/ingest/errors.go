package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing is returned when a configured CSV file does not exist.
	ErrSourceMissing = errors.New("source file missing")
	// ErrMissingColumn is returned when a CSV lacks a column the build needs.
	ErrMissingColumn = errors.New("required column missing")
	// ErrMalformed is returned for CSV syntax errors.
	ErrMalformed = errors.New("malformed csv")
)

// SourceError ties a failure to the source that caused it.
type SourceError struct {
	Source string // logical name, e.g. "bots"
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %s: %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
