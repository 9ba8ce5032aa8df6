package helper

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphUnavailable is returned when an operation needs the graph store
	// but none was connected.
	ErrGraphUnavailable = errors.New("graph store not connected")
	// ErrInvalidLabel is returned for node or relationship labels that are not
	// plain identifiers.
	ErrInvalidLabel = errors.New("invalid graph label")
	// ErrEmptyQuestion is returned when a question is blank.
	ErrEmptyQuestion = errors.New("no question provided")
)

// NewError wraps err with a short description of the failed step.
func NewError(trace string, err error) error {
	return fmt.Errorf("%s: %w", trace, err)
}
