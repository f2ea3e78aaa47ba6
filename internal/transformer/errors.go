package transformer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStrategy marks a treatment that is incompatible with a
	// column's role or runtime type, e.g. mean on a text column.
	ErrInvalidStrategy = errors.New("invalid strategy for column")

	// ErrInvalidBuckets marks a malformed bucket definition.
	ErrInvalidBuckets = errors.New("invalid bucket definition")
)

// InvalidStrategyError names the offending column and strategy. It matches
// ErrInvalidStrategy under errors.Is.
type InvalidStrategyError struct {
	Column   string
	Strategy string
	Reason   string
}

func (e *InvalidStrategyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("column %q: strategy %q not applicable", e.Column, e.Strategy)
	}
	return fmt.Sprintf("column %q: strategy %q not applicable: %s", e.Column, e.Strategy, e.Reason)
}

func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }
