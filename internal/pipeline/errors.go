package pipeline

import (
	"fmt"
	"strings"

	"tabclean/internal/config"
	"tabclean/internal/transformer"
)

// Sentinels re-exported so callers need not import the stage packages.
var (
	ErrInvalidStrategy = transformer.ErrInvalidStrategy
	ErrInvalidBuckets  = transformer.ErrInvalidBuckets
)

// InvalidStrategyError is raised at run time when a treatment does not fit
// the loaded values of a column.
type InvalidStrategyError = transformer.InvalidStrategyError

// ConfigurationError carries the error-severity issues that stopped New.
// errors.Is matches the sentinel of any contained issue.
type ConfigurationError struct {
	Issues []config.Issue
}

func (e *ConfigurationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid configuration: " + e.Issues[0].Error()
	}
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.Error()
	}
	return fmt.Sprintf("invalid configuration (%d issues): %s", len(e.Issues), strings.Join(parts, "; "))
}

func (e *ConfigurationError) Unwrap() []error {
	out := make([]error, 0, len(e.Issues))
	for _, iss := range e.Issues {
		out = append(out, iss)
	}
	return out
}
