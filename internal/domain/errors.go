package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCyclicDependency = errors.New("cyclic gate dependency")
	ErrUnknownGate      = errors.New("unknown gate")
	ErrInvalidPolicy    = errors.New("invalid policy")
	ErrNoEvidence       = errors.New("no evidence snapshot")
)

// ConfigError is fatal: the run aborts before any gate is evaluated.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PersistError reports a durable write that failed after evaluation
// completed. The evaluated result remains valid and the write can be retried.
type PersistError struct {
	RunID string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting run %s: %v", e.RunID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsConfigError reports whether err aborted a run before evaluation.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsPersistError reports whether err is a post-evaluation write failure.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
