// Package common holds the error values and logging setup shared by the
// categorizer's packages.
package common

import (
	"errors"
	"fmt"
)

// Storage.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")
)

// Categorization input.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCorrection  = errors.New("invalid correction")
	ErrInvalidRule        = errors.New("invalid rule")
)

// Suggestion oracle. Neither ever reaches a Categorize caller; the engine
// falls back to the amount heuristic instead.
var (
	ErrOracleUnavailable = errors.New("suggestion oracle unavailable")
	ErrNoSuggestion      = errors.New("no suggestion returned")
)

// Configuration.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message the CLI prints in place of the raw error chain.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message meant for the person at the terminal.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}
