// Package errors provides error handling for mmgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := store.Load(path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "break the generalization cycle in the model")
//
//	// Check errors
//	if errors.Is(err, errors.ErrCycle) {
//	    // report cycle
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across mmgen.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates a referenced model element does not exist
	ErrNotFound = New("not found")

	// ErrLoad indicates the model source could not be opened or deserialized
	ErrLoad = New("model load failed")

	// ErrInvalidModel indicates the model document is structurally unusable
	// (dangling references, duplicate identities)
	ErrInvalidModel = New("invalid model")

	// ErrUnsupportedFormat indicates no loader is registered for a source
	ErrUnsupportedFormat = New("unsupported model format")

	// ErrIncompatibleVersion indicates a model document declares a format
	// version this build cannot read
	ErrIncompatibleVersion = New("incompatible model format version")

	// ErrCycle indicates the supertype graph contains a cycle
	ErrCycle = New("generalization cycle")

	// ErrAmbiguous indicates the known-element catalog could not decide
	// whether a class is known
	ErrAmbiguous = New("ambiguous class classification")

	// ErrStale indicates a generated file no longer matches its model
	ErrStale = New("generated output is out of date")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsLoadError checks if an error is or wraps ErrLoad
func IsLoadError(err error) bool {
	return err != nil && Is(err, ErrLoad)
}

// IsCycleError checks if an error is or wraps ErrCycle
func IsCycleError(err error) bool {
	return err != nil && Is(err, ErrCycle)
}

// WrapLoad marks err as a load failure for source. The original error chain
// stays inspectable with Is/As.
func WrapLoad(err error, source string) error {
	return Wrapf(Mark(err, ErrLoad), "failed to load %s", source)
}

// NewInvalidModelError creates an invalid-model error with a formatted message
func NewInvalidModelError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidModel, Newf(format, args...).Error())
}
