// Package errors provides error handling for crossview.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for user-facing messages
//
// Usage:
//
//	if err := repo.Insert(ctx, rec); err != nil {
//	    return errors.Wrap(err, "failed to store transaction")
//	}
//
//	if errors.Is(err, errors.ErrMalformedPayload) {
//	    // drop is ignored, the interaction continues
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
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// Common sentinel errors. Wrap these to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrMalformedPayload indicates a drop payload could not be decoded or
	// lacks a field required by its declared kind
	ErrMalformedPayload = New("malformed drop payload")

	// ErrUnknownZone indicates a drop targeted a zone no panel owns
	ErrUnknownZone = New("unknown drop zone")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsMalformedPayload checks if an error is or wraps ErrMalformedPayload
func IsMalformedPayload(err error) bool {
	return err != nil && Is(err, ErrMalformedPayload)
}

// NewMalformedPayloadError creates a malformed-payload error with a formatted message
func NewMalformedPayloadError(format string, args ...interface{}) error {
	return Wrap(ErrMalformedPayload, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
