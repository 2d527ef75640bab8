// Package errors provides error handling for synctree.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//   - Assertion failures for internal invariant breaches
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Fatal invariant breach
//	if tag == 0 {
//	    return errors.AssertionFailedf("tag must be non-zero")
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
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is         = crdb.Is
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Assertions and panics. AssertionFailedf marks a programming-error
// (fatal) condition per the sync core's error taxonomy: an invariant
// breach that should never occur if the caller respects the contract.
var (
	AssertionFailedf                 = crdb.AssertionFailedf
	NewAssertionErrorWithWrappedErrf = crdb.NewAssertionErrorWithWrappedErrf
)

// Sentinel errors for the sync core. Use these with errors.Is() for
// type-safe error checking; wrap them with errors.Wrap() to add
// context while preserving the sentinel identity.
var (
	// ErrUnknownTag indicates a tagged server operation referenced a
	// tag no longer present in the tag<->query registry. This is a
	// benign-drop condition: the query was removed between the
	// server's send and the operation's local delivery.
	ErrUnknownTag = New("sync: unknown tag")

	// ErrDuplicateTag indicates addEventRegistration tried to assign a
	// fresh tag to a query that already has one. Programming error.
	ErrDuplicateTag = New("sync: query already has a tag")

	// ErrSyncPointMissing indicates a Sync Point could not be found
	// for a tag tracked in the tag<->query registry. Programming error.
	ErrSyncPointMissing = New("sync: sync point missing for tracked tag")

	// ErrMalformedQueryKey indicates a query key string lacked the '$'
	// separator produced by MakeQueryKey.
	ErrMalformedQueryKey = New("sync: malformed query key")

	// ErrWriteNotFound indicates ackUserWrite referenced a writeId no
	// longer present in the pending write log.
	ErrWriteNotFound = New("sync: write not found")
)
