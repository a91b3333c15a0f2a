// Package apperr defines the typed errors surfaced to callers of the ledger.
//
// Every failure of a balance-affecting operation is one of three kinds:
// Validation (the input is unacceptable), NotFound (a referenced entity does
// not exist), or Conflict (the entity exists but its state forbids the
// operation). All of them abort the whole write before any partial state is
// committed.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindValidation marks unacceptable input: non-positive amounts,
	// non-member participants, shares that fail to reconcile, duplicates.
	KindValidation Kind = iota + 1
	// KindNotFound marks a missing referenced member, group, expense or payment.
	KindNotFound
	// KindConflict marks an operation forbidden by current state, such as
	// deleting a confirmed payment.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a typed domain error with a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Validation returns a KindValidation error with a formatted reason.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error with a formatted reason.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error with a formatted reason.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is a domain error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsValidation reports whether err is a Validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }
