// Package apperr classifies failures so that command adapters can decide how
// to report them. Every recoverable failure carries a Kind and a message that
// is safe to show to the invoking user.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how they are reported.
type Kind int

const (
	// KindInternal is anything unclassified: store outages, bugs.
	KindInternal Kind = iota
	// KindValidation is out-of-range or non-positive numeric input.
	KindValidation
	// KindNotFound covers a thread without an order or an absent order/item.
	KindNotFound
	// KindConflict covers duplicates and already-completed targets.
	KindConflict
	// KindAuthorization is a non-creator attempting a creator-only action.
	KindAuthorization
	// KindCollaborator is a chat platform failure during synchronization.
	KindCollaborator
)

// String returns the lower-case kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindCollaborator:
		return "collaborator"
	default:
		return "internal"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so that the
// constructors below can be used as comparison targets with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a user-facing message.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithCause returns a copy of e that wraps err. The message is kept as is.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRecoverable reports whether err should be answered privately to the user
// rather than treated as an internal failure.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindConflict, KindAuthorization:
		return true
	}
	return false
}

// UserMessage returns the message to show the invoking user.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Something went wrong while handling the command."
}

// Domain failures.

func ErrInvalidQuantity() *Error {
	return New(KindValidation, "Quantity must be greater than zero.")
}

func ErrQuantityOutOfRange() *Error {
	return New(KindValidation, "Quantity exceeds the allowed integer range.")
}

func ErrEmptyProductName() *Error {
	return New(KindValidation, "Product name must not be empty.")
}

func ErrOrderExists() *Error {
	return New(KindConflict, "An order for this thread already exists.")
}

func ErrNoOrderInThread() *Error {
	return New(KindNotFound, "No order found for this thread.")
}

func ErrOrderNotFound(orderID int64) *Error {
	return New(KindNotFound, "Order with ID %d does not exist.", orderID)
}

func ErrDuplicateItem(name string) *Error {
	return New(KindConflict, "Product '%s' already exists in the order.", name)
}

func ErrItemNotFoundOrCompleted(name string) *Error {
	return New(KindConflict, "Product '%s' does not exist or is already completed.", name)
}

func ErrItemNotFound(name string) *Error {
	return New(KindNotFound, "Product '%s' does not exist in this order.", name)
}

func ErrForbidden() *Error {
	return New(KindAuthorization, "Only the order creator can close it.")
}

func ErrAlreadyClosed() *Error {
	return New(KindConflict, "The order is already completed.")
}

func ErrOrderClosed() *Error {
	return New(KindConflict, "The order is completed and can no longer be changed.")
}

func ErrNotInThread() *Error {
	return New(KindValidation, "This command can only be used inside a thread.")
}
