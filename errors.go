package piston

import (
	"strconv"

	"github.com/nuclio/errors"
)

// Kind classifies codec failures.
type Kind byte

const (
	// KindUnknown is reported for nil errors and errors that did not
	// originate in this package.
	KindUnknown Kind = iota

	// KindInvalidArgument means the caller supplied inputs that cannot
	// possibly be decoded, e.g. an empty code table with a non-zero symbol
	// count, or a code table that is not prefix-free.
	KindInvalidArgument

	// KindDataCorruption means the packed bits could not be decoded into
	// the requested number of symbols using the supplied code table.
	KindDataCorruption

	// KindInternalConsistency means the encoder met a symbol that is absent
	// from a code table built from the same input.  It indicates a defect,
	// not bad input, and retrying will not help.
	KindInternalConsistency
)

var kindNames = [...]string{
	KindUnknown:             "Unknown",
	KindInvalidArgument:     "InvalidArgument",
	KindDataCorruption:      "DataCorruption",
	KindInternalConsistency: "InternalConsistency",
}

// String returns the name of this Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is the root error type for codec failures.  It is usually found at
// the bottom of a chain of errors.Wrap calls.
type Error struct {
	kind    Kind
	message string
}

// NewError returns an Error of the given kind.  Transports use it to rebuild
// a classified error on the far side of a connection.
func NewError(kind Kind, message string) *Error {
	return newError(kind, message)
}

func newError(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Message returns the error message without the Kind prefix.
func (e *Error) Message() string {
	return e.message
}

// Kind returns the classification of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error fulfills the error interface.
func (e *Error) Error() string {
	return e.kind.String() + ": " + e.message
}

// KindOf resolves the Kind of err, looking first at err itself and then at its
// root cause.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	// resolve from top level
	if typed, ok := err.(*Error); ok {
		return typed.kind
	}

	// resolve from root cause
	if typed, ok := errors.RootCause(err).(*Error); ok {
		return typed.kind
	}

	return KindUnknown
}

// IsInvalidArgument reports whether err is classified as KindInvalidArgument.
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsDataCorruption reports whether err is classified as KindDataCorruption.
func IsDataCorruption(err error) bool {
	return KindOf(err) == KindDataCorruption
}

// IsInternalConsistency reports whether err is classified as
// KindInternalConsistency.
func IsInternalConsistency(err error) bool {
	return KindOf(err) == KindInternalConsistency
}

var _ error = (*Error)(nil)
