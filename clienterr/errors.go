// Package clienterr defines the structured error type shared by the concept
// client packages.
//
// Callers should branch on Kind rather than matching error strings. Use
// errors.As to extract *Error for structured handling, or IsKind as a shortcut.
package clienterr

import (
	"errors"
	"strings"
)

// Kind is a stable failure category.
type Kind string

const (
	// KindConfiguration marks caller misconfiguration detected while building a
	// channel (unreadable or malformed trust material, bad target address).
	KindConfiguration Kind = "Configuration"
	// KindTypeMismatch marks a narrowing conversion to the wrong specialized kind.
	KindTypeMismatch Kind = "TypeMismatch"
	// KindKindMismatch marks a relationship between handles of differing value
	// kinds (supertype assignment, key ownership of a non-keyable kind).
	KindKindMismatch Kind = "KindMismatch"
	// KindUnsupported marks a native representation or wire tag with no known
	// value kind mapping.
	KindUnsupported Kind = "Unsupported"
	// KindTransport marks a round trip that failed before the server answered.
	KindTransport Kind = "Transport"
	// KindServer marks a server-side rejection.
	KindServer Kind = "Server"
	// KindTransactionClosed marks use of a remote handle whose transaction is
	// no longer open.
	KindTransactionClosed Kind = "TransactionClosed"
)

// Error is the structured client error.
//
// Op names the failing operation (e.g. "rpc.NewTLS", "attribute_type.put").
// Message is for humans and may evolve.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns an *Error without a cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Wrap returns an *Error wrapping cause. A nil cause yields the same result as New.
func Wrap(kind Kind, op, msg string, cause error) error {
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
