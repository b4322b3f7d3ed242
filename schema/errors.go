package schema

import "errors"

var (
	ErrNotFound       = errors.New("schema: type not found")
	ErrKindMismatch   = errors.New("schema: value kind mismatch")
	ErrInvalid        = errors.New("schema: invalid definition")
	ErrRegexViolation = errors.New("schema: value violates regex")
	ErrReadOnly       = errors.New("schema: read transaction cannot write")
	ErrConflict       = errors.New("schema: concurrent commit conflict")
	ErrClosed         = errors.New("schema: transaction closed")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
