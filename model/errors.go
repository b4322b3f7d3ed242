package model

import (
	"errors"
	"fmt"

	"xdao.co/concept/clienterr"
)

type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrConfiguration     ErrorCode = "CONFIGURATION"
	ErrTypeMismatch      ErrorCode = "TYPE_MISMATCH"
	ErrKindMismatch      ErrorCode = "KIND_MISMATCH"
	ErrUnsupported       ErrorCode = "UNSUPPORTED"
	ErrTransport         ErrorCode = "TRANSPORT"
	ErrServer            ErrorCode = "SERVER"
	ErrTransactionClosed ErrorCode = "TRANSACTION_CLOSED"
	ErrInternal          ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Op      string    `json:"op,omitempty"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

var kindCodes = map[clienterr.Kind]ErrorCode{
	clienterr.KindConfiguration:     ErrConfiguration,
	clienterr.KindTypeMismatch:      ErrTypeMismatch,
	clienterr.KindKindMismatch:      ErrKindMismatch,
	clienterr.KindUnsupported:       ErrUnsupported,
	clienterr.KindTransport:         ErrTransport,
	clienterr.KindServer:            ErrServer,
	clienterr.KindTransactionClosed: ErrTransactionClosed,
}

// FromError projects err onto a CodedError. Structured client errors keep
// their kind as the code; anything else is INTERNAL.
func FromError(err error) *CodedError {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}
	var ce *clienterr.Error
	if errors.As(err, &ce) {
		code, ok := kindCodes[ce.Kind]
		if !ok {
			code = ErrInternal
		}
		return &CodedError{Code: code, Message: err.Error(), Op: ce.Op}
	}
	return &CodedError{Code: ErrInternal, Message: err.Error()}
}
