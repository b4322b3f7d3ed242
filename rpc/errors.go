package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/concept/clienterr"
)

const (
	// ErrorDomain scopes the ErrorInfo reasons attached by the Concept server.
	ErrorDomain = "concept.xdao.co"
	// ReasonKindMismatch marks a rejection where the server found the value
	// kinds of the types involved to differ.
	ReasonKindMismatch = "KIND_MISMATCH"
)

// KindMismatchStatus builds the InvalidArgument status the server returns for
// a confirmed kind mismatch.
func KindMismatchStatus(msg string) *status.Status {
	st := status.New(codes.InvalidArgument, msg)
	if detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: ReasonKindMismatch, Domain: ErrorDomain}); err == nil {
		return detailed
	}
	return st
}

func reason(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info.GetReason()
		}
	}
	return ""
}

// MapStatus translates a failed round trip into a structured client error.
// op names the protocol verb for context.
func MapStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *clienterr.Error
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return clienterr.Wrap(clienterr.KindTransport, op, "call context ended", err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return clienterr.Wrap(clienterr.KindTransport, op, "round trip failed", err)
	}
	if reason(st) == ReasonKindMismatch {
		return clienterr.Wrap(clienterr.KindKindMismatch, op, "server confirmed kind mismatch", err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return clienterr.Wrap(clienterr.KindTransport, op, st.Code().String(), err)
	case codes.FailedPrecondition:
		// Server uses FailedPrecondition only for unknown or finished transactions.
		return clienterr.Wrap(clienterr.KindTransactionClosed, op, "transaction is not open", err)
	default:
		return clienterr.Wrap(clienterr.KindServer, op, fmt.Sprintf("server rejected call (%s)", st.Code()), err)
	}
}
