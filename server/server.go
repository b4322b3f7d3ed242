// Package server is the reference implementation of the Concept gRPC service,
// backed by a schema.Store.
package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/concept/rpc"
	"xdao.co/concept/schema"
	"xdao.co/concept/wire"
)

var (
	errUnknownVerb = errors.New("server: unknown verb")
	errUnknownTx   = errors.New("server: unknown transaction")
)

type openTx struct {
	mu  sync.Mutex
	txn *schema.Txn
}

// Server exposes a schema.Store over the Concept service.
type Server struct {
	rpc.UnimplementedConceptServer
	Store *schema.Store

	mu  sync.Mutex
	txs map[string]*openTx
}

func New(store *schema.Store) *Server {
	return &Server{Store: store, txs: map[string]*openTx{}}
}

// OpenTransactions counts transactions neither committed nor closed.
func (s *Server) OpenTransactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

func (s *Server) Open(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	var write bool
	switch in.GetValue() {
	case "read":
	case "write":
		write = true
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown transaction type %q", in.GetValue())
	}
	id := uuid.NewString()
	s.mu.Lock()
	if s.txs == nil {
		s.txs = map[string]*openTx{}
	}
	s.txs[id] = &openTx{txn: s.Store.Begin(write)}
	s.mu.Unlock()
	log.Debug().Str("tx", id).Bool("write", write).Msg("transaction opened")
	return wrapperspb.String(id), nil
}

func (s *Server) lookup(id string) (*openTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, errUnknownTx
	}
	return tx, nil
}

func (s *Server) take(id string) (*openTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, errUnknownTx
	}
	delete(s.txs, id)
	return tx, nil
}

func (s *Server) Commit(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	tx, err := s.take(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.txn.Commit(); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) Close(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	tx, err := s.take(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	tx.mu.Lock()
	tx.txn.Close()
	tx.mu.Unlock()
	return wrapperspb.Bool(true), nil
}

func (s *Server) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	id, req, err := wire.DecodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Verb.Streaming() {
		return nil, status.Errorf(codes.InvalidArgument, "verb %q must be streamed", req.Verb)
	}
	tx, err := s.lookup(id)
	if err != nil {
		return nil, mapErr(err)
	}
	tx.mu.Lock()
	resp, err := Dispatch(tx.txn, req)
	tx.mu.Unlock()
	if err != nil {
		return nil, mapErr(err)
	}
	return wire.EncodeResponse(resp), nil
}

func (s *Server) Stream(in *structpb.Struct, stream rpc.Concept_StreamServer) error {
	id, req, err := wire.DecodeRequest(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	tx, err := s.lookup(id)
	if err != nil {
		return mapErr(err)
	}
	// Results are read from the snapshot under the lock and sent after it.
	tx.mu.Lock()
	items, err := DispatchStream(tx.txn, req)
	tx.mu.Unlock()
	if err != nil {
		return mapErr(err)
	}
	for _, item := range items {
		if err := stream.Context().Err(); err != nil {
			return status.FromContextError(err).Err()
		}
		if err := stream.Send(wire.EncodeResponse(item)); err != nil {
			return err
		}
	}
	return nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, schema.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, schema.ErrKindMismatch):
		return rpc.KindMismatchStatus(err.Error()).Err()
	case errors.Is(err, schema.ErrInvalid),
		errors.Is(err, schema.ErrRegexViolation),
		errors.Is(err, errUnknownVerb):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, schema.ErrReadOnly):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, schema.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, schema.ErrClosed), errors.Is(err, errUnknownTx):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
