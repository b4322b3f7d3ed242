// Package session implements concept.Transaction over the Concept gRPC
// service.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/rpc"
	"xdao.co/concept/wire"
)

// Type selects what a transaction may do.
type Type int

const (
	Read Type = iota
	Write
)

func (t Type) String() string {
	if t == Write {
		return "write"
	}
	return "read"
}

// ParseType accepts "read" and "write".
func ParseType(s string) (Type, error) {
	switch s {
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	}
	return Read, clienterr.New(clienterr.KindConfiguration, "session.ParseType",
		fmt.Sprintf("unknown transaction type %q", s))
}

type Option func(*Tx)

// WithTimeout bounds every round trip, streams included, by d.
func WithTimeout(d time.Duration) Option {
	return func(t *Tx) { t.timeout = d }
}

// Tx is a server-side transaction. It is safe for concurrent use; the
// server serializes calls within one transaction.
type Tx struct {
	client  rpc.ConceptClient
	id      string
	typ     Type
	timeout time.Duration

	mu   sync.Mutex
	open bool
}

// Open starts a transaction on cc, typically an *rpc.Channel.
func Open(ctx context.Context, cc grpc.ClientConnInterface, typ Type, opts ...Option) (*Tx, error) {
	const op = "session.Open"
	t := &Tx{client: rpc.NewConceptClient(cc), typ: typ}
	for _, o := range opts {
		o(t)
	}
	ctx, cancel := t.callContext(ctx)
	defer cancel()
	id, err := t.client.Open(ctx, wrapperspb.String(typ.String()))
	if err != nil {
		return nil, rpc.MapStatus(op, err)
	}
	t.id = id.GetValue()
	t.open = true
	log.Debug().Str("tx", t.id).Stringer("type", typ).Msg("transaction opened")
	return t, nil
}

func (t *Tx) ID() string { return t.id }
func (t *Tx) Type() Type { return t.typ }

func (t *Tx) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *Tx) markClosed() {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
}

func (t *Tx) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

// fail maps err and notices when the server no longer knows the transaction.
func (t *Tx) fail(op string, err error) error {
	err = rpc.MapStatus(op, err)
	if clienterr.IsKind(err, clienterr.KindTransactionClosed) {
		t.markClosed()
	}
	return err
}

func (t *Tx) ensureOpen(op string) error {
	if !t.IsOpen() {
		return clienterr.New(clienterr.KindTransactionClosed, op, fmt.Sprintf("transaction %s is closed", t.id))
	}
	return nil
}

func (t *Tx) Execute(ctx context.Context, req wire.Request) (wire.Response, error) {
	op := string(req.Verb)
	if err := t.ensureOpen(op); err != nil {
		return wire.Response{}, err
	}
	if req.Verb.Streaming() {
		return wire.Response{}, clienterr.New(clienterr.KindUnsupported, op, "streaming verb sent as a single call")
	}
	ctx, cancel := t.callContext(ctx)
	defer cancel()
	out, err := t.client.Execute(ctx, wire.EncodeRequest(t.id, req))
	if err != nil {
		return wire.Response{}, t.fail(op, err)
	}
	resp, err := wire.DecodeResponse(out)
	if err != nil {
		return wire.Response{}, clienterr.Wrap(clienterr.KindServer, op, "undecodable response", err)
	}
	return resp, nil
}

func (t *Tx) Stream(ctx context.Context, req wire.Request) (wire.ResponseStream, error) {
	op := string(req.Verb)
	if err := t.ensureOpen(op); err != nil {
		return nil, err
	}
	if !req.Verb.Streaming() {
		return nil, clienterr.New(clienterr.KindUnsupported, op, "single-response verb sent as a stream")
	}
	ctx, cancel := t.callContext(ctx)
	s, err := t.client.Stream(ctx, wire.EncodeRequest(t.id, req))
	if err != nil {
		cancel()
		return nil, t.fail(op, err)
	}
	return &responseStream{tx: t, op: op, s: s, cancel: cancel}, nil
}

// Commit publishes the transaction's writes and ends it. The transaction is
// closed afterwards even when the commit is rejected.
func (t *Tx) Commit(ctx context.Context) error {
	const op = "session.Commit"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	defer t.markClosed()
	ctx, cancel := t.callContext(ctx)
	defer cancel()
	if _, err := t.client.Commit(ctx, wrapperspb.String(t.id)); err != nil {
		return rpc.MapStatus(op, err)
	}
	log.Debug().Str("tx", t.id).Msg("transaction committed")
	return nil
}

// Close discards the transaction. Closing a closed transaction is a no-op.
func (t *Tx) Close(ctx context.Context) error {
	const op = "session.Close"
	if !t.IsOpen() {
		return nil
	}
	t.markClosed()
	ctx, cancel := t.callContext(ctx)
	defer cancel()
	if _, err := t.client.Close(ctx, wrapperspb.String(t.id)); err != nil {
		err = rpc.MapStatus(op, err)
		if clienterr.IsKind(err, clienterr.KindTransactionClosed) {
			return nil
		}
		return err
	}
	log.Debug().Str("tx", t.id).Msg("transaction closed")
	return nil
}

type responseStream struct {
	tx     *Tx
	op     string
	s      rpc.Concept_StreamClient
	cancel context.CancelFunc
}

func (r *responseStream) Recv() (wire.Response, error) {
	m, err := r.s.Recv()
	if errors.Is(err, io.EOF) {
		return wire.Response{}, io.EOF
	}
	if err != nil {
		return wire.Response{}, r.tx.fail(r.op, err)
	}
	resp, err := wire.DecodeResponse(m)
	if err != nil {
		return wire.Response{}, clienterr.Wrap(clienterr.KindServer, r.op, "undecodable response", err)
	}
	return resp, nil
}

func (r *responseStream) Close() error {
	r.cancel()
	return nil
}
