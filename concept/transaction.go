package concept

import (
	"context"
	"errors"
	"io"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/wire"
)

// Transaction is the call context remote handles are bound to.
//
// Implementations issue one round trip per call and report whether they are
// still open. The session package provides the gRPC-backed implementation.
// Remote handles check IsOpen before every call and fail with
// clienterr.KindTransactionClosed without a round trip once it reports false.
type Transaction interface {
	IsOpen() bool
	Execute(ctx context.Context, req wire.Request) (wire.Response, error)
	Stream(ctx context.Context, req wire.Request) (wire.ResponseStream, error)
}

// Iterator is a lazy, forward-only, single-pass sequence of results read from
// a response stream. Obtain a fresh one by repeating the call that produced it.
//
//	it, err := remote.GetInstances(ctx)
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		use(it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	op     string
	stream wire.ResponseStream
	decode func(wire.Response) (T, error)
	cur    T
	err    error
	done   bool
}

func newIterator[T any](op string, stream wire.ResponseStream, decode func(wire.Response) (T, error)) *Iterator[T] {
	return &Iterator[T]{op: op, stream: stream, decode: decode}
}

// Next advances to the next element and reports whether there is one.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}
	resp, err := it.stream.Recv()
	if errors.Is(err, io.EOF) {
		it.finish(nil)
		return false
	}
	if err != nil {
		it.finish(roundTripError(it.op, err))
		return false
	}
	v, err := it.decode(resp)
	if err != nil {
		it.finish(err)
		return false
	}
	it.cur = v
	return true
}

func (it *Iterator[T]) finish(err error) {
	it.done = true
	it.err = err
	var zero T
	it.cur = zero
	_ = it.stream.Close()
}

// Value returns the current element.
func (it *Iterator[T]) Value() T { return it.cur }

// Err returns the error that ended iteration, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Close releases the underlying stream. It is safe to call more than once.
func (it *Iterator[T]) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	return it.stream.Close()
}

// Collect drains it into a slice and closes it.
func Collect[T any](it *Iterator[T]) ([]T, error) {
	defer it.Close()
	var out []T
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

func roundTripError(op string, err error) error {
	if clienterr.KindOf(err) != "" {
		return err
	}
	return clienterr.Wrap(clienterr.KindTransport, op, "round trip failed", err)
}
