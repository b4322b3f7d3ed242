package session

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/rpc"
	"xdao.co/concept/valuekind"
	"xdao.co/concept/wire"
)

// stubServer answers every call from fixed behavior.
type stubServer struct {
	rpc.UnimplementedConceptServer
	lastType string
	execErr  error
	stream   []wire.Response
	delay    time.Duration
}

func (s *stubServer) Open(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	s.lastType = in.GetValue()
	return wrapperspb.String("tx-1"), nil
}

func (s *stubServer) Commit(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(true), nil
}

func (s *stubServer) Close(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(true), nil
}

func (s *stubServer) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	}
	if s.execErr != nil {
		return nil, s.execErr
	}
	id, req, err := wire.DecodeRequest(in)
	if err != nil || id != "tx-1" {
		return nil, status.Error(codes.InvalidArgument, "bad request")
	}
	return wire.EncodeResponse(wire.Response{Found: true, Type: wire.TypeRecord{Label: req.Label, Kind: req.Kind}}), nil
}

func (s *stubServer) Stream(_ *structpb.Struct, stream rpc.Concept_StreamServer) error {
	for _, r := range s.stream {
		if err := stream.Send(wire.EncodeResponse(r)); err != nil {
			return err
		}
	}
	return nil
}

func dial(t *testing.T, srv rpc.ConceptServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	rpc.RegisterConceptServer(gs, srv)
	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func TestOpenExecuteCommit(t *testing.T) {
	ctx := context.Background()
	srv := &stubServer{}
	tx, err := Open(ctx, dial(t, srv), Write)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if srv.lastType != "write" || tx.ID() != "tx-1" || !tx.IsOpen() {
		t.Fatalf("unexpected open state: type=%q id=%q open=%v", srv.lastType, tx.ID(), tx.IsOpen())
	}

	resp, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: "age", Kind: valuekind.Long})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Type.Label != "age" || resp.Type.Kind != valuekind.Long {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if tx.IsOpen() {
		t.Fatalf("open after commit")
	}
	if _, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: "age"}); !clienterr.IsKind(err, clienterr.KindTransactionClosed) {
		t.Fatalf("Execute after commit: %v", err)
	}
	if err := tx.Commit(ctx); !clienterr.IsKind(err, clienterr.KindTransactionClosed) {
		t.Fatalf("second Commit: %v", err)
	}
	if err := tx.Close(ctx); err != nil {
		t.Fatalf("Close after commit: %v", err)
	}
}

func TestExecute_StatusMapping(t *testing.T) {
	ctx := context.Background()
	srv := &stubServer{execErr: status.Error(codes.InvalidArgument, "nope")}
	tx, err := Open(ctx, dial(t, srv), Read)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: "x"})
	if !clienterr.IsKind(err, clienterr.KindServer) {
		t.Fatalf("expected Server, got %v", err)
	}
	if !tx.IsOpen() {
		t.Fatalf("a server rejection must not close the transaction")
	}

	srv.execErr = status.Error(codes.FailedPrecondition, "gone")
	_, err = tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: "x"})
	if !clienterr.IsKind(err, clienterr.KindTransactionClosed) {
		t.Fatalf("expected TransactionClosed, got %v", err)
	}
	if tx.IsOpen() {
		t.Fatalf("transaction should be marked closed")
	}
}

func TestExecute_Timeout(t *testing.T) {
	ctx := context.Background()
	srv := &stubServer{delay: 2 * time.Second}
	tx, err := Open(ctx, dial(t, srv), Read, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: "x"})
	if !clienterr.IsKind(err, clienterr.KindTransport) {
		t.Fatalf("expected Transport, got %v", err)
	}
}

func TestStream(t *testing.T) {
	ctx := context.Background()
	srv := &stubServer{stream: []wire.Response{
		{Type: wire.TypeRecord{Label: "a", Kind: valuekind.String}},
		{Type: wire.TypeRecord{Label: "b", Kind: valuekind.String}},
	}}
	tx, err := Open(ctx, dial(t, srv), Read)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbGetSubtypes, Label: "a"}); !clienterr.IsKind(err, clienterr.KindUnsupported) {
		t.Fatalf("streaming verb via Execute: %v", err)
	}
	if _, err := tx.Stream(ctx, wire.Request{Verb: wire.VerbPut, Label: "a"}); !clienterr.IsKind(err, clienterr.KindUnsupported) {
		t.Fatalf("single verb via Stream: %v", err)
	}

	s, err := tx.Stream(ctx, wire.Request{Verb: wire.VerbGetSubtypes, Label: "a", Kind: valuekind.String})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer s.Close()
	var labels []string
	for {
		r, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		labels = append(labels, r.Type.Label)
	}
	if len(labels) != 2 || labels[0] != "a" || labels[1] != "b" {
		t.Fatalf("unexpected stream: %v", labels)
	}
}

func TestParseType(t *testing.T) {
	if typ, err := ParseType("write"); err != nil || typ != Write {
		t.Fatalf("ParseType(write) = %v, %v", typ, err)
	}
	if _, err := ParseType("admin"); !clienterr.IsKind(err, clienterr.KindConfiguration) {
		t.Fatalf("ParseType(admin): %v", err)
	}
}
