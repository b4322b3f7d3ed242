package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/concept/config"
	"xdao.co/concept/model"
	"xdao.co/concept/rpc"
	"xdao.co/concept/schema"
	"xdao.co/concept/server"
)

type harness struct {
	t   *testing.T
	lis *bufconn.Listener
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	rpc.RegisterConceptServer(gs, server.New(schema.New()))
	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)
	return &harness{t: t, lis: lis}
}

// ctl runs one conceptctl invocation against the in-process server.
func (h *harness) ctl(args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{out: &out, factory: func(config.Client) (rpc.ChannelFactory, error) {
		return rpc.PlainText{Options: rpc.Options{Dialer: func(ctx context.Context, _ string) (net.Conn, error) {
			return h.lis.DialContext(ctx)
		}}}, nil
	}}
	code = runWith(c, append([]string{"--address", "passthrough:///bufnet"}, args...), &errOut)
	return code, out.String(), errOut.String()
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestCLI_DefinePutGet(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.ctl("define", "age", "long")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, model.AttributeType{Label: "age", ValueKind: "long"}, decode[model.AttributeType](t, out))

	code, out, errOut = h.ctl("put", "age", "42")
	require.Equal(t, 0, code, errOut)
	first := decode[model.Attribute](t, out)
	assert.Equal(t, "42", first.Value)

	code, out, _ = h.ctl("put", "age", "42")
	require.Equal(t, 0, code)
	assert.Equal(t, first.IID, decode[model.Attribute](t, out).IID)

	code, out, _ = h.ctl("get", "age", "42")
	require.Equal(t, 0, code)
	got := decode[model.Lookup[model.Attribute]](t, out)
	require.True(t, got.Found)
	assert.Equal(t, first, *got.Result)

	code, out, _ = h.ctl("get", "age", "43")
	require.Equal(t, 0, code)
	assert.False(t, decode[model.Lookup[model.Attribute]](t, out).Found)

	code, out, _ = h.ctl("instances", "age")
	require.Equal(t, 0, code)
	assert.Len(t, decode[[]model.Attribute](t, out), 1)
}

func TestCLI_HierarchyAndRegex(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"define", "name", "string"},
		{"define", "nickname", "string"},
		{"define", "age", "long"},
		{"set-supertype", "nickname", "name"},
		{"regex", "name", "[A-Z][a-z]+"},
	} {
		code, _, errOut := h.ctl(args...)
		require.Equal(t, 0, code, "%v: %s", args, errOut)
	}

	code, out, _ := h.ctl("subtypes", "name")
	require.Equal(t, 0, code)
	assert.Equal(t, []model.AttributeType{
		{Label: "name", ValueKind: "string"},
		{Label: "nickname", ValueKind: "string"},
	}, decode[[]model.AttributeType](t, out))

	code, out, _ = h.ctl("supertype", "nickname")
	require.Equal(t, 0, code)
	assert.Equal(t, "name", decode[model.Lookup[model.AttributeType]](t, out).Result.Label)

	code, _, errOut := h.ctl("set-supertype", "age", "name")
	assert.Equal(t, 1, code)
	assert.Equal(t, model.ErrKindMismatch, decode[model.CodedError](t, errOut).Code)

	code, _, errOut = h.ctl("put", "name", "alice")
	assert.Equal(t, 1, code)
	assert.Equal(t, model.ErrServer, decode[model.CodedError](t, errOut).Code)

	code, out, _ = h.ctl("regex", "name", "--unset")
	require.Equal(t, 0, code)
	assert.False(t, decode[model.Regex](t, out).Set)

	code, _, errOut = h.ctl("regex", "age")
	assert.Equal(t, 1, code)
	assert.Equal(t, model.ErrTypeMismatch, decode[model.CodedError](t, errOut).Code)
}

func TestCLI_Owners(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"define-entity", "person"},
		{"define-entity", "company"},
		{"define", "email", "string"},
		{"owns", "person", "email", "--key"},
		{"owns", "company", "email"},
	} {
		code, _, errOut := h.ctl(args...)
		require.Equal(t, 0, code, "%v: %s", args, errOut)
	}

	code, out, _ := h.ctl("owners", "email", "--key")
	require.Equal(t, 0, code)
	assert.Equal(t, []model.ThingType{{Label: "person"}}, decode[[]model.ThingType](t, out))

	code, _, _ = h.ctl("define", "active", "boolean")
	require.Equal(t, 0, code)
	code, _, errOut := h.ctl("owns", "person", "active", "--key")
	assert.Equal(t, 1, code)
	assert.Equal(t, model.ErrKindMismatch, decode[model.CodedError](t, errOut).Code)
}

func TestCLI_Errors(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.ctl("define", "age")
	assert.Equal(t, 2, code, "missing argument")

	code, _, _ = h.ctl("define", "age", "colour")
	assert.Equal(t, 2, code, "unknown kind")

	code, _, _ = h.ctl("owners", "x", "--bogus")
	assert.Equal(t, 2, code, "unknown flag")

	code, _, errOut := h.ctl("get", "missing", "1")
	assert.Equal(t, 1, code)
	assert.Equal(t, model.ErrNotFound, decode[model.CodedError](t, errOut).Code)

	code, out, _ := h.ctl("type", "missing")
	require.Equal(t, 0, code)
	assert.False(t, decode[model.Lookup[model.AttributeType]](t, out).Found)
}
