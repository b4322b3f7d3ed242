// Package concepttest is a conformance suite for concept.Transaction
// implementations.
package concepttest

import (
	"context"
	"math"
	"testing"

	"xdao.co/concept/concept"
	"xdao.co/concept/cidutil"
	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
)

// NewTx opens a write transaction on a fresh schema holding only the root
// types. The schema MUST be isolated from other tests.
type NewTx func(t *testing.T) concept.Transaction

func RunConformance(t *testing.T, newTx NewTx) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutIdempotent", func(t *testing.T) {
		tx := newTx(t)
		age := defineLong(t, tx, "age")

		a, err := age.Put(ctx, 42)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		b, err := age.Put(ctx, 42)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if a != b {
			t.Fatalf("Put not idempotent: %+v vs %+v", a, b)
		}
		wantIID, err := cidutil.AttributeIID("age", valuekind.LongValue(42))
		if err != nil {
			t.Fatalf("AttributeIID failed: %v", err)
		}
		if a.IID != wantIID.String() {
			t.Fatalf("IID mismatch: got %s want %s", a.IID, wantIID)
		}
	})

	t.Run("GetAfterPut", func(t *testing.T) {
		tx := newTx(t)
		age := defineLong(t, tx, "age")

		put, err := age.Put(ctx, 7)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, ok, err := age.Get(ctx, 7)
		if err != nil || !ok {
			t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
		}
		if got != put {
			t.Fatalf("Get mismatch: got %+v want %+v", got, put)
		}
		_, ok, err = age.Get(ctx, 8)
		if err != nil {
			t.Fatalf("Get(absent) failed: %v", err)
		}
		if ok {
			t.Fatalf("Get returned an instance for a value never put")
		}
	})

	t.Run("ValueKinds", func(t *testing.T) {
		tx := newTx(t)
		flag := define(t, tx, "flag", valuekind.Boolean)
		score := define(t, tx, "score", valuekind.Double)
		born := define(t, tx, "born", valuekind.DateTime)

		b, err := flag.AsBoolean()
		if err != nil {
			t.Fatalf("AsBoolean failed: %v", err)
		}
		if a, err := b.Put(ctx, true); err != nil || !a.Value {
			t.Fatalf("Put(bool): %+v %v", a, err)
		}

		d, err := score.AsDouble()
		if err != nil {
			t.Fatalf("AsDouble failed: %v", err)
		}
		neg, err := d.Put(ctx, math.Copysign(0, -1))
		if err != nil {
			t.Fatalf("Put(-0) failed: %v", err)
		}
		pos, err := d.Put(ctx, 0.0)
		if err != nil {
			t.Fatalf("Put(0) failed: %v", err)
		}
		if neg.IID != pos.IID {
			t.Fatalf("-0 and 0 must be the same instance")
		}

		dt, err := born.AsDateTime()
		if err != nil {
			t.Fatalf("AsDateTime failed: %v", err)
		}
		when, err := valuekind.ParseLocalDateTime("1990-05-17T08:30:00.25")
		if err != nil {
			t.Fatalf("ParseLocalDateTime failed: %v", err)
		}
		a, err := dt.Put(ctx, when)
		if err != nil {
			t.Fatalf("Put(datetime) failed: %v", err)
		}
		if a.Value != when {
			t.Fatalf("datetime changed in transit: got %s want %s", a.Value, when)
		}
	})

	t.Run("SetSupertypeKindMismatch", func(t *testing.T) {
		tx := newTx(t)
		name := define(t, tx, "name", valuekind.String)
		age := define(t, tx, "age", valuekind.Long)

		err := name.SetSupertype(ctx, age.Local())
		if !clienterr.IsKind(err, clienterr.KindKindMismatch) {
			t.Fatalf("expected KindMismatch, got %v", err)
		}
	})

	t.Run("HierarchyAndInstances", func(t *testing.T) {
		tx := newTx(t)
		name := defineString(t, tx, "name")
		nick := defineString(t, tx, "nickname")
		if err := nick.SetSupertype(ctx, name.Local()); err != nil {
			t.Fatalf("SetSupertype failed: %v", err)
		}

		sup, ok, err := nick.GetSupertype(ctx)
		if err != nil || !ok || sup.Label() != "name" {
			t.Fatalf("GetSupertype: %v %v %v", sup, ok, err)
		}
		if _, ok, err := name.GetSupertype(ctx); err != nil || ok {
			t.Fatalf("type under the root reported a typed supertype: ok=%v err=%v", ok, err)
		}
		if _, err := name.Put(ctx, "Alice"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, err := nick.Put(ctx, "Al"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		subs := collect(t, name.GetSubtypes)
		if len(subs) != 2 || subs[0].Label() != "name" || subs[1].Label() != "nickname" {
			t.Fatalf("GetSubtypes: %v", subs)
		}
		if got := len(collect(t, name.GetInstances)); got != 2 {
			t.Fatalf("GetInstances(name): got %d want 2", got)
		}
		nickInsts := collect(t, nick.GetInstances)
		if len(nickInsts) != 1 || nickInsts[0].Value != "Al" {
			t.Fatalf("GetInstances(nickname): %+v", nickInsts)
		}
		if got := len(collect(t, concept.RootAttributeType().AsRemote(tx).GetInstances)); got != 2 {
			t.Fatalf("GetInstances(root): got %d want 2", got)
		}
	})

	t.Run("Regex", func(t *testing.T) {
		tx := newTx(t)
		email := defineString(t, tx, "email")

		if _, ok, err := email.GetRegex(ctx); err != nil || ok {
			t.Fatalf("fresh type has a regex: ok=%v err=%v", ok, err)
		}
		if err := email.SetRegex(ctx, `[^@]+@[^@]+`); err != nil {
			t.Fatalf("SetRegex failed: %v", err)
		}
		got, ok, err := email.GetRegex(ctx)
		if err != nil || !ok || got != `[^@]+@[^@]+` {
			t.Fatalf("GetRegex: %q %v %v", got, ok, err)
		}
		if _, err := email.Put(ctx, "not-an-email"); !clienterr.IsKind(err, clienterr.KindServer) {
			t.Fatalf("Put violating regex: expected Server error, got %v", err)
		}
		if _, err := email.Put(ctx, "a@b"); err != nil {
			t.Fatalf("Put matching regex failed: %v", err)
		}
		if err := email.UnsetRegex(ctx); err != nil {
			t.Fatalf("UnsetRegex failed: %v", err)
		}
		if _, ok, err := email.GetRegex(ctx); err != nil || ok {
			t.Fatalf("cleared regex still present: ok=%v err=%v", ok, err)
		}
	})

	t.Run("Owners", func(t *testing.T) {
		tx := newTx(t)
		name := define(t, tx, "name", valuekind.String)
		person, err := concept.PutEntityType(ctx, tx, "person")
		if err != nil {
			t.Fatalf("PutEntityType failed: %v", err)
		}
		company, err := concept.PutEntityType(ctx, tx, "company")
		if err != nil {
			t.Fatalf("PutEntityType failed: %v", err)
		}
		if err := person.SetOwns(ctx, name.Local(), true); err != nil {
			t.Fatalf("SetOwns(key) failed: %v", err)
		}
		if err := company.SetOwns(ctx, name.Local(), false); err != nil {
			t.Fatalf("SetOwns failed: %v", err)
		}

		all := collectOwners(t, name, false)
		if len(all) != 2 {
			t.Fatalf("GetOwners: %v", all)
		}
		keys := collectOwners(t, name, true)
		if len(keys) != 1 || keys[0].Label() != "person" {
			t.Fatalf("GetOwners(onlyKey): %v", keys)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		tx := newTx(t)
		if _, ok, err := concept.GetAttributeType(ctx, tx, "missing"); err != nil || ok {
			t.Fatalf("GetAttributeType(missing): ok=%v err=%v", ok, err)
		}
		ghost, err := concept.NewAttributeType("ghost", valuekind.Long)
		if err != nil {
			t.Fatalf("NewAttributeType failed: %v", err)
		}
		long, err := ghost.AsLong()
		if err != nil {
			t.Fatalf("AsLong failed: %v", err)
		}
		if _, err := long.AsRemote(tx).Put(ctx, 1); !clienterr.IsKind(err, clienterr.KindServer) {
			t.Fatalf("Put on undefined type: expected Server error, got %v", err)
		}
	})
}

func define(t *testing.T, tx concept.Transaction, label string, kind valuekind.Kind) *concept.RemoteAttributeType {
	t.Helper()
	a, err := concept.PutAttributeType(context.Background(), tx, label, kind)
	if err != nil {
		t.Fatalf("PutAttributeType(%s) failed: %v", label, err)
	}
	return a
}

func defineLong(t *testing.T, tx concept.Transaction, label string) *concept.RemoteLong {
	t.Helper()
	l, err := define(t, tx, label, valuekind.Long).AsLong()
	if err != nil {
		t.Fatalf("AsLong failed: %v", err)
	}
	return l
}

func defineString(t *testing.T, tx concept.Transaction, label string) *concept.RemoteString {
	t.Helper()
	s, err := define(t, tx, label, valuekind.String).AsString()
	if err != nil {
		t.Fatalf("AsString failed: %v", err)
	}
	return s
}

func collect[T any](t *testing.T, call func(context.Context) (*concept.Iterator[T], error)) []T {
	t.Helper()
	it, err := call(context.Background())
	if err != nil {
		t.Fatalf("iterator call failed: %v", err)
	}
	out, err := concept.Collect(it)
	if err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	return out
}

func collectOwners(t *testing.T, attr *concept.RemoteAttributeType, onlyKey bool) []concept.ThingType {
	t.Helper()
	it, err := attr.GetOwners(context.Background(), onlyKey)
	if err != nil {
		t.Fatalf("GetOwners failed: %v", err)
	}
	out, err := concept.Collect(it)
	if err != nil {
		t.Fatalf("GetOwners iteration failed: %v", err)
	}
	return out
}
