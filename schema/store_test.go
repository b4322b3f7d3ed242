package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/concept/valuekind"
)

func labels(types []Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.Label)
	}
	return out
}

func TestNew_RootsExist(t *testing.T) {
	tx := New().Begin(false)
	attr, ok, err := tx.Type(RootAttribute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, valuekind.Untyped, attr.Kind)
	assert.False(t, attr.Entity)

	ent, ok, err := tx.Type(RootEntity)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ent.Entity)
}

func TestDefineAttributeType(t *testing.T) {
	tx := New().Begin(true)
	name, err := tx.DefineAttributeType("name", valuekind.String)
	require.NoError(t, err)
	assert.Equal(t, RootAttribute, name.Super)

	again, err := tx.DefineAttributeType("name", valuekind.String)
	require.NoError(t, err)
	assert.Equal(t, name, again)

	_, err = tx.DefineAttributeType("name", valuekind.Long)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = tx.DefineAttributeType("thing", valuekind.Untyped)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPut_IdempotentAndGet(t *testing.T) {
	tx := New().Begin(true)
	_, err := tx.DefineAttributeType("age", valuekind.Long)
	require.NoError(t, err)

	a, err := tx.Put("age", valuekind.LongValue(30))
	require.NoError(t, err)
	b, err := tx.Put("age", valuekind.LongValue(30))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	got, ok, err := tx.Get("age", valuekind.LongValue(30))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, got)

	_, ok, err = tx.Get("age", valuekind.LongValue(31))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tx.Put("age", valuekind.StringValue("30"))
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = tx.Put(RootAttribute, valuekind.LongValue(1))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = tx.Put("missing", valuekind.LongValue(1))
	assert.True(t, IsNotFound(err))
}

func TestSetSupertype(t *testing.T) {
	tx := New().Begin(true)
	for _, l := range []string{"name", "first-name", "nickname"} {
		_, err := tx.DefineAttributeType(l, valuekind.String)
		require.NoError(t, err)
	}
	_, err := tx.DefineAttributeType("age", valuekind.Long)
	require.NoError(t, err)

	require.NoError(t, tx.SetSupertype("first-name", "name"))
	require.NoError(t, tx.SetSupertype("nickname", "first-name"))

	sup, ok, err := tx.Supertype("nickname")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first-name", sup.Label)

	assert.ErrorIs(t, tx.SetSupertype("age", "name"), ErrKindMismatch)
	assert.ErrorIs(t, tx.SetSupertype("name", "nickname"), ErrInvalid, "cycle")
	assert.ErrorIs(t, tx.SetSupertype("name", RootAttribute), ErrKindMismatch)

	subs, err := tx.Subtypes("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-name", "name", "nickname"}, labels(subs))

	_, ok, err = tx.Supertype(RootAttribute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInstances_IncludeSubtypes(t *testing.T) {
	tx := New().Begin(true)
	_, err := tx.DefineAttributeType("name", valuekind.String)
	require.NoError(t, err)
	_, err = tx.DefineAttributeType("nickname", valuekind.String)
	require.NoError(t, err)
	require.NoError(t, tx.SetSupertype("nickname", "name"))

	_, err = tx.Put("name", valuekind.StringValue("Alice"))
	require.NoError(t, err)
	_, err = tx.Put("nickname", valuekind.StringValue("Al"))
	require.NoError(t, err)

	all, err := tx.Instances("name")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nick, err := tx.Instances("nickname")
	require.NoError(t, err)
	require.Len(t, nick, 1)
	assert.Equal(t, "Al", nick[0].Value.Str())

	root, err := tx.Instances(RootAttribute)
	require.NoError(t, err)
	assert.Len(t, root, 2)
}

func TestRegex(t *testing.T) {
	tx := New().Begin(true)
	_, err := tx.DefineAttributeType("email", valuekind.String)
	require.NoError(t, err)
	_, err = tx.DefineAttributeType("age", valuekind.Long)
	require.NoError(t, err)

	_, err = tx.Put("email", valuekind.StringValue("a@b.c"))
	require.NoError(t, err)

	assert.ErrorIs(t, tx.SetRegex("email", "[a-z]+"), ErrRegexViolation, "existing instance violates")
	require.NoError(t, tx.SetRegex("email", `[^@]+@[^@]+`))

	got, err := tx.Regex("email")
	require.NoError(t, err)
	assert.Equal(t, `[^@]+@[^@]+`, got)

	_, err = tx.Put("email", valuekind.StringValue("nope"))
	assert.ErrorIs(t, err, ErrRegexViolation)
	_, err = tx.Put("email", valuekind.StringValue("x@y"))
	require.NoError(t, err)

	require.NoError(t, tx.SetRegex("email", ""))
	got, err = tx.Regex("email")
	require.NoError(t, err)
	assert.Empty(t, got)
	_, err = tx.Put("email", valuekind.StringValue("nope"))
	require.NoError(t, err)

	assert.ErrorIs(t, tx.SetRegex("age", "[0-9]+"), ErrKindMismatch)
	assert.ErrorIs(t, tx.SetRegex("email", "("), ErrInvalid)
}

func TestOwns(t *testing.T) {
	tx := New().Begin(true)
	_, err := tx.DefineEntityType("person")
	require.NoError(t, err)
	_, err = tx.DefineEntityType("company")
	require.NoError(t, err)
	_, err = tx.DefineAttributeType("name", valuekind.String)
	require.NoError(t, err)
	_, err = tx.DefineAttributeType("active", valuekind.Boolean)
	require.NoError(t, err)

	require.NoError(t, tx.SetOwns("person", "name", true))
	require.NoError(t, tx.SetOwns("company", "name", false))
	assert.ErrorIs(t, tx.SetOwns("person", "active", true), ErrKindMismatch)
	assert.ErrorIs(t, tx.SetOwns("name", "active", false), ErrInvalid)

	owners, err := tx.Owners("name", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "person"}, labels(owners))

	keyOwners, err := tx.Owners("name", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"person"}, labels(keyOwners))
}

func TestTxn_Isolation(t *testing.T) {
	store := New()
	w := store.Begin(true)
	_, err := w.DefineAttributeType("name", valuekind.String)
	require.NoError(t, err)

	r := store.Begin(false)
	_, ok, err := r.Type("name")
	require.NoError(t, err)
	assert.False(t, ok, "uncommitted writes are private")

	require.NoError(t, w.Commit())
	assert.Equal(t, uint64(1), store.Version())

	_, ok, _ = r.Type("name")
	assert.False(t, ok, "open snapshot does not change")
	_, ok, _ = store.Begin(false).Type("name")
	assert.True(t, ok)
}

func TestTxn_ConflictAndClosed(t *testing.T) {
	store := New()
	a := store.Begin(true)
	b := store.Begin(true)
	_, err := a.DefineAttributeType("x", valuekind.Long)
	require.NoError(t, err)
	_, err = b.DefineAttributeType("y", valuekind.Long)
	require.NoError(t, err)

	require.NoError(t, a.Commit())
	assert.ErrorIs(t, b.Commit(), ErrConflict)
	assert.ErrorIs(t, a.Commit(), ErrClosed)

	_, _, err = a.Type("x")
	assert.ErrorIs(t, err, ErrClosed)

	r := store.Begin(false)
	_, err = r.DefineAttributeType("z", valuekind.Long)
	assert.ErrorIs(t, err, ErrReadOnly)
	require.NoError(t, r.Commit())
}
