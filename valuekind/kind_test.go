package valuekind

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/concept/clienterr"
)

func TestResolve_KnownNativeTypes(t *testing.T) {
	cases := map[reflect.Type]Kind{
		reflect.TypeFor[any]():           Untyped,
		reflect.TypeFor[bool]():          Boolean,
		reflect.TypeFor[int64]():         Long,
		reflect.TypeFor[float64]():       Double,
		reflect.TypeFor[string]():        String,
		reflect.TypeFor[LocalDateTime](): DateTime,
	}
	for typ, want := range cases {
		got, err := Resolve(typ)
		require.NoError(t, err, typ.String())
		assert.Equal(t, want, got, typ.String())
		assert.Equal(t, typ, got.NativeType(), "NativeType must invert Resolve")
	}
}

func TestResolve_UnsupportedFailsFast(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[int](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[[]byte](),
		nil,
	} {
		got, err := Resolve(typ)
		require.Error(t, err)
		assert.True(t, clienterr.IsKind(err, clienterr.KindUnsupported), "%v", err)
		assert.NotEqual(t, Untyped, got, "unsupported types must not default to Untyped")
	}
}

func TestWritableAndKeyable(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k != Untyped, k.IsWritable(), k.String())
		assert.Equal(t, k == Long || k == String, k.IsKeyable(), k.String())
	}
	assert.False(t, Unrecognized.IsWritable())
	assert.False(t, Unrecognized.IsKeyable())
}

func TestWireTag_RoundTrip(t *testing.T) {
	for i, k := range Kinds() {
		tag := ToWireTag(k)
		assert.Equal(t, Tag(i), tag, "tags follow declaration order")
		assert.Equal(t, k, FromWireTag(tag))
	}
}

func TestWireTag_UnknownIsUnrecognized(t *testing.T) {
	for _, tag := range []Tag{99, 6, -7, TagUnrecognized} {
		got := FromWireTag(tag)
		assert.Equal(t, Unrecognized, got)
		assert.NotEqual(t, Untyped, got)
	}
	assert.Equal(t, TagUnrecognized, ToWireTag(Unrecognized))
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, Boolean, KindFor[bool]())
	assert.Equal(t, Long, KindFor[int64]())
	assert.Equal(t, Double, KindFor[float64]())
	assert.Equal(t, String, KindFor[string]())
	assert.Equal(t, DateTime, KindFor[LocalDateTime]())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("object")
	require.NoError(t, err)
	assert.Equal(t, Untyped, got)

	_, err = ParseKind("decimal")
	assert.True(t, clienterr.IsKind(err, clienterr.KindUnsupported))
}
