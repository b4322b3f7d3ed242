package wire

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
)

// reencode pushes s through the protobuf binary form, as gRPC would.
func reencode(t *testing.T, s *structpb.Struct) *structpb.Struct {
	t.Helper()
	b, err := proto.Marshal(s)
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, proto.Unmarshal(b, out))
	return out
}

func TestRequest_LongPrecisionSurvives(t *testing.T) {
	req := Request{
		Verb:  VerbPut,
		Label: "serial",
		Kind:  valuekind.Long,
		Value: valuekind.LongValue(math.MaxInt64 - 1),
	}
	tx, got, err := DecodeRequest(reencode(t, EncodeRequest("tx-1", req)))
	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx)
	assert.Equal(t, req, got)
}

func TestRequest_DateTimeStaysZoneless(t *testing.T) {
	dt := valuekind.NewLocalDateTime(1999, time.December, 31, 23, 59, 59, 123456789)
	req := Request{Verb: VerbGet, Label: "born", Kind: valuekind.DateTime, Value: valuekind.DateTimeValue(dt)}

	s := EncodeRequest("tx", req)
	text := s.GetFields()[fieldValue].GetStructValue().GetFields()[fieldDateTime].GetStringValue()
	assert.Equal(t, "1999-12-31T23:59:59.123456789", text)

	_, got, err := DecodeRequest(reencode(t, s))
	require.NoError(t, err)
	assert.Equal(t, dt, got.Value.DateTime())
}

func TestRequest_MissingVerb(t *testing.T) {
	_, _, err := DecodeRequest(&structpb.Struct{})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestResponse_UnrecognizedTypeKindIsPreserved(t *testing.T) {
	s := EncodeResponse(Response{Found: true, Type: TypeRecord{Label: "future", Kind: valuekind.String}})
	s.GetFields()[fieldType].GetStructValue().GetFields()[fieldKind] = structpb.NewNumberValue(99)

	got, err := DecodeResponse(reencode(t, s))
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, "future", got.Type.Label)
	assert.Equal(t, valuekind.Unrecognized, got.Type.Kind)
}

func TestResponse_UnrecognizedValueTagFails(t *testing.T) {
	s := EncodeResponse(Response{Found: true, Attribute: AttributeRecord{
		IID:   "bafk",
		Type:  TypeRecord{Label: "name", Kind: valuekind.String},
		Value: valuekind.StringValue("x"),
	}})
	attr := s.GetFields()[fieldAttribute].GetStructValue()
	attr.GetFields()[fieldValue].GetStructValue().GetFields()[fieldKind] = structpb.NewNumberValue(42)

	_, err := DecodeResponse(s)
	assert.True(t, clienterr.IsKind(err, clienterr.KindUnsupported))
}

func TestResponse_AttributeRoundTrip(t *testing.T) {
	want := Response{Found: true, Attribute: AttributeRecord{
		IID:   "bafkreiexample",
		Type:  TypeRecord{Label: "score", Kind: valuekind.Double},
		Value: valuekind.DoubleValue(-2.5),
	}}
	got, err := DecodeResponse(reencode(t, EncodeResponse(want)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerbClassification(t *testing.T) {
	assert.True(t, VerbGetInstances.Streaming())
	assert.False(t, VerbPut.Streaming())
	assert.True(t, VerbSetRegex.Mutating())
	assert.False(t, VerbGetRegex.Mutating())
}

func TestSliceStream(t *testing.T) {
	s := NewSliceStream([]Response{{Found: true}, {Pattern: "p"}})
	r, err := s.Recv()
	require.NoError(t, err)
	assert.True(t, r.Found)
	require.NoError(t, s.Close())
	_, err = s.Recv()
	assert.Equal(t, io.EOF, err)
}
