package wire

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
)

// ErrMalformed reports an envelope missing required fields or carrying fields
// of the wrong type.
var ErrMalformed = errors.New("wire: malformed envelope")

const (
	fieldTx        = "tx"
	fieldVerb      = "verb"
	fieldLabel     = "label"
	fieldKind      = "kind"
	fieldValue     = "value"
	fieldOther     = "other"
	fieldPattern   = "pattern"
	fieldFlag      = "flag"
	fieldFound     = "found"
	fieldType      = "type"
	fieldAttribute = "attribute"
	fieldIID       = "iid"
	fieldEntity    = "entity"

	fieldBool     = "bool"
	fieldLong     = "long"
	fieldDouble   = "double"
	fieldString   = "string"
	fieldDateTime = "datetime"
)

// EncodeRequest encodes r for transaction txID.
func EncodeRequest(txID string, r Request) *structpb.Struct {
	f := map[string]*structpb.Value{
		fieldTx:      structpb.NewStringValue(txID),
		fieldVerb:    structpb.NewStringValue(string(r.Verb)),
		fieldLabel:   structpb.NewStringValue(r.Label),
		fieldKind:    tagValue(r.Kind),
		fieldOther:   structpb.NewStringValue(r.Other),
		fieldPattern: structpb.NewStringValue(r.Pattern),
		fieldFlag:    structpb.NewBoolValue(r.Flag),
	}
	if r.Value.Kind() != valuekind.Untyped {
		f[fieldValue] = structpb.NewStructValue(encodeValue(r.Value))
	}
	return &structpb.Struct{Fields: f}
}

// DecodeRequest is the inverse of EncodeRequest.
func DecodeRequest(s *structpb.Struct) (string, Request, error) {
	if s == nil {
		return "", Request{}, fmt.Errorf("%w: nil request", ErrMalformed)
	}
	f := s.GetFields()
	r := Request{
		Verb:    Verb(f[fieldVerb].GetStringValue()),
		Label:   f[fieldLabel].GetStringValue(),
		Kind:    valuekind.FromWireTag(decodeTag(f[fieldKind])),
		Other:   f[fieldOther].GetStringValue(),
		Pattern: f[fieldPattern].GetStringValue(),
		Flag:    f[fieldFlag].GetBoolValue(),
	}
	if r.Verb == "" {
		return "", Request{}, fmt.Errorf("%w: missing verb", ErrMalformed)
	}
	if v, ok := f[fieldValue]; ok {
		val, err := decodeValue(v.GetStructValue())
		if err != nil {
			return "", Request{}, err
		}
		r.Value = val
	}
	return f[fieldTx].GetStringValue(), r, nil
}

// EncodeResponse encodes r.
func EncodeResponse(r Response) *structpb.Struct {
	f := map[string]*structpb.Value{
		fieldFound: structpb.NewBoolValue(r.Found),
	}
	if r.Type.Label != "" {
		f[fieldType] = structpb.NewStructValue(encodeType(r.Type))
	}
	if r.Attribute.IID != "" {
		f[fieldAttribute] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldIID:   structpb.NewStringValue(r.Attribute.IID),
			fieldType:  structpb.NewStructValue(encodeType(r.Attribute.Type)),
			fieldValue: structpb.NewStructValue(encodeValue(r.Attribute.Value)),
		}})
	}
	if r.Pattern != "" {
		f[fieldPattern] = structpb.NewStringValue(r.Pattern)
	}
	return &structpb.Struct{Fields: f}
}

// DecodeResponse is the inverse of EncodeResponse. A type record whose kind tag
// is unknown decodes with valuekind.Unrecognized rather than failing; an
// attribute value with an unknown tag fails with clienterr.KindUnsupported.
func DecodeResponse(s *structpb.Struct) (Response, error) {
	if s == nil {
		return Response{}, fmt.Errorf("%w: nil response", ErrMalformed)
	}
	f := s.GetFields()
	r := Response{
		Found:   f[fieldFound].GetBoolValue(),
		Pattern: f[fieldPattern].GetStringValue(),
	}
	if t, ok := f[fieldType]; ok {
		r.Type = decodeType(t.GetStructValue())
	}
	if a, ok := f[fieldAttribute]; ok {
		af := a.GetStructValue().GetFields()
		r.Attribute.IID = af[fieldIID].GetStringValue()
		r.Attribute.Type = decodeType(af[fieldType].GetStructValue())
		val, err := decodeValue(af[fieldValue].GetStructValue())
		if err != nil {
			return Response{}, err
		}
		r.Attribute.Value = val
	}
	return r, nil
}

func encodeType(t TypeRecord) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldLabel:  structpb.NewStringValue(t.Label),
		fieldKind:   tagValue(t.Kind),
		fieldEntity: structpb.NewBoolValue(t.Entity),
	}}
}

func decodeType(s *structpb.Struct) TypeRecord {
	f := s.GetFields()
	return TypeRecord{
		Label:  f[fieldLabel].GetStringValue(),
		Kind:   valuekind.FromWireTag(decodeTag(f[fieldKind])),
		Entity: f[fieldEntity].GetBoolValue(),
	}
}

func encodeValue(v valuekind.Value) *structpb.Struct {
	f := map[string]*structpb.Value{fieldKind: tagValue(v.Kind())}
	switch v.Kind() {
	case valuekind.Boolean:
		f[fieldBool] = structpb.NewBoolValue(v.Bool())
	case valuekind.Long:
		f[fieldLong] = structpb.NewStringValue(strconv.FormatInt(v.Long(), 10))
	case valuekind.Double:
		f[fieldDouble] = structpb.NewNumberValue(v.Double())
	case valuekind.String:
		f[fieldString] = structpb.NewStringValue(v.Str())
	case valuekind.DateTime:
		f[fieldDateTime] = structpb.NewStringValue(v.DateTime().String())
	}
	return &structpb.Struct{Fields: f}
}

func decodeValue(s *structpb.Struct) (valuekind.Value, error) {
	if s == nil {
		return valuekind.Value{}, fmt.Errorf("%w: missing value", ErrMalformed)
	}
	f := s.GetFields()
	tag := decodeTag(f[fieldKind])
	switch kind := valuekind.FromWireTag(tag); kind {
	case valuekind.Boolean:
		return valuekind.BoolValue(f[fieldBool].GetBoolValue()), nil
	case valuekind.Long:
		l, err := strconv.ParseInt(f[fieldLong].GetStringValue(), 10, 64)
		if err != nil {
			return valuekind.Value{}, fmt.Errorf("%w: long value: %v", ErrMalformed, err)
		}
		return valuekind.LongValue(l), nil
	case valuekind.Double:
		return valuekind.ValueOf(f[fieldDouble].GetNumberValue())
	case valuekind.String:
		return valuekind.StringValue(f[fieldString].GetStringValue()), nil
	case valuekind.DateTime:
		dt, err := valuekind.ParseLocalDateTime(f[fieldDateTime].GetStringValue())
		if err != nil {
			return valuekind.Value{}, err
		}
		return valuekind.DateTimeValue(dt), nil
	default:
		return valuekind.Value{}, clienterr.New(clienterr.KindUnsupported, "wire.decodeValue",
			fmt.Sprintf("value carries unrecognized kind tag %d", tag))
	}
}

func tagValue(k valuekind.Kind) *structpb.Value {
	return structpb.NewNumberValue(float64(valuekind.ToWireTag(k)))
}

func decodeTag(v *structpb.Value) valuekind.Tag {
	if v == nil {
		return valuekind.TagUnrecognized
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return valuekind.TagUnrecognized
	}
	x := n.NumberValue
	if x != math.Trunc(x) || x < math.MinInt32 || x > math.MaxInt32 {
		return valuekind.TagUnrecognized
	}
	return valuekind.Tag(int32(x))
}
