package valuekind

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"xdao.co/concept/clienterr"
)

// Value is a concrete attribute value tagged with its Kind.
//
// The zero Value has kind Untyped and holds nothing. Value is comparable and
// == follows native equality within a kind.
type Value struct {
	kind Kind
	b    bool
	l    int64
	d    float64
	s    string
	dt   LocalDateTime
}

func BoolValue(b bool) Value { return Value{kind: Boolean, b: b} }
func LongValue(l int64) Value { return Value{kind: Long, l: l} }
func StringValue(s string) Value { return Value{kind: String, s: s} }
func DateTimeValue(dt LocalDateTime) Value { return Value{kind: DateTime, dt: dt} }

// DoubleValue wraps d. Negative zero is stored as zero.
func DoubleValue(d float64) Value {
	if d == 0 {
		d = 0
	}
	return Value{kind: Double, d: d}
}

// ValueOf wraps a native value. NaN doubles are rejected because no instance
// could ever compare equal to them. Date-times must fall in MinYear..MaxYear.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return BoolValue(x), nil
	case int64:
		return LongValue(x), nil
	case float64:
		if math.IsNaN(x) {
			return Value{}, clienterr.New(clienterr.KindUnsupported, "valuekind.ValueOf", "NaN is not a valid double value")
		}
		return DoubleValue(x), nil
	case string:
		return StringValue(x), nil
	case LocalDateTime:
		if !x.InRange() {
			return Value{}, clienterr.New(clienterr.KindUnsupported, "valuekind.ValueOf",
				fmt.Sprintf("year %d is outside %d..%d", x.Year(), MinYear, MaxYear))
		}
		return DateTimeValue(x), nil
	}
	return Value{}, clienterr.New(clienterr.KindUnsupported, "valuekind.ValueOf",
		fmt.Sprintf("no value kind for native type %T", v))
}

// As extracts the native value of v as V.
func As[V Native](v Value) (V, error) {
	out, ok := v.Interface().(V)
	if !ok {
		var zero V
		return zero, clienterr.New(clienterr.KindTypeMismatch, "valuekind.As",
			fmt.Sprintf("value of kind %s is not a %s", v.kind, KindFor[V]()))
	}
	return out, nil
}

// ParseValue parses the text form of a value of kind k.
func ParseValue(k Kind, s string) (Value, error) {
	const op = "valuekind.ParseValue"
	switch k {
	case Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, clienterr.Wrap(clienterr.KindUnsupported, op, "invalid boolean", err)
		}
		return BoolValue(b), nil
	case Long:
		l, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, clienterr.Wrap(clienterr.KindUnsupported, op, "invalid long", err)
		}
		return LongValue(l), nil
	case Double:
		d, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, clienterr.Wrap(clienterr.KindUnsupported, op, "invalid double", err)
		}
		return ValueOf(d)
	case String:
		return StringValue(s), nil
	case DateTime:
		dt, err := ParseLocalDateTime(s)
		if err != nil {
			return Value{}, err
		}
		return DateTimeValue(dt), nil
	}
	return Value{}, clienterr.New(clienterr.KindUnsupported, op, fmt.Sprintf("kind %s cannot hold a value", k))
}

func (v Value) Kind() Kind { return v.kind }

// Interface returns the native value, or nil for a zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case Boolean:
		return v.b
	case Long:
		return v.l
	case Double:
		return v.d
	case String:
		return v.s
	case DateTime:
		return v.dt
	default:
		return nil
	}
}

func (v Value) Bool() bool { return v.b }
func (v Value) Long() int64 { return v.l }
func (v Value) Double() float64 { return v.d }
func (v Value) Str() string { return v.s }
func (v Value) DateTime() LocalDateTime { return v.dt }

// String renders the value in the form ParseValue accepts.
func (v Value) String() string {
	switch v.kind {
	case Boolean:
		return strconv.FormatBool(v.b)
	case Long:
		return strconv.FormatInt(v.l, 10)
	case Double:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case String:
		return v.s
	case DateTime:
		return v.dt.String()
	default:
		return ""
	}
}

// Canonical returns a deterministic byte encoding of v: the wire tag followed
// by a kind-specific payload. Equal values have equal encodings.
func (v Value) Canonical() []byte {
	out := []byte{byte(ToWireTag(v.kind))}
	switch v.kind {
	case Boolean:
		if v.b {
			return append(out, 1)
		}
		return append(out, 0)
	case Long:
		return binary.BigEndian.AppendUint64(out, uint64(v.l))
	case Double:
		return binary.BigEndian.AppendUint64(out, math.Float64bits(v.d))
	case String:
		return append(out, v.s...)
	case DateTime:
		return append(out, v.dt.String()...)
	default:
		return out
	}
}
