// Package concept models schema attribute types as client-side handles.
//
// An AttributeType is an immutable local handle: a label tagged with one
// valuekind.Kind. Typed[V] is the specialized form for one native value type
// and is obtained by narrowing (AsLong, AsString, ...), which fails with
// clienterr.KindTypeMismatch instead of returning a handle with the wrong
// semantics. Calling AsRemote with a Transaction binds a handle to that
// transaction; the remote forms keep the specialization, so
//
//	str, err := attr.AsString()
//	remote := str.AsRemote(tx) // *RemoteString
//
// needs no further assertion. Every remote call is one round trip.
package concept

import (
	"fmt"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
	"xdao.co/concept/wire"
)

// RootLabel is the label of the abstract root attribute type.
const RootLabel = "attribute"

// AttributeType is a local handle on a schema attribute type. The zero value
// is not a valid handle.
type AttributeType struct {
	label string
	kind  valuekind.Kind
}

// NewAttributeType returns a local handle. kind must be one of the six known
// kinds.
func NewAttributeType(label string, kind valuekind.Kind) (AttributeType, error) {
	if !kind.Known() {
		return AttributeType{}, clienterr.New(clienterr.KindUnsupported, "attribute_type.new",
			fmt.Sprintf("%q carries unrecognized value kind %d", label, int(kind)))
	}
	return AttributeType{label: label, kind: kind}, nil
}

// RootAttributeType returns the handle on the abstract root.
func RootAttributeType() AttributeType {
	return AttributeType{label: RootLabel, kind: valuekind.Untyped}
}

func (a AttributeType) Label() string { return a.label }

// ValueKind returns the handle's kind; Untyped for the root.
func (a AttributeType) ValueKind() valuekind.Kind { return a.kind }

func (a AttributeType) IsRoot() bool { return a.kind == valuekind.Untyped }

func (a AttributeType) String() string { return a.label + ":" + a.kind.String() }

// AsRemote binds the handle to tx.
func (a AttributeType) AsRemote(tx Transaction) *RemoteAttributeType {
	return &RemoteAttributeType{AttributeType: a, tx: tx}
}

// Narrow returns a as the specialized form for V.
func Narrow[V valuekind.Native](a AttributeType) (Typed[V], error) {
	want := valuekind.KindFor[V]()
	if a.kind != want {
		return Typed[V]{}, clienterr.New(clienterr.KindTypeMismatch, "attribute_type.as_"+want.String(),
			fmt.Sprintf("%q holds %s, not %s", a.label, a.kind, want))
	}
	return Typed[V]{AttributeType: a}, nil
}

func (a AttributeType) AsBoolean() (BooleanType, error) { return Narrow[bool](a) }
func (a AttributeType) AsLong() (LongType, error) { return Narrow[int64](a) }
func (a AttributeType) AsDouble() (DoubleType, error) { return Narrow[float64](a) }
func (a AttributeType) AsDateTime() (DateTimeType, error) {
	return Narrow[valuekind.LocalDateTime](a)
}

func (a AttributeType) AsString() (StringType, error) {
	t, err := Narrow[string](a)
	if err != nil {
		return StringType{}, err
	}
	return StringType{Typed: t}, nil
}

// Typed is an attribute type whose values are V.
type Typed[V valuekind.Native] struct {
	AttributeType
}

// AsRemote binds the handle to tx, keeping its value type.
func (t Typed[V]) AsRemote(tx Transaction) *Remote[V] {
	return &Remote[V]{RemoteAttributeType: t.AttributeType.AsRemote(tx)}
}

type (
	BooleanType  = Typed[bool]
	LongType     = Typed[int64]
	DoubleType   = Typed[float64]
	DateTimeType = Typed[valuekind.LocalDateTime]
)

// StringType is the string-kind form. Its remote form carries the regex
// operations.
type StringType struct {
	Typed[string]
}

func (t StringType) AsRemote(tx Transaction) *RemoteString {
	return &RemoteString{Remote: t.Typed.AsRemote(tx)}
}

func attributeTypeFromRecord(op string, rec wire.TypeRecord) (AttributeType, error) {
	if rec.Entity {
		return AttributeType{}, clienterr.New(clienterr.KindTypeMismatch, op,
			fmt.Sprintf("%q is an entity type, not an attribute type", rec.Label))
	}
	if !rec.Kind.Known() {
		return AttributeType{}, clienterr.New(clienterr.KindUnsupported, op,
			fmt.Sprintf("server sent unrecognized value kind for %q", rec.Label))
	}
	return AttributeType{label: rec.Label, kind: rec.Kind}, nil
}

func typedFromRecord[V valuekind.Native](op string, rec wire.TypeRecord) (Typed[V], error) {
	a, err := attributeTypeFromRecord(op, rec)
	if err != nil {
		return Typed[V]{}, err
	}
	return Narrow[V](a)
}
