package concept

import (
	"context"
	"fmt"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
	"xdao.co/concept/wire"
)

// RemoteAttributeType is an attribute type bound to a transaction. It exposes
// the operations every attribute type supports, whatever its kind.
type RemoteAttributeType struct {
	AttributeType
	tx Transaction
}

func (r *RemoteAttributeType) Transaction() Transaction { return r.tx }

// Local returns the transaction-independent handle.
func (r *RemoteAttributeType) Local() AttributeType { return r.AttributeType }

func (r *RemoteAttributeType) request(verb wire.Verb) wire.Request {
	return wire.Request{Verb: verb, Label: r.label, Kind: r.kind}
}

func (r *RemoteAttributeType) execute(ctx context.Context, req wire.Request) (wire.Response, error) {
	op := string(req.Verb)
	if r.tx == nil || !r.tx.IsOpen() {
		return wire.Response{}, clienterr.New(clienterr.KindTransactionClosed, op,
			fmt.Sprintf("transaction of %q is closed", r.label))
	}
	resp, err := r.tx.Execute(ctx, req)
	if err != nil {
		return wire.Response{}, roundTripError(op, err)
	}
	return resp, nil
}

func (r *RemoteAttributeType) stream(ctx context.Context, req wire.Request) (wire.ResponseStream, error) {
	op := string(req.Verb)
	if r.tx == nil || !r.tx.IsOpen() {
		return nil, clienterr.New(clienterr.KindTransactionClosed, op,
			fmt.Sprintf("transaction of %q is closed", r.label))
	}
	s, err := r.tx.Stream(ctx, req)
	if err != nil {
		return nil, roundTripError(op, err)
	}
	return s, nil
}

// SetSupertype makes super the direct supertype. The kinds must be equal;
// a mismatch fails with clienterr.KindKindMismatch without a round trip.
func (r *RemoteAttributeType) SetSupertype(ctx context.Context, super AttributeType) error {
	const op = string(wire.VerbSetSupertype)
	if super.kind != r.kind {
		return clienterr.New(clienterr.KindKindMismatch, op,
			fmt.Sprintf("%q holds %s but supertype %q holds %s", r.label, r.kind, super.label, super.kind))
	}
	req := r.request(wire.VerbSetSupertype)
	req.Other = super.label
	_, err := r.execute(ctx, req)
	return err
}

// GetSupertype returns the direct supertype; ok is false for the root.
func (r *RemoteAttributeType) GetSupertype(ctx context.Context) (AttributeType, bool, error) {
	const op = string(wire.VerbGetSupertype)
	resp, err := r.execute(ctx, r.request(wire.VerbGetSupertype))
	if err != nil || !resp.Found {
		return AttributeType{}, false, err
	}
	sup, err := attributeTypeFromRecord(op, resp.Type)
	if err != nil {
		return AttributeType{}, false, err
	}
	return sup, true, nil
}

// GetSubtypes yields the type itself and its transitive subtypes.
func (r *RemoteAttributeType) GetSubtypes(ctx context.Context) (*Iterator[AttributeType], error) {
	const op = string(wire.VerbGetSubtypes)
	s, err := r.stream(ctx, r.request(wire.VerbGetSubtypes))
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (AttributeType, error) {
		return attributeTypeFromRecord(op, resp.Type)
	}), nil
}

// GetInstances yields the instances of the type and of its subtypes.
func (r *RemoteAttributeType) GetInstances(ctx context.Context) (*Iterator[Attribute[any]], error) {
	const op = string(wire.VerbGetInstances)
	s, err := r.stream(ctx, r.request(wire.VerbGetInstances))
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (Attribute[any], error) {
		return anyAttributeFromRecord(op, resp.Attribute)
	}), nil
}

// GetOwners yields the thing types owning this attribute type, only those
// owning it as a key when onlyKey is set.
func (r *RemoteAttributeType) GetOwners(ctx context.Context, onlyKey bool) (*Iterator[ThingType], error) {
	const op = string(wire.VerbGetOwners)
	req := r.request(wire.VerbGetOwners)
	req.Flag = onlyKey
	s, err := r.stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (ThingType, error) {
		return thingTypeFromRecord(op, resp.Type)
	}), nil
}

func (r *RemoteAttributeType) AsBoolean() (*RemoteBoolean, error) { return narrowRemote[bool](r) }
func (r *RemoteAttributeType) AsLong() (*RemoteLong, error) { return narrowRemote[int64](r) }
func (r *RemoteAttributeType) AsDouble() (*RemoteDouble, error) { return narrowRemote[float64](r) }
func (r *RemoteAttributeType) AsDateTime() (*RemoteDateTime, error) {
	return narrowRemote[valuekind.LocalDateTime](r)
}

func (r *RemoteAttributeType) AsString() (*RemoteString, error) {
	t, err := r.AttributeType.AsString()
	if err != nil {
		return nil, err
	}
	return t.AsRemote(r.tx), nil
}

func narrowRemote[V valuekind.Native](r *RemoteAttributeType) (*Remote[V], error) {
	t, err := Narrow[V](r.AttributeType)
	if err != nil {
		return nil, err
	}
	return t.AsRemote(r.tx), nil
}

// Remote is a transaction-bound attribute type whose values are V. It
// carries the root operations of RemoteAttributeType as well as the
// value-typed ones.
type Remote[V valuekind.Native] struct {
	*RemoteAttributeType
}

type (
	RemoteBoolean  = Remote[bool]
	RemoteLong     = Remote[int64]
	RemoteDouble   = Remote[float64]
	RemoteDateTime = Remote[valuekind.LocalDateTime]
)

// Local returns the transaction-independent handle.
func (r *Remote[V]) Local() Typed[V] { return Typed[V]{AttributeType: r.AttributeType} }

// Put returns the instance equal to value, creating it if absent.
func (r *Remote[V]) Put(ctx context.Context, value V) (Attribute[V], error) {
	const op = string(wire.VerbPut)
	v, err := valuekind.ValueOf(value)
	if err != nil {
		return Attribute[V]{}, err
	}
	req := r.request(wire.VerbPut)
	req.Value = v
	resp, err := r.execute(ctx, req)
	if err != nil {
		return Attribute[V]{}, err
	}
	return attributeFromRecord[V](op, resp.Attribute)
}

// Get returns the instance equal to value; ok is false when there is none.
func (r *Remote[V]) Get(ctx context.Context, value V) (attr Attribute[V], ok bool, err error) {
	const op = string(wire.VerbGet)
	v, err := valuekind.ValueOf(value)
	if err != nil {
		return Attribute[V]{}, false, err
	}
	req := r.request(wire.VerbGet)
	req.Value = v
	resp, err := r.execute(ctx, req)
	if err != nil || !resp.Found {
		return Attribute[V]{}, false, err
	}
	attr, err = attributeFromRecord[V](op, resp.Attribute)
	if err != nil {
		return Attribute[V]{}, false, err
	}
	return attr, true, nil
}

// GetInstances yields the instances of the type and of its subtypes.
func (r *Remote[V]) GetInstances(ctx context.Context) (*Iterator[Attribute[V]], error) {
	const op = string(wire.VerbGetInstances)
	s, err := r.stream(ctx, r.request(wire.VerbGetInstances))
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (Attribute[V], error) {
		return attributeFromRecord[V](op, resp.Attribute)
	}), nil
}

// GetSubtypes yields the type itself and its transitive subtypes.
func (r *Remote[V]) GetSubtypes(ctx context.Context) (*Iterator[Typed[V]], error) {
	const op = string(wire.VerbGetSubtypes)
	s, err := r.stream(ctx, r.request(wire.VerbGetSubtypes))
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (Typed[V], error) {
		return typedFromRecord[V](op, resp.Type)
	}), nil
}

// GetSupertype returns the direct supertype. A type directly under the root
// has the root as supertype, which holds no values, so ok is false then too.
func (r *Remote[V]) GetSupertype(ctx context.Context) (Typed[V], bool, error) {
	sup, ok, err := r.RemoteAttributeType.GetSupertype(ctx)
	if err != nil || !ok || sup.IsRoot() {
		return Typed[V]{}, false, err
	}
	t, err := Narrow[V](sup)
	if err != nil {
		return Typed[V]{}, false, err
	}
	return t, true, nil
}

func (r *Remote[V]) SetSupertype(ctx context.Context, super Typed[V]) error {
	return r.RemoteAttributeType.SetSupertype(ctx, super.AttributeType)
}

// RemoteString is the string-kind remote form.
type RemoteString struct {
	*Remote[string]
}

func (r *RemoteString) Local() StringType { return StringType{Typed: r.Remote.Local()} }

// GetRegex returns the regex constraint; ok is false when none is set.
func (r *RemoteString) GetRegex(ctx context.Context) (pattern string, ok bool, err error) {
	resp, err := r.execute(ctx, r.request(wire.VerbGetRegex))
	if err != nil || !resp.Found {
		return "", false, err
	}
	return resp.Pattern, true, nil
}

// SetRegex constrains future puts to values fully matching pattern. An empty
// pattern clears the constraint. The pattern is validated by the server.
func (r *RemoteString) SetRegex(ctx context.Context, pattern string) error {
	req := r.request(wire.VerbSetRegex)
	req.Pattern = pattern
	_, err := r.execute(ctx, req)
	return err
}

// UnsetRegex clears the regex constraint.
func (r *RemoteString) UnsetRegex(ctx context.Context) error { return r.SetRegex(ctx, "") }

func (r *RemoteString) GetSubtypes(ctx context.Context) (*Iterator[StringType], error) {
	const op = string(wire.VerbGetSubtypes)
	s, err := r.stream(ctx, r.request(wire.VerbGetSubtypes))
	if err != nil {
		return nil, err
	}
	return newIterator(op, s, func(resp wire.Response) (StringType, error) {
		t, err := typedFromRecord[string](op, resp.Type)
		return StringType{Typed: t}, err
	}), nil
}

func (r *RemoteString) GetSupertype(ctx context.Context) (StringType, bool, error) {
	t, ok, err := r.Remote.GetSupertype(ctx)
	return StringType{Typed: t}, ok, err
}

func (r *RemoteString) SetSupertype(ctx context.Context, super StringType) error {
	return r.Remote.SetSupertype(ctx, super.Typed)
}
