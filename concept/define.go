package concept

import (
	"context"
	"fmt"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
	"xdao.co/concept/wire"
)

func ensureOpen(tx Transaction, op string) error {
	if tx == nil || !tx.IsOpen() {
		return clienterr.New(clienterr.KindTransactionClosed, op, "transaction is closed")
	}
	return nil
}

// PutAttributeType defines an attribute type holding values of kind, or
// returns the existing one with that label. kind must be writable.
func PutAttributeType(ctx context.Context, tx Transaction, label string, kind valuekind.Kind) (*RemoteAttributeType, error) {
	const op = string(wire.VerbDefineAttributeType)
	if !kind.IsWritable() {
		return nil, clienterr.New(clienterr.KindUnsupported, op,
			fmt.Sprintf("value kind %s cannot hold values", kind))
	}
	if err := ensureOpen(tx, op); err != nil {
		return nil, err
	}
	resp, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbDefineAttributeType, Label: label, Kind: kind})
	if err != nil {
		return nil, roundTripError(op, err)
	}
	a, err := attributeTypeFromRecord(op, resp.Type)
	if err != nil {
		return nil, err
	}
	return a.AsRemote(tx), nil
}

// GetAttributeType looks up an attribute type by label; ok is false when
// there is none.
func GetAttributeType(ctx context.Context, tx Transaction, label string) (attr *RemoteAttributeType, ok bool, err error) {
	const op = string(wire.VerbGetType)
	resp, err := getType(ctx, tx, op, label)
	if err != nil || !resp.Found {
		return nil, false, err
	}
	a, err := attributeTypeFromRecord(op, resp.Type)
	if err != nil {
		return nil, false, err
	}
	return a.AsRemote(tx), true, nil
}

// PutEntityType defines an entity type, or returns the existing one.
func PutEntityType(ctx context.Context, tx Transaction, label string) (*RemoteThingType, error) {
	const op = string(wire.VerbDefineEntityType)
	if err := ensureOpen(tx, op); err != nil {
		return nil, err
	}
	resp, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbDefineEntityType, Label: label})
	if err != nil {
		return nil, roundTripError(op, err)
	}
	t, err := thingTypeFromRecord(op, resp.Type)
	if err != nil {
		return nil, err
	}
	return t.AsRemote(tx), nil
}

// GetThingType looks up an entity type by label.
func GetThingType(ctx context.Context, tx Transaction, label string) (thing *RemoteThingType, ok bool, err error) {
	const op = string(wire.VerbGetType)
	resp, err := getType(ctx, tx, op, label)
	if err != nil || !resp.Found {
		return nil, false, err
	}
	t, err := thingTypeFromRecord(op, resp.Type)
	if err != nil {
		return nil, false, err
	}
	return t.AsRemote(tx), true, nil
}

func getType(ctx context.Context, tx Transaction, op, label string) (wire.Response, error) {
	if err := ensureOpen(tx, op); err != nil {
		return wire.Response{}, err
	}
	resp, err := tx.Execute(ctx, wire.Request{Verb: wire.VerbGetType, Label: label})
	if err != nil {
		return wire.Response{}, roundTripError(op, err)
	}
	return resp, nil
}
