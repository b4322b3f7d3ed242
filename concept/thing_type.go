package concept

import (
	"context"
	"fmt"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/wire"
)

// RootThingLabel is the label of the root entity type.
const RootThingLabel = "entity"

// ThingType is a local handle on an entity type, the owner side of an
// ownership.
type ThingType struct {
	label string
}

func NewThingType(label string) ThingType { return ThingType{label: label} }

func (t ThingType) Label() string { return t.label }

func (t ThingType) IsRoot() bool { return t.label == RootThingLabel }

func (t ThingType) String() string { return t.label }

func (t ThingType) AsRemote(tx Transaction) *RemoteThingType {
	return &RemoteThingType{ThingType: t, tx: tx}
}

// RemoteThingType is a thing type bound to a transaction.
type RemoteThingType struct {
	ThingType
	tx Transaction
}

// SetOwns declares that the thing type owns attr, as a key when isKey. Only
// keyable kinds may be keys; any other kind fails with
// clienterr.KindKindMismatch without a round trip.
func (r *RemoteThingType) SetOwns(ctx context.Context, attr AttributeType, isKey bool) error {
	const op = string(wire.VerbSetOwns)
	if isKey && !attr.kind.IsKeyable() {
		return clienterr.New(clienterr.KindKindMismatch, op,
			fmt.Sprintf("%q holds %s, which cannot be a key of %q", attr.label, attr.kind, r.label))
	}
	if r.tx == nil || !r.tx.IsOpen() {
		return clienterr.New(clienterr.KindTransactionClosed, op,
			fmt.Sprintf("transaction of %q is closed", r.label))
	}
	_, err := r.tx.Execute(ctx, wire.Request{Verb: wire.VerbSetOwns, Label: r.label, Other: attr.label, Flag: isKey})
	if err != nil {
		return roundTripError(op, err)
	}
	return nil
}

func thingTypeFromRecord(op string, rec wire.TypeRecord) (ThingType, error) {
	if !rec.Entity {
		return ThingType{}, clienterr.New(clienterr.KindTypeMismatch, op,
			fmt.Sprintf("%q is not a thing type", rec.Label))
	}
	return ThingType{label: rec.Label}, nil
}
