package concept

import (
	"xdao.co/concept/valuekind"
	"xdao.co/concept/wire"
)

// Attribute is one attribute instance. Instances come from Put, Get and
// GetInstances; two instances are the same when their IIDs are equal.
type Attribute[V any] struct {
	IID   string
	Type  AttributeType
	Value V
}

func attributeFromRecord[V valuekind.Native](op string, rec wire.AttributeRecord) (Attribute[V], error) {
	typ, err := attributeTypeFromRecord(op, rec.Type)
	if err != nil {
		return Attribute[V]{}, err
	}
	v, err := valuekind.As[V](rec.Value)
	if err != nil {
		return Attribute[V]{}, err
	}
	return Attribute[V]{IID: rec.IID, Type: typ, Value: v}, nil
}

func anyAttributeFromRecord(op string, rec wire.AttributeRecord) (Attribute[any], error) {
	typ, err := attributeTypeFromRecord(op, rec.Type)
	if err != nil {
		return Attribute[any]{}, err
	}
	return Attribute[any]{IID: rec.IID, Type: typ, Value: rec.Value.Interface()}, nil
}
