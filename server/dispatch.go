package server

import (
	"fmt"

	"xdao.co/concept/schema"
	"xdao.co/concept/wire"
)

func typeRecord(t schema.Type) wire.TypeRecord {
	return wire.TypeRecord{Label: t.Label, Kind: t.Kind, Entity: t.Entity}
}

func attributeRecord(txn *schema.Txn, inst schema.Instance) (wire.AttributeRecord, error) {
	typ, ok, err := txn.Type(inst.Type)
	if err != nil {
		return wire.AttributeRecord{}, err
	}
	if !ok {
		return wire.AttributeRecord{}, fmt.Errorf("%w: %q", schema.ErrNotFound, inst.Type)
	}
	return wire.AttributeRecord{IID: inst.IID, Type: typeRecord(typ), Value: inst.Value}, nil
}

// checkView rejects a request whose idea of the target's value kind is stale.
func checkView(txn *schema.Txn, req wire.Request) error {
	typ, ok, err := txn.Type(req.Label)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", schema.ErrNotFound, req.Label)
	}
	if typ.Entity {
		return fmt.Errorf("%w: %q is an entity type", schema.ErrInvalid, req.Label)
	}
	if typ.Kind != req.Kind {
		return fmt.Errorf("%w: %q holds %s, caller expected %s", schema.ErrKindMismatch, req.Label, typ.Kind, req.Kind)
	}
	return nil
}

// Dispatch answers a single-response verb against txn.
func Dispatch(txn *schema.Txn, req wire.Request) (wire.Response, error) {
	switch req.Verb {
	case wire.VerbDefineAttributeType:
		typ, err := txn.DefineAttributeType(req.Label, req.Kind)
		if err != nil {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Type: typeRecord(typ)}, nil

	case wire.VerbDefineEntityType:
		typ, err := txn.DefineEntityType(req.Label)
		if err != nil {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Type: typeRecord(typ)}, nil

	case wire.VerbGetType:
		typ, ok, err := txn.Type(req.Label)
		if err != nil || !ok {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Type: typeRecord(typ)}, nil

	case wire.VerbSetOwns:
		return wire.Response{}, txn.SetOwns(req.Label, req.Other, req.Flag)
	}

	if err := checkView(txn, req); err != nil {
		return wire.Response{}, err
	}
	switch req.Verb {
	case wire.VerbSetSupertype:
		return wire.Response{}, txn.SetSupertype(req.Label, req.Other)

	case wire.VerbGetSupertype:
		sup, ok, err := txn.Supertype(req.Label)
		if err != nil || !ok {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Type: typeRecord(sup)}, nil

	case wire.VerbPut:
		inst, err := txn.Put(req.Label, req.Value)
		if err != nil {
			return wire.Response{}, err
		}
		rec, err := attributeRecord(txn, inst)
		if err != nil {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Attribute: rec}, nil

	case wire.VerbGet:
		inst, ok, err := txn.Get(req.Label, req.Value)
		if err != nil || !ok {
			return wire.Response{}, err
		}
		rec, err := attributeRecord(txn, inst)
		if err != nil {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Attribute: rec}, nil

	case wire.VerbGetRegex:
		pattern, err := txn.Regex(req.Label)
		if err != nil || pattern == "" {
			return wire.Response{}, err
		}
		return wire.Response{Found: true, Pattern: pattern}, nil

	case wire.VerbSetRegex:
		return wire.Response{}, txn.SetRegex(req.Label, req.Pattern)
	}
	return wire.Response{}, fmt.Errorf("%w: verb %q is not a single-response verb", errUnknownVerb, req.Verb)
}

// DispatchStream answers a streaming verb against txn.
func DispatchStream(txn *schema.Txn, req wire.Request) ([]wire.Response, error) {
	if !req.Verb.Streaming() {
		return nil, fmt.Errorf("%w: verb %q is not a streaming verb", errUnknownVerb, req.Verb)
	}
	if err := checkView(txn, req); err != nil {
		return nil, err
	}
	var out []wire.Response
	switch req.Verb {
	case wire.VerbGetSubtypes:
		subs, err := txn.Subtypes(req.Label)
		if err != nil {
			return nil, err
		}
		for _, t := range subs {
			out = append(out, wire.Response{Found: true, Type: typeRecord(t)})
		}

	case wire.VerbGetInstances:
		insts, err := txn.Instances(req.Label)
		if err != nil {
			return nil, err
		}
		for _, inst := range insts {
			rec, err := attributeRecord(txn, inst)
			if err != nil {
				return nil, err
			}
			out = append(out, wire.Response{Found: true, Attribute: rec})
		}

	case wire.VerbGetOwners:
		owners, err := txn.Owners(req.Label, req.Flag)
		if err != nil {
			return nil, err
		}
		for _, t := range owners {
			out = append(out, wire.Response{Found: true, Type: typeRecord(t)})
		}
	}
	return out, nil
}
