// Package wire defines the request/response envelopes exchanged between the
// concept client and server, and their protobuf encoding.
//
// Envelopes are carried as google.protobuf.Struct so no protoc/codegen
// toolchain is required. Value kinds travel as integer tags (see
// valuekind.Tag); longs travel as decimal strings so int64 precision survives
// the Struct number type, and date-times travel as zone-less text.
package wire

import (
	"io"

	"xdao.co/concept/valuekind"
)

// Verb names a protocol operation.
type Verb string

const (
	VerbDefineAttributeType Verb = "attribute_type.define"
	VerbDefineEntityType    Verb = "entity_type.define"
	VerbGetType             Verb = "type.get"
	VerbSetSupertype        Verb = "attribute_type.set_supertype"
	VerbGetSupertype        Verb = "attribute_type.get_supertype"
	VerbPut                 Verb = "attribute_type.put"
	VerbGet                 Verb = "attribute_type.get"
	VerbGetRegex            Verb = "attribute_type.get_regex"
	VerbSetRegex            Verb = "attribute_type.set_regex"
	VerbSetOwns             Verb = "thing_type.set_owns"

	// Streaming verbs.
	VerbGetSubtypes  Verb = "attribute_type.get_subtypes"
	VerbGetInstances Verb = "attribute_type.get_instances"
	VerbGetOwners    Verb = "attribute_type.get_owners"
)

// Streaming reports whether v is answered with a response stream rather than
// a single response.
func (v Verb) Streaming() bool {
	switch v {
	case VerbGetSubtypes, VerbGetInstances, VerbGetOwners:
		return true
	default:
		return false
	}
}

// Mutating reports whether v changes schema or data.
func (v Verb) Mutating() bool {
	switch v {
	case VerbDefineAttributeType, VerbDefineEntityType, VerbSetSupertype, VerbPut, VerbSetRegex, VerbSetOwns:
		return true
	default:
		return false
	}
}

// Request is one protocol call against a type identified by Label.
type Request struct {
	Verb  Verb
	Label string
	// Kind is the caller's view of the target's value kind.
	Kind  valuekind.Kind
	Value valuekind.Value
	// Other is a second type label (supertype, owned attribute type).
	Other   string
	Pattern string
	// Flag is only_key for get_owners and is_key for set_owns.
	Flag bool
}

// TypeRecord describes a schema type.
type TypeRecord struct {
	Label  string
	Kind   valuekind.Kind
	Entity bool
}

// AttributeRecord describes an attribute instance.
type AttributeRecord struct {
	IID   string
	Type  TypeRecord
	Value valuekind.Value
}

// Response is the answer to a Request (or one element of a stream).
type Response struct {
	// Found is false when an optional result (get, get_supertype, get_regex,
	// get_type) is absent.
	Found     bool
	Type      TypeRecord
	Attribute AttributeRecord
	Pattern   string
}

// ResponseStream yields the elements answering a streaming verb.
// Recv returns io.EOF after the last element.
type ResponseStream interface {
	Recv() (Response, error)
	Close() error
}

// SliceStream is a ResponseStream over a fixed slice.
type SliceStream struct {
	items []Response
	pos   int
}

func NewSliceStream(items []Response) *SliceStream {
	return &SliceStream{items: items}
}

func (s *SliceStream) Recv() (Response, error) {
	if s.pos >= len(s.items) {
		return Response{}, io.EOF
	}
	r := s.items[s.pos]
	s.pos++
	return r, nil
}

func (s *SliceStream) Close() error {
	s.pos = len(s.items)
	return nil
}
