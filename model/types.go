package model

import (
	"xdao.co/concept/concept"
	"xdao.co/concept/valuekind"
)

type AttributeType struct {
	Label     string `json:"label"`
	ValueKind string `json:"valueKind"`
	Root      bool   `json:"root,omitempty"`
}

// Attribute is an attribute instance. Value is the text form of the value
// (valuekind.ParseValue reads it back).
type Attribute struct {
	IID       string `json:"iid"`
	Type      string `json:"type"`
	ValueKind string `json:"valueKind"`
	Value     string `json:"value"`
}

type ThingType struct {
	Label string `json:"label"`
}

// Lookup wraps an optional result.
type Lookup[T any] struct {
	Found  bool `json:"found"`
	Result *T   `json:"result,omitempty"`
}

type Regex struct {
	Label   string `json:"label"`
	Pattern string `json:"pattern,omitempty"`
	Set     bool   `json:"set"`
}

func FromAttributeType(a concept.AttributeType) AttributeType {
	return AttributeType{Label: a.Label(), ValueKind: a.ValueKind().String(), Root: a.IsRoot()}
}

func FromThingType(t concept.ThingType) ThingType {
	return ThingType{Label: t.Label()}
}

func FromAttribute[V any](a concept.Attribute[V]) (Attribute, error) {
	v, err := valuekind.ValueOf(any(a.Value))
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{
		IID:       a.IID,
		Type:      a.Type.Label(),
		ValueKind: v.Kind().String(),
		Value:     v.String(),
	}, nil
}

func Found[T any](v T) Lookup[T] { return Lookup[T]{Found: true, Result: &v} }

func Absent[T any]() Lookup[T] { return Lookup[T]{} }
