// Package valuekind enumerates the primitive value kinds an attribute type may
// hold, their native Go representations and their wire tags.
//
// The kind set is closed. Resolution from a native type or a name is a hard
// boundary: unknown inputs fail with clienterr.KindUnsupported and never fall
// back to Untyped. Untyped marks the abstract root attribute type and cannot
// itself hold a value.
package valuekind

import (
	"fmt"
	"reflect"
	"strings"

	"xdao.co/concept/clienterr"
)

// Kind is a primitive value category.
type Kind int8

const (
	Untyped Kind = iota
	Boolean
	Long
	Double
	String
	DateTime

	// Unrecognized is produced only by FromWireTag for tags this client does not
	// know. It is distinct from Untyped so a newer server is detectable.
	Unrecognized Kind = -1
)

// Native is the set of Go types that carry attribute values.
type Native interface {
	bool | int64 | float64 | string | LocalDateTime
}

var (
	typeAny      = reflect.TypeFor[any]()
	typeBool     = reflect.TypeFor[bool]()
	typeInt64    = reflect.TypeFor[int64]()
	typeFloat64  = reflect.TypeFor[float64]()
	typeString   = reflect.TypeFor[string]()
	typeDateTime = reflect.TypeFor[LocalDateTime]()
)

// Kinds returns the six known kinds in tag order.
func Kinds() []Kind {
	return []Kind{Untyped, Boolean, Long, Double, String, DateTime}
}

// Resolve maps a native representation type to its Kind.
//
// The interface type any resolves to Untyped, the representation of the
// abstract root. Every other type without a mapping fails.
func Resolve(t reflect.Type) (Kind, error) {
	switch t {
	case typeAny:
		return Untyped, nil
	case typeBool:
		return Boolean, nil
	case typeInt64:
		return Long, nil
	case typeFloat64:
		return Double, nil
	case typeString:
		return String, nil
	case typeDateTime:
		return DateTime, nil
	}
	name := "<nil>"
	if t != nil {
		name = t.String()
	}
	return Unrecognized, clienterr.New(clienterr.KindUnsupported, "valuekind.Resolve",
		fmt.Sprintf("no value kind for native type %s", name))
}

// KindFor returns the Kind of the native type V.
func KindFor[V Native]() Kind {
	var zero V
	switch any(zero).(type) {
	case bool:
		return Boolean
	case int64:
		return Long
	case float64:
		return Double
	case string:
		return String
	default:
		return DateTime
	}
}

// NativeType returns the native representation type of k, or nil for
// Unrecognized.
func (k Kind) NativeType() reflect.Type {
	switch k {
	case Untyped:
		return typeAny
	case Boolean:
		return typeBool
	case Long:
		return typeInt64
	case Double:
		return typeFloat64
	case String:
		return typeString
	case DateTime:
		return typeDateTime
	default:
		return nil
	}
}

// IsWritable reports whether instances of k can be created. Only the abstract
// root (and the Unrecognized sentinel) cannot hold values.
func (k Kind) IsWritable() bool {
	switch k {
	case Boolean, Long, Double, String, DateTime:
		return true
	default:
		return false
	}
}

// IsKeyable reports whether an attribute of kind k may serve as a key of its
// owner.
func (k Kind) IsKeyable() bool {
	return k == Long || k == String
}

// Known reports whether k is one of the six defined kinds.
func (k Kind) Known() bool {
	return k >= Untyped && k <= DateTime
}

func (k Kind) String() string {
	switch k {
	case Untyped:
		return "untyped"
	case Boolean:
		return "boolean"
	case Long:
		return "long"
	case Double:
		return "double"
	case String:
		return "string"
	case DateTime:
		return "datetime"
	case Unrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// ParseKind maps a kind name (as printed by String) to its Kind.
// "object" is accepted as an alias of "untyped".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "untyped", "object":
		return Untyped, nil
	case "boolean", "bool":
		return Boolean, nil
	case "long", "int64":
		return Long, nil
	case "double", "float64":
		return Double, nil
	case "string":
		return String, nil
	case "datetime", "date-time":
		return DateTime, nil
	}
	return Unrecognized, clienterr.New(clienterr.KindUnsupported, "valuekind.ParseKind",
		fmt.Sprintf("unknown value kind %q", name))
}
