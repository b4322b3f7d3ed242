package valuekind

// Tag is the value-kind enumeration carried on the wire with every
// attribute-type message.
type Tag int32

const (
	TagUntyped  Tag = 0
	TagBoolean  Tag = 1
	TagLong     Tag = 2
	TagDouble   Tag = 3
	TagString   Tag = 4
	TagDateTime Tag = 5

	TagUnrecognized Tag = -1
)

// ToWireTag returns the wire tag of k.
func ToWireTag(k Kind) Tag {
	switch k {
	case Untyped:
		return TagUntyped
	case Boolean:
		return TagBoolean
	case Long:
		return TagLong
	case Double:
		return TagDouble
	case String:
		return TagString
	case DateTime:
		return TagDateTime
	default:
		return TagUnrecognized
	}
}

// FromWireTag decodes a wire tag. Unknown tags yield Unrecognized; this never
// fails and never defaults to Untyped.
func FromWireTag(tag Tag) Kind {
	switch tag {
	case TagUntyped:
		return Untyped
	case TagBoolean:
		return Boolean
	case TagLong:
		return Long
	case TagDouble:
		return Double
	case TagString:
		return String
	case TagDateTime:
		return DateTime
	default:
		return Unrecognized
	}
}
