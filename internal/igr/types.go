package igr

// Type is the inferred type tag carried by ports and literals.
// TypeUnknown means nothing was inferred and disables type checks.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeArray
	TypeTuple
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeTuple:
		return "tuple"
	default:
		return "unknown"
	}
}
