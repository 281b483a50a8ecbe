package igr

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates Value.
type ValueKind uint8

const (
	ValueNil ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueString
	ValueArray
)

// Value is a compile-time constant carried by literals and produced by
// evaluation. Only the field selected by Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Elems []Value
}

func IntValue(v int64) Value     { return Value{Kind: ValueInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: ValueBool, Bool: v} }
func StringValue(v string) Value { return Value{Kind: ValueString, Str: v} }

// ArrayValue builds an array value; the element slice is copied.
func ArrayValue(elems ...Value) Value {
	out := make([]Value, len(elems))
	copy(out, elems)
	return Value{Kind: ValueArray, Elems: out}
}

// Type returns the type tag matching the value kind.
func (v Value) Type() Type {
	switch v.Kind {
	case ValueInt:
		return TypeInt
	case ValueFloat:
		return TypeFloat
	case ValueBool:
		return TypeBool
	case ValueString:
		return TypeString
	case ValueArray:
		return TypeArray
	default:
		return TypeUnknown
	}
}

// Equal reports deep equality. Int and float values never compare equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueNil:
		return true
	case ValueInt:
		return v.Int == o.Int
	case ValueFloat:
		return v.Float == o.Float
	case ValueBool:
		return v.Bool == o.Bool
	case ValueString:
		return v.Str == o.Str
	case ValueArray:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value the way the execution engine prints results.
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueString:
		return strconv.Quote(v.Str)
	case ValueArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return "nil"
	}
}

// ParseValue parses a value printed by the execution engine or given on
// the command line. Unquoted text that is not a number, boolean or array
// is taken as a string.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Value{}, fmt.Errorf("parse value: empty input")
	case s == "true" || s == "True":
		return BoolValue(true), nil
	case s == "false" || s == "False":
		return BoolValue(false), nil
	case s == "nil" || s == "None":
		return Value{}, nil
	case s[0] == '[':
		return parseArray(s)
	case s[0] == '"':
		str, err := strconv.Unquote(s)
		if err != nil {
			return Value{}, fmt.Errorf("parse value %q: %w", s, err)
		}
		return StringValue(str), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f), nil
	}
	return StringValue(s), nil
}

func parseArray(s string) (Value, error) {
	if !strings.HasSuffix(s, "]") {
		return Value{}, fmt.Errorf("parse value %q: unterminated array", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return ArrayValue(), nil
	}
	parts, err := splitTopLevel(inner)
	if err != nil {
		return Value{}, fmt.Errorf("parse value %q: %w", s, err)
	}
	elems := make([]Value, 0, len(parts))
	for _, p := range parts {
		e, err := ParseValue(p)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, e)
	}
	return Value{Kind: ValueArray, Elems: elems}, nil
}

// splitTopLevel splits on commas that are outside nested brackets and quotes.
func splitTopLevel(s string) ([]string, error) {
	var (
		parts   []string
		depth   int
		inQuote bool
		start   int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']'")
			}
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if depth != 0 || inQuote {
		return nil, fmt.Errorf("unbalanced array")
	}
	return append(parts, s[start:]), nil
}
