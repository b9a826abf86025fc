package value

import (
	"fmt"
	"strings"
)

// Type is the declared storage type of a field.
type Type uint8

const (
	TypeAny Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeArray
)

// String returns the string representation of the Type.
func (t Type) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// ParseType parses a type name as written in configuration files.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return TypeAny, nil
	case "int", "integer", "long":
		return TypeInt, nil
	case "float", "double", "number":
		return TypeFloat, nil
	case "string", "text", "keyword":
		return TypeString, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "array", "list":
		return TypeArray, nil
	default:
		return TypeAny, fmt.Errorf("value: unknown type %q", s)
	}
}

// Accepts reports whether a value of kind k may be stored in a field of type t.
// Null is always accepted and ints are accepted by float fields.
func (t Type) Accepts(k Kind) bool {
	if k == KindNull {
		return true
	}
	switch t {
	case TypeAny:
		return k != KindInvalid
	case TypeInt:
		return k == KindInt
	case TypeFloat:
		return k == KindFloat || k == KindInt
	case TypeString:
		return k == KindString
	case TypeBool:
		return k == KindBool
	case TypeArray:
		return k == KindArray
	}
	return false
}

// Check returns an error if v cannot be stored in a field of type t.
func (t Type) Check(v Value) error {
	if !t.Accepts(v.Kind) {
		return fmt.Errorf("value of kind %s is not a %s", v.Kind, t)
	}
	return nil
}
