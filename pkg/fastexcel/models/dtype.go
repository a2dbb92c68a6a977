package models

import (
	"errors"
	"fmt"
	"strings"
)

// ColumnType is the inferred or requested type of a column.
//
// The types form a lattice with TypeNull at the bottom and TypeMixed at the
// top. TypeInt sits below TypeFloat; every other pair of distinct non-null
// types joins at TypeMixed, whose values are the text rendering of each cell.
type ColumnType uint8

const (
	// TypeNull is a column without any value.
	TypeNull ColumnType = iota
	// TypeBool is a boolean column.
	TypeBool
	// TypeInt is a 64-bit integer column.
	TypeInt
	// TypeFloat is a 64-bit floating point column.
	TypeFloat
	// TypeString is a text column whose cells were all text.
	TypeString
	// TypeDateTime is a naive datetime column with millisecond precision.
	TypeDateTime
	// TypeDuration is an elapsed time column with millisecond precision.
	TypeDuration
	// TypeMixed is the fallback for irreconcilable cells; values are text.
	TypeMixed
)

// ColumnTypes lists every column type in lattice order.
var ColumnTypes = []ColumnType{
	TypeNull, TypeBool, TypeInt, TypeFloat, TypeString, TypeDateTime, TypeDuration, TypeMixed,
}

var typeNames = [...]string{
	TypeNull:     "null",
	TypeBool:     "boolean",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeString:   "string",
	TypeDateTime: "datetime",
	TypeDuration: "duration",
	TypeMixed:    "mixed",
}

// ErrUnsupportedType is returned by ParseColumnType for unknown names.
var ErrUnsupportedType = errors.New("unsupported column type")

// String returns the dtype name ("null", "boolean", "int", ...).
func (t ColumnType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ColumnType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseColumnType parses a dtype name. "bool" and "date" are accepted as
// aliases of "boolean" and "datetime".
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "null":
		return TypeNull, nil
	case "boolean", "bool":
		return TypeBool, nil
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	case "datetime", "date":
		return TypeDateTime, nil
	case "duration":
		return TypeDuration, nil
	case "mixed":
		return TypeMixed, nil
	}
	return TypeNull, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// IsTextual reports whether values of this type are stored as strings.
func (t ColumnType) IsTextual() bool {
	return t == TypeString || t == TypeMixed
}

// Promote returns the least upper bound of a and b:
//   - equal types promote to themselves
//   - TypeNull is the identity
//   - TypeInt and TypeFloat promote to TypeFloat (lossy above 2^53)
//   - any other pair promotes to TypeMixed, including booleans with numbers
//
// Promote is total, commutative, associative and idempotent.
func Promote(a, b ColumnType) ColumnType {
	switch {
	case a == b:
		return a
	case a == TypeNull:
		return b
	case b == TypeNull:
		return a
	case (a == TypeInt && b == TypeFloat) || (a == TypeFloat && b == TypeInt):
		return TypeFloat
	}
	return TypeMixed
}
