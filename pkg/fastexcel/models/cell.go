// Package models defines the data structures produced by typed sheet
// extraction: decoded cell values, the column type lattice, typed columns
// and tables.
package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// CellKind tags the variant held by a CellValue.
type CellKind uint8

const (
	// KindNull is an empty cell.
	KindNull CellKind = iota
	// KindBool is a boolean cell.
	KindBool
	// KindInt is an integral numeric cell.
	KindInt
	// KindFloat is a floating point numeric cell.
	KindFloat
	// KindString is a text cell.
	KindString
	// KindDateTime is a date or datetime cell (naive, UTC based).
	KindDateTime
	// KindDuration is an elapsed time cell.
	KindDuration
	// KindError is a formula error cell such as #DIV/0!.
	KindError
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindDateTime: "datetime",
	KindDuration: "duration",
	KindError:    "error",
}

func (k CellKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ErrorCode is the textual code of a spreadsheet error cell.
type ErrorCode string

// Error codes emitted by spreadsheet applications.
const (
	ErrorNull        ErrorCode = "#NULL!"
	ErrorDiv0        ErrorCode = "#DIV/0!"
	ErrorValue       ErrorCode = "#VALUE!"
	ErrorRef         ErrorCode = "#REF!"
	ErrorName        ErrorCode = "#NAME?"
	ErrorNum         ErrorCode = "#NUM!"
	ErrorNA          ErrorCode = "#N/A"
	ErrorGettingData ErrorCode = "#GETTING_DATA"
)

var knownErrorCodes = map[string]ErrorCode{
	string(ErrorNull):        ErrorNull,
	string(ErrorDiv0):        ErrorDiv0,
	string(ErrorValue):       ErrorValue,
	string(ErrorRef):         ErrorRef,
	string(ErrorName):        ErrorName,
	string(ErrorNum):         ErrorNum,
	string(ErrorNA):          ErrorNA,
	string(ErrorGettingData): ErrorGettingData,
}

// LookupErrorCode reports whether s is one of the known error codes.
func LookupErrorCode(s string) (ErrorCode, bool) {
	code, ok := knownErrorCodes[s]
	return code, ok
}

// DateTimeLayout is the ISO-8601 layout used when a datetime is rendered as
// text. Fractional seconds are printed only when present, at most to the
// millisecond.
const DateTimeLayout = "2006-01-02T15:04:05.999"

// CellValue is the decoded value of a single cell. The zero value is a null
// cell. Values are immutable; use the constructors to build them.
type CellValue struct {
	kind CellKind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
	d    time.Duration
}

// Null returns an empty cell.
func Null() CellValue { return CellValue{} }

// Bool returns a boolean cell.
func Bool(b bool) CellValue { return CellValue{kind: KindBool, b: b} }

// Int returns an integral cell.
func Int(i int64) CellValue { return CellValue{kind: KindInt, i: i} }

// Float returns a floating point cell.
func Float(f float64) CellValue { return CellValue{kind: KindFloat, f: f} }

// String returns a text cell.
func String(s string) CellValue { return CellValue{kind: KindString, s: s} }

// DateTime returns a datetime cell. The location is dropped: cells carry
// wall-clock values only.
func DateTime(t time.Time) CellValue {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return CellValue{kind: KindDateTime, t: time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)}
}

// Duration returns an elapsed time cell.
func Duration(d time.Duration) CellValue { return CellValue{kind: KindDuration, d: d} }

// Error returns an error cell with the given code.
func Error(code ErrorCode) CellValue { return CellValue{kind: KindError, s: string(code)} }

// Kind returns the variant tag.
func (v CellValue) Kind() CellKind { return v.kind }

// IsNull reports whether the cell is empty.
func (v CellValue) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the cell holds an int or a float.
func (v CellValue) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsTemporal reports whether the cell holds a datetime or a duration.
func (v CellValue) IsTemporal() bool { return v.kind == KindDateTime || v.kind == KindDuration }

// IsError reports whether the cell is a formula error.
func (v CellValue) IsError() bool { return v.kind == KindError }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v CellValue) AsBool() (b, ok bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload; ok is false for other kinds.
func (v CellValue) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the numeric payload as float64. Int cells are widened.
func (v CellValue) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the text payload; ok is false for other kinds.
func (v CellValue) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsDateTime returns the datetime payload; ok is false for other kinds.
func (v CellValue) AsDateTime() (time.Time, bool) { return v.t, v.kind == KindDateTime }

// AsDuration returns the duration payload; ok is false for other kinds.
func (v CellValue) AsDuration() (time.Duration, bool) { return v.d, v.kind == KindDuration }

// AsError returns the error code; ok is false for other kinds.
func (v CellValue) AsError() (ErrorCode, bool) { return ErrorCode(v.s), v.kind == KindError }

// Type returns the column type this cell contributes to inference. Error
// cells contribute TypeNull so they never move a column up the lattice.
func (v CellValue) Type() ColumnType {
	switch v.kind {
	case KindBool:
		return TypeBool
	case KindInt:
		return TypeInt
	case KindFloat:
		return TypeFloat
	case KindString:
		return TypeString
	case KindDateTime:
		return TypeDateTime
	case KindDuration:
		return TypeDuration
	case KindNull, KindError:
		return TypeNull
	}
	panic(fmt.Sprintf("models: unhandled cell kind %d", v.kind))
}

// ToStringRepr renders the cell as text. The output is deterministic:
//   - bool: "true" / "false"
//   - int: base-10 digits
//   - float: shortest fixed-point decimal that round-trips ("12.35",
//     "1234567", "0.000001"); NaN and infinities as "NaN", "+Inf", "-Inf"
//   - datetime: DateTimeLayout ("2022-03-02T05:43:04", "2022-03-02T05:43:04.5")
//   - duration: ISO-8601 "PT#H#M#S" with hours not folded into days
//   - error: the error code
//   - null: the empty string
func (v CellValue) ToStringRepr() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindString:
		return v.s
	case KindDateTime:
		return v.t.Format(DateTimeLayout)
	case KindDuration:
		return FormatDuration(v.d)
	case KindError:
		return v.s
	}
	panic(fmt.Sprintf("models: unhandled cell kind %d", v.kind))
}

// String implements fmt.Stringer for debugging output.
func (v CellValue) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.kind.String() + "(" + v.ToStringRepr() + ")"
}

// Equal reports whether two cells hold the same variant and payload. NaN
// floats compare equal to each other.
func (v CellValue) Equal(o CellValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString, KindError:
		return v.s == o.s
	case KindDateTime:
		return v.t.Equal(o.t)
	case KindDuration:
		return v.d == o.d
	}
	return true
}

// FormatFloat renders f in fixed-point notation with the fewest digits that
// parse back to the same value.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatDuration renders d as an ISO-8601 duration such as "PT36H5M0.25S".
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	secs := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("%sPT%dH%dM%sS", sign, h, m, secs)
}
