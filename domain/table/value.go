package table

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind is the storage type of a single cell.
type ValueKind string

const (
	ValueKindString  ValueKind = "string"
	ValueKindNumber  ValueKind = "number"
	ValueKindBool    ValueKind = "bool"
	ValueKindTime    ValueKind = "time"
	ValueKindMissing ValueKind = "missing"
)

// Value is a nullable scalar cell. The zero Value is missing.
type Value struct {
	Kind ValueKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
	Bool bool      `json:"bool,omitempty"`
	Time time.Time `json:"time,omitempty"`
}

// NewStringValue creates a string cell. Empty strings are stored as missing.
func NewStringValue(s string) Value {
	if s == "" {
		return MissingValue()
	}
	return Value{Kind: ValueKindString, Str: s}
}

// NewNumberValue creates a numeric cell.
func NewNumberValue(n float64) Value {
	return Value{Kind: ValueKindNumber, Num: n}
}

// NewBoolValue creates a boolean cell.
func NewBoolValue(b bool) Value {
	return Value{Kind: ValueKindBool, Bool: b}
}

// NewTimeValue creates a timestamp cell.
func NewTimeValue(t time.Time) Value {
	return Value{Kind: ValueKindTime, Time: t}
}

// MissingValue creates a null cell.
func MissingValue() Value {
	return Value{Kind: ValueKindMissing}
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.Kind == ValueKindMissing || v.Kind == ""
}

// Float returns the cell as a float64 when it is numeric storage.
// Strings are not coerced here; see inference.CoerceNumeric for that.
func (v Value) Float() (float64, bool) {
	if v.Kind == ValueKindNumber {
		return v.Num, true
	}
	return 0, false
}

// String renders the cell for display and for frequency keys, which only
// ever see non-missing cells.
func (v Value) String() string {
	switch v.Kind {
	case ValueKindString:
		return v.Str
	case ValueKindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueKindBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValueKindTime:
		return v.Time.Format(time.RFC3339)
	}
	return "<missing>"
}

// missingKey is unprintable so a missing cell can never collide with a
// literal string in a row key.
const missingKey = "\x00missing"

// Key renders the cell for duplicate-detection row keys. Unlike String,
// missing cells map to a sentinel no user string can contain.
func (v Value) Key() string {
	if v.IsMissing() {
		return missingKey
	}
	return v.String()
}

// Equal compares two cells by kind and content.
func (v Value) Equal(other Value) bool {
	if v.IsMissing() || other.IsMissing() {
		return v.IsMissing() && other.IsMissing()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueKindString:
		return v.Str == other.Str
	case ValueKindNumber:
		return v.Num == other.Num
	case ValueKindBool:
		return v.Bool == other.Bool
	case ValueKindTime:
		return v.Time.Equal(other.Time)
	}
	return false
}
