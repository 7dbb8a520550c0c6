// Package inference classifies columns into semantic kinds by sampling how
// their non-null values coerce.
package inference

import (
	"strconv"
	"strings"
	"time"

	"csvdoctor/domain/table"
)

// ColumnKind is the inferred semantic category of a column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindDatetime    ColumnKind = "datetime"
	KindText        ColumnKind = "text"
	KindUnknown     ColumnKind = "unknown"
)

// Classification thresholds. These are policy values, inclusive as written.
const (
	numericThreshold  = 0.8
	datetimeThreshold = 0.8
	uniqueRatioLimit  = 0.05
	distinctLimit     = 20
)

// timestampFormats are tried in order when coercing datetime values.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// Infer classifies a column from its non-null values. Columns with no
// non-null values are Unknown. Numeric wins at >=80% coercion, then datetime
// at >=80%, then low cardinality makes a column categorical, and everything
// else is free text.
func Infer(col *table.Column) ColumnKind {
	nonNull := col.NonMissing()
	if len(nonNull) == 0 {
		return KindUnknown
	}

	numeric := 0
	for _, v := range nonNull {
		if _, ok := CoerceNumeric(v); ok {
			numeric++
		}
	}
	if float64(numeric)/float64(len(nonNull)) >= numericThreshold {
		return KindNumeric
	}

	datetime := 0
	for _, v := range nonNull {
		if _, ok := CoerceTime(v); ok {
			datetime++
		}
	}
	if float64(datetime)/float64(len(nonNull)) >= datetimeThreshold {
		return KindDatetime
	}

	distinct := make(map[string]struct{}, len(nonNull))
	for _, v := range nonNull {
		distinct[v.String()] = struct{}{}
	}
	uniqueRatio := float64(len(distinct)) / float64(len(nonNull))
	if uniqueRatio < uniqueRatioLimit || len(distinct) < distinctLimit {
		return KindCategorical
	}

	return KindText
}

// InferAll classifies every column of a table in one pass. The result is
// meant to be computed once per profiling pass and handed downstream rather
// than re-derived per operation.
func InferAll(t *table.Table) map[string]ColumnKind {
	kinds := make(map[string]ColumnKind, len(t.Columns))
	for i := range t.Columns {
		kinds[t.Columns[i].Name] = Infer(&t.Columns[i])
	}
	return kinds
}

// CoerceNumeric attempts a strict numeric interpretation of a cell.
// Booleans coerce to 0/1, strings must parse fully as a float.
func CoerceNumeric(v table.Value) (float64, bool) {
	switch v.Kind {
	case table.ValueKindNumber:
		return v.Num, true
	case table.ValueKindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case table.ValueKindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// CoerceTime attempts to interpret a cell as a timestamp.
func CoerceTime(v table.Value) (time.Time, bool) {
	switch v.Kind {
	case table.ValueKindTime:
		return v.Time, true
	case table.ValueKindString:
		s := strings.TrimSpace(v.Str)
		for _, format := range timestampFormats {
			if t, err := time.Parse(format, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ColumnFloats returns the numerically coercible values of a column,
// dropping missing and non-coercible cells.
func ColumnFloats(col *table.Column) []float64 {
	out := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		if f, ok := CoerceNumeric(v); ok {
			out = append(out, f)
		}
	}
	return out
}
