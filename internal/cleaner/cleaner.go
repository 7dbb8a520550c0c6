// Package cleaner applies chainable cleaning transforms to a working copy
// of a table, recording a human-readable change log. The original snapshot
// is retained for reset.
package cleaner

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"csvdoctor/domain/table"
	"csvdoctor/internal/inference"
	"csvdoctor/internal/mathutil"
)

// FillMethod selects how missing values are replaced.
type FillMethod string

const (
	FillMean         FillMethod = "mean"
	FillMedian       FillMethod = "median"
	FillMode         FillMethod = "mode"
	FillForwardFill  FillMethod = "forward_fill"
	FillBackwardFill FillMethod = "backward_fill"
	FillValue        FillMethod = "value"
)

// KeepMode selects which duplicate occurrences survive deduplication.
type KeepMode string

const (
	KeepFirst KeepMode = "first"
	KeepLast  KeepMode = "last"
	KeepNone  KeepMode = "none"
)

// TextCase selects the normalization applied by NormalizeTextCase.
type TextCase string

const (
	CaseLower TextCase = "lower"
	CaseUpper TextCase = "upper"
	CaseTitle TextCase = "title"
)

// OutlierMethod selects the outlier detection strategy.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
)

// Default outlier thresholds: the IQR fence multiplier and the z-score
// cutoff.
const (
	DefaultIQRThreshold    = 1.5
	DefaultZScoreThreshold = 3.0
)

// Pipeline mutates a working copy of a table through chained operations.
// Not safe for concurrent use; callers serialize access per table.
type Pipeline struct {
	tbl      *table.Table
	original *table.Table
	changes  []string
}

// New builds a pipeline over a copy of tbl, keeping another copy for reset.
func New(tbl *table.Table) *Pipeline {
	return &Pipeline{
		tbl:      tbl.Clone(),
		original: tbl.Clone(),
	}
}

// Table returns the current working table.
func (p *Pipeline) Table() *table.Table {
	return p.tbl
}

// Changes returns the ordered change log.
func (p *Pipeline) Changes() []string {
	return p.changes
}

// Reset restores the working table to the originally loaded snapshot and
// clears the change log.
func (p *Pipeline) Reset() *Pipeline {
	p.tbl = p.original.Clone()
	p.changes = nil
	return p
}

func (p *Pipeline) log(format string, args ...interface{}) {
	p.changes = append(p.changes, fmt.Sprintf(format, args...))
}

// RemoveEmptyRows drops rows where every value is null.
func (p *Pipeline) RemoveEmptyRows() *Pipeline {
	rows := p.tbl.NumRows()
	keep := make([]bool, rows)
	for i := 0; i < rows; i++ {
		for c := range p.tbl.Columns {
			if !p.tbl.Columns[c].Values[i].IsMissing() {
				keep[i] = true
				break
			}
		}
	}
	removed := 0
	for _, k := range keep {
		if !k {
			removed++
		}
	}
	if removed > 0 {
		p.tbl.FilterRows(keep)
		p.log("Removed %d completely empty rows", removed)
	}
	return p
}

// RemoveEmptyColumns drops columns where every value is null. A no-op on a
// zero-row table.
func (p *Pipeline) RemoveEmptyColumns() *Pipeline {
	if p.tbl.NumRows() == 0 {
		return p
	}
	var empty []string
	for i := range p.tbl.Columns {
		if p.tbl.Columns[i].NullCount() == p.tbl.NumRows() {
			empty = append(empty, p.tbl.Columns[i].Name)
		}
	}
	if len(empty) > 0 {
		p.tbl.DropColumns(empty)
		p.log("Removed %d completely empty columns", len(empty))
	}
	return p
}

// stringColumns returns the names of string-storage columns.
func (p *Pipeline) stringColumns() []string {
	var names []string
	for i := range p.tbl.Columns {
		if p.tbl.Columns[i].Storage() == table.StorageString {
			names = append(names, p.tbl.Columns[i].Name)
		}
	}
	return names
}

// numberColumns returns the names of number-storage columns.
func (p *Pipeline) numberColumns() []string {
	var names []string
	for i := range p.tbl.Columns {
		if p.tbl.Columns[i].Storage() == table.StorageNumber {
			names = append(names, p.tbl.Columns[i].Name)
		}
	}
	return names
}

// TrimWhitespace strips leading and trailing whitespace from string cells.
// A nil column list means every string column. Logs even when nothing
// changed.
func (p *Pipeline) TrimWhitespace(columns []string) *Pipeline {
	if columns == nil {
		columns = p.stringColumns()
	}
	for _, name := range columns {
		col := p.tbl.Column(name)
		if col == nil {
			continue
		}
		for i, v := range col.Values {
			if v.Kind == table.ValueKindString {
				col.Values[i] = table.NewStringValue(strings.TrimSpace(v.Str))
			}
		}
	}
	p.log("Trimmed whitespace from %d columns", len(columns))
	return p
}

// RemoveDuplicates drops duplicate rows, optionally keyed by a column
// subset. KeepNone removes every copy.
func (p *Pipeline) RemoveDuplicates(subset []string, keep KeepMode) *Pipeline {
	rows := p.tbl.NumRows()
	keys := make([]string, rows)
	counts := make(map[string]int, rows)
	for i := 0; i < rows; i++ {
		if subset == nil {
			keys[i] = p.tbl.RowKey(i)
		} else {
			keys[i] = p.tbl.SubsetRowKey(i, subset)
		}
		counts[keys[i]]++
	}

	keepRow := make([]bool, rows)
	seen := make(map[string]bool, rows)
	switch keep {
	case KeepLast:
		for i := rows - 1; i >= 0; i-- {
			if !seen[keys[i]] {
				keepRow[i] = true
				seen[keys[i]] = true
			}
		}
	case KeepNone:
		for i := 0; i < rows; i++ {
			keepRow[i] = counts[keys[i]] == 1
		}
	default:
		for i := 0; i < rows; i++ {
			if !seen[keys[i]] {
				keepRow[i] = true
				seen[keys[i]] = true
			}
		}
	}

	removed := 0
	for _, k := range keepRow {
		if !k {
			removed++
		}
	}
	if removed > 0 {
		p.tbl.FilterRows(keepRow)
		p.log("Removed %d duplicate rows", removed)
	}
	return p
}

// FillMissing replaces nulls using the chosen method. Mean and median apply
// only to numeric columns and silently skip the rest; mode takes the first
// mode. A nil column list means every column.
func (p *Pipeline) FillMissing(method FillMethod, columns []string, fillValue *table.Value) *Pipeline {
	if columns == nil {
		columns = p.tbl.ColumnNames()
	}

	initialNulls := p.countNulls(columns)
	for _, name := range columns {
		col := p.tbl.Column(name)
		if col == nil || col.NullCount() == 0 {
			continue
		}
		switch method {
		case FillMean:
			if col.Storage() == table.StorageNumber {
				if data := col.Floats(); len(data) > 0 {
					mean, _ := stats.Mean(data)
					fillNulls(col, table.NewNumberValue(mean))
				}
			}
		case FillMedian:
			if col.Storage() == table.StorageNumber {
				if data := col.Floats(); len(data) > 0 {
					median, _ := stats.Median(data)
					fillNulls(col, table.NewNumberValue(median))
				}
			}
		case FillMode:
			if mode, ok := mathutil.ModeValue(col.Values); ok {
				fillNulls(col, mode)
			}
		case FillForwardFill:
			last := table.MissingValue()
			for i, v := range col.Values {
				if v.IsMissing() {
					col.Values[i] = last
				} else {
					last = v
				}
			}
		case FillBackwardFill:
			next := table.MissingValue()
			for i := len(col.Values) - 1; i >= 0; i-- {
				if col.Values[i].IsMissing() {
					col.Values[i] = next
				} else {
					next = col.Values[i]
				}
			}
		case FillValue:
			if fillValue != nil {
				fillNulls(col, *fillValue)
			}
		}
	}

	filled := initialNulls - p.countNulls(columns)
	if filled > 0 {
		p.log("Filled %d missing values using %s", filled, method)
	}
	return p
}

func (p *Pipeline) countNulls(columns []string) int {
	total := 0
	for _, name := range columns {
		if col := p.tbl.Column(name); col != nil {
			total += col.NullCount()
		}
	}
	return total
}

func fillNulls(col *table.Column, fill table.Value) {
	for i, v := range col.Values {
		if v.IsMissing() {
			col.Values[i] = fill
		}
	}
}

// StandardizeColumnNames lowercases, trims, replaces spaces with
// underscores and strips everything else non-alphanumeric. Collisions get a
// numeric suffix to preserve the unique-name invariant. Idempotent; always
// logs.
func (p *Pipeline) StandardizeColumnNames() *Pipeline {
	taken := make(map[string]bool, len(p.tbl.Columns))
	for i := range p.tbl.Columns {
		name := standardizeName(p.tbl.Columns[i].Name)
		if taken[name] {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !taken[name] {
					break
				}
			}
		}
		taken[name] = true
		p.tbl.Columns[i].Name = name
	}
	p.log("Standardized column names")
	return p
}

func standardizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTextCase lower/upper/title-cases string cells. A nil column list
// means every string column. Always logs.
func (p *Pipeline) NormalizeTextCase(columns []string, textCase TextCase) *Pipeline {
	if columns == nil {
		columns = p.stringColumns()
	}
	titleCaser := cases.Title(language.Und)
	for _, name := range columns {
		col := p.tbl.Column(name)
		if col == nil {
			continue
		}
		for i, v := range col.Values {
			if v.Kind != table.ValueKindString {
				continue
			}
			switch textCase {
			case CaseLower:
				col.Values[i] = table.NewStringValue(strings.ToLower(v.Str))
			case CaseUpper:
				col.Values[i] = table.NewStringValue(strings.ToUpper(v.Str))
			case CaseTitle:
				col.Values[i] = table.NewStringValue(titleCaser.String(v.Str))
			}
		}
	}
	p.log("Normalized text case to %s in %d columns", textCase, len(columns))
	return p
}

// RemoveOutliers drops outlier rows from numeric columns. The IQR method
// keeps rows inside [Q1-k*IQR, Q3+k*IQR], recomputing bounds per column as
// the row set shrinks; rows with a null in the checked column are dropped.
// The z-score method imputes the column mean for nulls before scoring and
// keeps rows with |z| below the threshold.
func (p *Pipeline) RemoveOutliers(columns []string, method OutlierMethod, threshold float64) *Pipeline {
	if columns == nil {
		columns = p.numberColumns()
	}
	initialRows := p.tbl.NumRows()

	for _, name := range columns {
		col := p.tbl.Column(name)
		if col == nil {
			continue
		}
		switch method {
		case OutlierZScore:
			data := col.Floats()
			if len(data) == 0 {
				continue
			}
			mean, _ := stats.Mean(data)
			filled := make([]float64, len(col.Values))
			for i, v := range col.Values {
				if f, ok := v.Float(); ok {
					filled[i] = f
				} else {
					filled[i] = mean
				}
			}
			sigma, _ := stats.StandardDeviation(filled)
			if sigma == 0 {
				continue
			}
			keep := make([]bool, len(filled))
			for i, f := range filled {
				keep[i] = math.Abs((f-mean)/sigma) < threshold
			}
			p.tbl.FilterRows(keep)
		default:
			data := col.Floats()
			if len(data) == 0 {
				continue
			}
			q1 := mathutil.Quantile(data, 0.25)
			q3 := mathutil.Quantile(data, 0.75)
			iqr := q3 - q1
			lower := q1 - threshold*iqr
			upper := q3 + threshold*iqr
			keep := make([]bool, len(col.Values))
			for i, v := range col.Values {
				f, ok := v.Float()
				keep[i] = ok && f >= lower && f <= upper
			}
			p.tbl.FilterRows(keep)
		}
	}

	removed := initialRows - p.tbl.NumRows()
	if removed > 0 {
		p.log("Removed %d outlier rows using %s", removed, method)
	}
	return p
}

// ConvertTypes coerces named columns to a target type: numeric, datetime or
// string. Cells that fail numeric or datetime coercion become null; an
// unsupported target type logs a warning instead of raising.
func (p *Pipeline) ConvertTypes(mapping map[string]string) *Pipeline {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col := p.tbl.Column(name)
		if col == nil {
			continue
		}
		target := mapping[name]
		switch target {
		case "numeric":
			for i, v := range col.Values {
				if v.IsMissing() {
					continue
				}
				if f, ok := inference.CoerceNumeric(v); ok {
					col.Values[i] = table.NewNumberValue(f)
				} else {
					col.Values[i] = table.MissingValue()
				}
			}
		case "datetime":
			for i, v := range col.Values {
				if v.IsMissing() {
					continue
				}
				if t, ok := inference.CoerceTime(v); ok {
					col.Values[i] = table.NewTimeValue(t)
				} else {
					col.Values[i] = table.MissingValue()
				}
			}
		case "string", "object":
			for i, v := range col.Values {
				if !v.IsMissing() {
					col.Values[i] = table.NewStringValue(v.String())
				}
			}
		default:
			p.log("Warning: Could not convert %s to %s: unsupported type", name, target)
		}
	}
	return p
}
