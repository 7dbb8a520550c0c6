package table

import (
	"fmt"
	"strings"
)

// StorageKind is the pandas-dtype analogue of a whole column: the common
// storage type of its non-missing cells. A column that mixes kinds is
// treated as string storage.
type StorageKind string

const (
	StorageEmpty  StorageKind = "empty"
	StorageNumber StorageKind = "number"
	StorageBool   StorageKind = "bool"
	StorageTime   StorageKind = "time"
	StorageString StorageKind = "string"
)

// Column is a named, ordered sequence of nullable cells.
type Column struct {
	Name   string
	Values []Value
}

// Storage returns the column's storage kind.
func (c *Column) Storage() StorageKind {
	seen := StorageEmpty
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		var k StorageKind
		switch v.Kind {
		case ValueKindNumber:
			k = StorageNumber
		case ValueKindBool:
			k = StorageBool
		case ValueKindTime:
			k = StorageTime
		default:
			k = StorageString
		}
		if seen == StorageEmpty {
			seen = k
		} else if seen != k {
			return StorageString
		}
	}
	return seen
}

// NonMissing returns the column's non-missing cells in order.
func (c *Column) NonMissing() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the values of a number-storage column, dropping missing
// cells.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Clone deep-copies the column.
func (c *Column) Clone() Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Values: values}
}

// Table is an ordered sequence of equal-length named columns.
type Table struct {
	Columns []Column
}

// New builds a table and enforces its invariants: unique column names and a
// uniform row count.
func New(columns []Column) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	rows := -1
	for _, col := range columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true
		if rows == -1 {
			rows = len(col.Values)
		} else if len(col.Values) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Values), rows)
		}
	}
	return &Table{Columns: columns}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[i]
	}
	return row
}

// RowKey returns a string key identifying row i by its full contents, used
// for duplicate detection. The unit separator keeps adjacent cells from
// colliding.
func (t *Table) RowKey(i int) string {
	parts := make([]string, len(t.Columns))
	for c := range t.Columns {
		parts[c] = t.Columns[c].Values[i].Key()
	}
	return strings.Join(parts, "\x1f")
}

// SubsetRowKey is RowKey restricted to the named columns. Unknown names are
// ignored.
func (t *Table) SubsetRowKey(i int, subset []string) string {
	parts := make([]string, 0, len(subset))
	for _, name := range subset {
		if col := t.Column(name); col != nil {
			parts = append(parts, col.Values[i].Key())
		}
	}
	return strings.Join(parts, "\x1f")
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	columns := make([]Column, len(t.Columns))
	for i := range t.Columns {
		columns[i] = t.Columns[i].Clone()
	}
	return &Table{Columns: columns}
}

// FilterRows keeps only the rows where keep[i] is true, in place.
func (t *Table) FilterRows(keep []bool) {
	for c := range t.Columns {
		filtered := t.Columns[c].Values[:0:0]
		for i, v := range t.Columns[c].Values {
			if keep[i] {
				filtered = append(filtered, v)
			}
		}
		t.Columns[c].Values = filtered
	}
}

// DropColumns removes the named columns, preserving the order of the rest.
func (t *Table) DropColumns(names []string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0:0]
	for _, col := range t.Columns {
		if !drop[col.Name] {
			kept = append(kept, col)
		}
	}
	t.Columns = kept
}

// RowKeyCounts returns how many rows share each full-row key. Both
// duplicate-counting conventions (mark-all and extras-beyond-first) derive
// from it.
func (t *Table) RowKeyCounts() map[string]int {
	counts := make(map[string]int, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		counts[t.RowKey(i)]++
	}
	return counts
}

// NullCells returns the total number of missing cells in the table.
func (t *Table) NullCells() int {
	n := 0
	for i := range t.Columns {
		n += t.Columns[i].NullCount()
	}
	return n
}

// MemoryUsage estimates the in-memory footprint of the table's cells in
// bytes, mirroring a deep size estimate: fixed-width cells cost their word
// size, strings cost header plus payload.
func (t *Table) MemoryUsage() int {
	total := 0
	for i := range t.Columns {
		for _, v := range t.Columns[i].Values {
			switch v.Kind {
			case ValueKindString:
				total += 16 + len(v.Str)
			case ValueKindBool:
				total++
			default:
				total += 8
			}
		}
	}
	return total
}
