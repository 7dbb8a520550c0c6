package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdoctor/domain/table"
	"csvdoctor/internal/validator"
)

func numColumn(name string, values ...float64) table.Column {
	col := table.Column{Name: name}
	for _, v := range values {
		col.Values = append(col.Values, table.NewNumberValue(v))
	}
	return col
}

func strColumn(name string, values ...string) table.Column {
	col := table.Column{Name: name}
	for _, v := range values {
		col.Values = append(col.Values, table.NewStringValue(v))
	}
	return col
}

func mustTable(t *testing.T, columns ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(columns)
	require.NoError(t, err)
	return tbl
}

func TestRemoveEmptyRows(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []table.Value{
			table.NewNumberValue(1),
			table.MissingValue(),
			table.NewNumberValue(3),
		}},
		table.Column{Name: "b", Values: []table.Value{
			table.NewStringValue("x"),
			table.MissingValue(),
			table.MissingValue(),
		}},
	)
	p := New(tbl).RemoveEmptyRows()

	assert.Equal(t, 2, p.Table().NumRows())
	assert.Equal(t, []string{"Removed 1 completely empty rows"}, p.Changes())
}

func TestRemoveEmptyColumns(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "empty", Values: []table.Value{
			table.MissingValue(), table.MissingValue(),
		}},
		table.Column{Name: "partial", Values: []table.Value{
			table.NewNumberValue(1), table.MissingValue(),
		}},
	)
	p := New(tbl).RemoveEmptyColumns()

	assert.False(t, p.Table().HasColumn("empty"))
	assert.True(t, p.Table().HasColumn("partial"), "partially null columns must survive")
	assert.Equal(t, []string{"Removed 1 completely empty columns"}, p.Changes())
}

func TestRemoveEmptyColumnsZeroRows(t *testing.T) {
	tbl := mustTable(t, table.Column{Name: "a"})
	p := New(tbl).RemoveEmptyColumns()
	assert.True(t, p.Table().HasColumn("a"))
	assert.Empty(t, p.Changes())
}

func TestTrimWhitespace(t *testing.T) {
	tbl := mustTable(t, strColumn("s", "  hello ", "world"))
	p := New(tbl).TrimWhitespace(nil)

	assert.Equal(t, "hello", p.Table().Column("s").Values[0].Str)
	assert.Equal(t, []string{"Trimmed whitespace from 1 columns"}, p.Changes())
}

func TestRemoveDuplicatesKeepModes(t *testing.T) {
	build := func() *table.Table {
		return mustTable(t,
			numColumn("a", 1, 1, 2),
			strColumn("b", "x", "x", "y"),
		)
	}

	first := New(build()).RemoveDuplicates(nil, KeepFirst)
	assert.Equal(t, 2, first.Table().NumRows())
	assert.Equal(t, []string{"Removed 1 duplicate rows"}, first.Changes())

	last := New(build()).RemoveDuplicates(nil, KeepLast)
	assert.Equal(t, 2, last.Table().NumRows())

	none := New(build()).RemoveDuplicates(nil, KeepNone)
	assert.Equal(t, 1, none.Table().NumRows())
}

func TestRemoveDuplicatesSubset(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 1, 2),
		strColumn("b", "p", "q", "r"),
	)
	p := New(tbl).RemoveDuplicates([]string{"a"}, KeepFirst)

	assert.Equal(t, 2, p.Table().NumRows())
	assert.Equal(t, "p", p.Table().Column("b").Values[0].Str)
}

func TestDeduplicateThenDetect(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 1, 2, 2, 3),
	)
	p := New(tbl).RemoveDuplicates(nil, KeepFirst)

	report := validator.New(p.Table()).DetectDuplicates()
	assert.Equal(t, 0, report.DuplicateCount)
	assert.Equal(t, 0, report.DuplicateRows)
}

func TestFillMissingValue(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []table.Value{
			table.NewStringValue("x"),
			table.MissingValue(),
			table.MissingValue(),
			table.MissingValue(),
		}},
	)
	fill := table.NewStringValue("unknown")
	p := New(tbl).FillMissing(FillValue, nil, &fill)

	assert.Equal(t, 0, p.Table().Column("a").NullCount())
	assert.Equal(t, []string{"Filled 3 missing values using value"}, p.Changes())
}

func TestFillMissingMean(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "n", Values: []table.Value{
			table.NewNumberValue(1),
			table.NewNumberValue(3),
			table.MissingValue(),
		}},
	)
	p := New(tbl).FillMissing(FillMean, nil, nil)

	assert.Equal(t, 2.0, p.Table().Column("n").Values[2].Num)
	assert.Equal(t, []string{"Filled 1 missing values using mean"}, p.Changes())
}

func TestFillMissingMeanSkipsText(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "s", Values: []table.Value{
			table.NewStringValue("x"),
			table.MissingValue(),
		}},
	)
	p := New(tbl).FillMissing(FillMean, nil, nil)

	assert.Equal(t, 1, p.Table().Column("s").NullCount())
	assert.Empty(t, p.Changes())
}

func TestFillMissingForwardBackward(t *testing.T) {
	build := func() *table.Table {
		return mustTable(t, table.Column{Name: "a", Values: []table.Value{
			table.MissingValue(),
			table.NewNumberValue(1),
			table.MissingValue(),
			table.NewNumberValue(3),
		}})
	}

	ffill := New(build()).FillMissing(FillForwardFill, nil, nil)
	values := ffill.Table().Column("a").Values
	assert.True(t, values[0].IsMissing(), "no preceding value to carry forward")
	assert.Equal(t, 1.0, values[2].Num)

	bfill := New(build()).FillMissing(FillBackwardFill, nil, nil)
	values = bfill.Table().Column("a").Values
	assert.Equal(t, 1.0, values[0].Num)
	assert.Equal(t, 3.0, values[2].Num)
}

func TestStandardizeColumnNames(t *testing.T) {
	tbl := mustTable(t,
		numColumn("First Name!", 1),
		numColumn("  Last Name ", 2),
	)
	p := New(tbl).StandardizeColumnNames()

	assert.Equal(t, []string{"first_name", "last_name"}, p.Table().ColumnNames())
	assert.Equal(t, []string{"Standardized column names"}, p.Changes())

	// Idempotent: a second pass changes nothing.
	p.StandardizeColumnNames()
	assert.Equal(t, []string{"first_name", "last_name"}, p.Table().ColumnNames())
}

func TestStandardizeColumnNamesCollision(t *testing.T) {
	tbl := mustTable(t,
		numColumn("Total", 1),
		numColumn("total", 2),
	)
	p := New(tbl).StandardizeColumnNames()
	assert.Equal(t, []string{"total", "total_2"}, p.Table().ColumnNames())
}

func TestNormalizeTextCase(t *testing.T) {
	tbl := mustTable(t, strColumn("s", "hello world", "GOODBYE"))
	p := New(tbl).NormalizeTextCase(nil, CaseTitle)

	col := p.Table().Column("s")
	assert.Equal(t, "Hello World", col.Values[0].Str)
	assert.Equal(t, "Goodbye", col.Values[1].Str)
	assert.Equal(t, []string{"Normalized text case to title in 1 columns"}, p.Changes())

	p = New(mustTable(t, strColumn("s", "MiXeD"))).NormalizeTextCase(nil, CaseLower)
	assert.Equal(t, "mixed", p.Table().Column("s").Values[0].Str)
}

func TestRemoveOutliersIQR(t *testing.T) {
	tbl := mustTable(t, numColumn("a", 1, 2, 3, 4, 100))
	p := New(tbl).RemoveOutliers(nil, OutlierIQR, DefaultIQRThreshold)

	assert.Equal(t, 4, p.Table().NumRows())
	assert.Equal(t, []string{"Removed 1 outlier rows using iqr"}, p.Changes())
}

func TestRemoveOutliersZScore(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}
	tbl := mustTable(t, numColumn("a", values...))
	p := New(tbl).RemoveOutliers(nil, OutlierZScore, DefaultZScoreThreshold)

	assert.Equal(t, 12, p.Table().NumRows())
	assert.Equal(t, []string{"Removed 1 outlier rows using zscore"}, p.Changes())
}

func TestRemoveOutliersConstantColumn(t *testing.T) {
	tbl := mustTable(t, numColumn("a", 5, 5, 5))
	p := New(tbl).RemoveOutliers(nil, OutlierZScore, DefaultZScoreThreshold)
	assert.Equal(t, 3, p.Table().NumRows())
	assert.Empty(t, p.Changes())
}

func TestConvertTypes(t *testing.T) {
	tbl := mustTable(t,
		strColumn("n", "1", "2", "oops"),
		numColumn("s", 1.5, 2.5, 3.5),
		strColumn("d", "2024-01-01", "2024-02-02", "not a date"),
	)
	p := New(tbl).ConvertTypes(map[string]string{
		"n": "numeric",
		"s": "string",
		"d": "datetime",
	})

	n := p.Table().Column("n")
	assert.Equal(t, 1.0, n.Values[0].Num)
	assert.True(t, n.Values[2].IsMissing(), "failed coercion becomes null")

	s := p.Table().Column("s")
	assert.Equal(t, table.ValueKindString, s.Values[0].Kind)
	assert.Equal(t, "1.5", s.Values[0].Str)

	d := p.Table().Column("d")
	assert.Equal(t, table.ValueKindTime, d.Values[0].Kind)
	assert.True(t, d.Values[2].IsMissing())
}

func TestConvertTypesUnsupported(t *testing.T) {
	tbl := mustTable(t, strColumn("a", "x"))
	p := New(tbl).ConvertTypes(map[string]string{"a": "complex"})
	assert.Equal(t, []string{"Warning: Could not convert a to complex: unsupported type"}, p.Changes())
}

func TestReset(t *testing.T) {
	tbl := mustTable(t, numColumn("a", 1, 1, 2))
	p := New(tbl).RemoveDuplicates(nil, KeepFirst)
	require.Equal(t, 2, p.Table().NumRows())

	p.Reset()
	assert.Equal(t, 3, p.Table().NumRows())
	assert.Empty(t, p.Changes())
}

func TestChainedOperations(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "Name ", Values: []table.Value{
			table.NewStringValue(" ann "),
			table.NewStringValue(" ann "),
			table.MissingValue(),
		}},
	)
	p := New(tbl).
		TrimWhitespace(nil).
		RemoveDuplicates(nil, KeepFirst).
		StandardizeColumnNames()

	assert.Equal(t, []string{"name"}, p.Table().ColumnNames())
	assert.Equal(t, 2, p.Table().NumRows())
	assert.Len(t, p.Changes(), 3)
}
