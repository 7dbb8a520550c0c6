package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdoctor/domain/table"
	"csvdoctor/internal/sanitize"
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

func TestSummaryStats(t *testing.T) {
	tbl := mustTable(t, numColumn("a", 1, 2, 3, 4, 5))
	stats := New(tbl).SummaryStats()

	require.Contains(t, stats, "a")
	s := stats["a"]
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, sanitize.Float(3), s.Mean)
	assert.Equal(t, sanitize.Float(3), s.Median)
	assert.Equal(t, sanitize.Float(1), s.Min)
	assert.Equal(t, sanitize.Float(5), s.Max)
	assert.Equal(t, sanitize.Float(2), s.Q25)
	assert.Equal(t, sanitize.Float(4), s.Q75)
	assert.Equal(t, sanitize.Float(2), s.IQR)
	assert.Equal(t, sanitize.Float(2.5), s.Variance)
	assert.Equal(t, sanitize.Float(1.5811), s.StdDev)
	assert.Equal(t, sanitize.Float(0), s.Skewness)
	assert.Equal(t, sanitize.Float(-1.2), s.Kurtosis)
}

func TestSummaryStatsSkipsNonNumeric(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3),
		strColumn("b", "x", "y", "z"),
	)
	stats := New(tbl).SummaryStats()
	assert.Contains(t, stats, "a")
	assert.NotContains(t, stats, "b")
}

func TestNullDistribution(t *testing.T) {
	col := table.Column{Name: "d", Values: []table.Value{
		table.NewNumberValue(1),
		table.MissingValue(),
		table.NewNumberValue(3),
		table.MissingValue(),
		table.NewNumberValue(5),
	}}
	tbl := mustTable(t, col)
	dist := New(tbl).NullDistribution()

	require.Contains(t, dist, "d")
	assert.Equal(t, 2, dist["d"].NullCount)
	assert.Equal(t, 3, dist["d"].NonNullCount)
	assert.Equal(t, sanitize.Float(40), dist["d"].NullPercentage)
	assert.Equal(t, sanitize.Float(60), dist["d"].NonNullPercentage)
}

func TestCorrelationMatrix(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		numColumn("b", 2, 4, 6, 8, 10),
		numColumn("c", 10, 8, 6, 4, 2),
	)
	matrix := New(tbl).CorrelationMatrix()

	require.Len(t, matrix, 3)
	assert.Equal(t, sanitize.Float(1), matrix["a"]["a"])
	assert.Equal(t, sanitize.Float(1), matrix["a"]["b"])
	assert.Equal(t, sanitize.Float(-1), matrix["a"]["c"])
	assert.Equal(t, matrix["a"]["b"], matrix["b"]["a"])
}

func TestCorrelationMatrixNeedsTwoColumns(t *testing.T) {
	tbl := mustTable(t, numColumn("only", 1, 2, 3))
	assert.Empty(t, New(tbl).CorrelationMatrix())
}

func TestHighCorrelations(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		numColumn("b", 2, 4, 6, 8, 10),
		numColumn("c", 10, 8, 6, 4, 2),
	)
	entries := New(tbl).HighCorrelations(DefaultCorrelationThreshold)

	// Three pairs, all perfectly correlated; the negative one reports its
	// absolute value.
	require.Len(t, entries, 3)
	seen := make(map[string]bool)
	for _, e := range entries {
		assert.NotEqual(t, e.Column1, e.Column2)
		key := e.Column1 + "/" + e.Column2
		assert.False(t, seen[key], "pair %s reported twice", key)
		seen[key] = true
		assert.Equal(t, sanitize.Float(1), e.Correlation)
	}
}

func TestHighCorrelationsThreshold(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		numColumn("weak", 3, 1, 4, 1, 5),
	)
	assert.Empty(t, New(tbl).HighCorrelations(0.99))
}

func TestFrequencyDistribution(t *testing.T) {
	tbl := mustTable(t, strColumn("c", "x", "x", "y", "x"))
	freq := New(tbl).FrequencyDistribution("c")

	require.Len(t, freq, 2)
	assert.Equal(t, 3, freq["x"].Count)
	assert.Equal(t, sanitize.Float(75), freq["x"].Percentage)
	assert.Equal(t, 1, freq["y"].Count)

	assert.Empty(t, New(tbl).FrequencyDistribution("nope"))
}

func TestCategoricalSummary(t *testing.T) {
	col := table.Column{Name: "c", Values: []table.Value{
		table.NewStringValue("red"),
		table.NewStringValue("red"),
		table.NewStringValue("blue"),
		table.MissingValue(),
	}}
	tbl := mustTable(t, col)
	summary := New(tbl).CategoricalSummary()

	require.Contains(t, summary, "c")
	s := summary["c"]
	assert.Equal(t, 2, s.UniqueValues)
	assert.Equal(t, 1, s.NullCount)
	require.NotNil(t, s.TopValue)
	assert.Equal(t, "red", *s.TopValue)
	assert.Equal(t, 2, s.TopValueCount)
	assert.Equal(t, map[string]int{"red": 2, "blue": 1}, s.MostCommon)
}

func TestDistributionShape(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		strColumn("s", "x", "y", "z", "w", "v"),
	)
	a := New(tbl)

	shape := a.DistributionShape("a")
	require.NotNil(t, shape)
	assert.Equal(t, sanitize.Float(3), shape.Mean)
	assert.True(t, shape.IsNormal)
	require.NotNil(t, shape.Mode)
	assert.Equal(t, sanitize.Float(1), *shape.Mode)

	assert.Nil(t, a.DistributionShape("s"))
	assert.Nil(t, a.DistributionShape("missing"))
}

func TestOverallSummary(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 1, 2),
		strColumn("b", "x", "x", "y"),
	)
	summary := New(tbl).OverallSummary()

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 2, summary.TotalColumns)
	assert.Equal(t, 6, summary.TotalCells)
	// One extra copy beyond the first occurrence.
	assert.Equal(t, 1, summary.DuplicateRows)
	assert.Equal(t, 1, summary.NumericColumns)
	assert.Equal(t, 1, summary.CategoricalColumns)
	assert.Equal(t, []string{"a", "b"}, summary.ColumnNames)
}

func TestColumnInsights(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		strColumn("c", "x", "x", "y", "x", "y"),
	)
	a := New(tbl)

	numeric := a.ColumnInsights("a")
	require.NotNil(t, numeric)
	assert.Equal(t, "number", numeric.DataType)
	assert.Equal(t, "numeric", numeric.InferredType)
	assert.NotNil(t, numeric.NumericStats)
	assert.NotNil(t, numeric.Distribution)

	categorical := a.ColumnInsights("c")
	require.NotNil(t, categorical)
	assert.Equal(t, 2, categorical.UniqueValues)
	assert.Equal(t, 3, categorical.Duplicates)
	assert.NotEmpty(t, categorical.FrequencyDistribution)

	assert.Nil(t, a.ColumnInsights("absent"))
}

func TestReportComposition(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		numColumn("b", 2, 4, 6, 8, 10),
		strColumn("c", "x", "y", "x", "y", "x"),
	)
	report := New(tbl).Report()

	assert.Equal(t, 5, report.Overview.TotalRows)
	assert.Contains(t, report.SummaryStats, "a")
	assert.Contains(t, report.NullDistribution, "c")
	assert.NotEmpty(t, report.CorrelationMatrix)
	assert.NotEmpty(t, report.HighCorrelations)
	assert.Contains(t, report.CategoricalSummary, "c")
}
