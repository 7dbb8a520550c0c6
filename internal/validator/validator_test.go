package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdoctor/domain/quality"
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

func TestDetectDuplicates(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 1, 2, 3),
		strColumn("b", "x", "x", "y", "z"),
	)
	report := New(tbl).DetectDuplicates()

	// Mark-all semantics: both members of the duplicate pair count.
	assert.Equal(t, 2, report.DuplicateCount)
	assert.Equal(t, sanitize.Float(50), report.DuplicatePercentage)
	assert.Equal(t, 1, report.DuplicateRows)
}

func TestDetectDuplicatesClean(t *testing.T) {
	tbl := mustTable(t, numColumn("a", 1, 2, 3))
	report := New(tbl).DetectDuplicates()
	assert.Equal(t, 0, report.DuplicateCount)
	assert.Equal(t, 0, report.DuplicateRows)
}

func TestDetectMalformedRows(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []table.Value{
			table.NewNumberValue(1),
			table.MissingValue(),
			table.NewNumberValue(3),
		}},
		table.Column{Name: "b", Values: []table.Value{
			table.MissingValue(),
			table.NewStringValue("x"),
			table.NewStringValue("y"),
		}},
	)
	report := New(tbl).DetectMalformedRows()

	assert.Equal(t, 2, report.Count)
	require.Contains(t, report.Issues, "missing_values")
	assert.Equal(t, 2, report.Issues["missing_values"].Count)
	assert.Equal(t, []int{0, 1}, report.Issues["missing_values"].SampleRows)
	assert.Empty(t, report.Rows)
}

func TestDetectAnomalies(t *testing.T) {
	tbl := mustTable(t,
		strColumn("constant", "same", "same", "same", "same", "same"),
		table.Column{Name: "sparse", Values: []table.Value{
			table.NewStringValue("x"),
			table.NewStringValue("y"),
			table.MissingValue(),
			table.MissingValue(),
			table.MissingValue(),
		}},
		numColumn("volatile", 1, -1, 1, -1, 100),
		numColumn("steady", 10, 11, 12, 13, 14),
	)
	anomalies := New(tbl).DetectAnomalies()

	byType := make(map[quality.AnomalyType][]quality.Anomaly)
	for _, a := range anomalies {
		byType[a.Type] = append(byType[a.Type], a)
	}

	require.Len(t, byType[quality.AnomalyConstantColumn], 1)
	constant := byType[quality.AnomalyConstantColumn][0]
	assert.Equal(t, "constant", constant.Column)
	assert.Equal(t, "same", constant.Value)
	assert.Equal(t, "Column 'constant' has only one unique value", constant.Message)

	require.Len(t, byType[quality.AnomalyHighNullPercentage], 1)
	sparse := byType[quality.AnomalyHighNullPercentage][0]
	assert.Equal(t, "sparse", sparse.Column)
	assert.Equal(t, "Column 'sparse' has 60.00% null values", sparse.Message)

	require.Len(t, byType[quality.AnomalyHighVariance], 1)
	volatile := byType[quality.AnomalyHighVariance][0]
	assert.Equal(t, "volatile", volatile.Column)
	assert.Contains(t, volatile.Message, "high variance")
}

func TestCheckColumnTypes(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []table.Value{
			table.NewStringValue("x"),
			table.NewStringValue("x"),
			table.MissingValue(),
		}},
	)
	types := New(tbl).CheckColumnTypes()

	require.Contains(t, types, "a")
	info := types["a"]
	assert.Equal(t, "string", info.CurrentDtype)
	// The null marker counts as one distinct value.
	assert.Equal(t, 2, info.UniqueValues)
	assert.Equal(t, 1, info.NullCount)
	assert.Equal(t, sanitize.Float(33.33), info.NullPercentage)
}

func TestGetNullDistribution(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []table.Value{
			table.NewNumberValue(1),
			table.MissingValue(),
		}},
		strColumn("b", "x", "y"),
	)
	dist := New(tbl).GetNullDistribution()

	assert.Equal(t, 1, dist.Columns["a"].NullCount)
	assert.Equal(t, sanitize.Float(50), dist.Columns["a"].NullPercentage)
	assert.Equal(t, 1, dist.Total.NullCount)
	assert.Equal(t, sanitize.Float(25), dist.Total.NullPercentage)
}

func TestQualityScorePerfectTable(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4, 5),
		numColumn("b", 10, 20, 30, 40, 50),
	)
	score := New(tbl).GetDataQualityScore()

	assert.Equal(t, sanitize.Float(100), score.OverallScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.NullScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.DuplicateScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.TypeScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.AnomalyScore)
	assert.Equal(t, 0, score.IssuesCount)
}

func TestQualityScoreBreakdown(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3, 4),
		table.Column{Name: "b", Values: []table.Value{
			table.NewStringValue("x"),
			table.NewStringValue("x"),
			table.NewStringValue("y"),
			table.MissingValue(),
		}},
	)
	score := New(tbl).GetDataQualityScore()

	// 1 null of 8 cells; b is a string column that fails numeric coercion.
	assert.Equal(t, sanitize.Float(87.5), score.Scores.NullScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.DuplicateScore)
	assert.Equal(t, sanitize.Float(90), score.Scores.TypeScore)
	assert.Equal(t, sanitize.Float(100), score.Scores.AnomalyScore)
	assert.Equal(t, sanitize.Float(94.25), score.OverallScore)
	assert.Equal(t, 1, score.IssuesCount)
}

func TestValidateSchema(t *testing.T) {
	tbl := mustTable(t,
		numColumn("age", 30, 40),
		strColumn("name", "ann", "bob"),
	)
	v := New(tbl)

	ok := v.ValidateSchema(map[string]string{"age": "numeric", "name": "string"})
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)
	assert.Empty(t, ok.Warnings)

	missing := v.ValidateSchema(map[string]string{"salary": "numeric"})
	assert.False(t, missing.Valid)
	assert.Contains(t, missing.Errors, "missing column: salary")

	mismatch := v.ValidateSchema(map[string]string{"name": "numeric"})
	assert.True(t, mismatch.Valid)
	assert.Contains(t, mismatch.Warnings, "Column 'name' expected numeric but got string")
}

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema([]byte("age: numeric\nname: string\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"age": "numeric", "name": "string"}, schema)

	_, err = ParseSchema([]byte("- just\n- a list\n"))
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 1, 3),
		strColumn("b", "x", "x", "y"),
	)
	report := New(tbl).Report()

	assert.Equal(t, 3, report.DataShape.Rows)
	assert.Equal(t, 2, report.DataShape.Columns)
	require.NotNil(t, report.QualityScore)
	assert.Contains(t, report.ColumnTypes, "a")
	assert.NotNil(t, report.Anomalies)
}

func TestReportCleanTableMarshalsEmptyAnomalies(t *testing.T) {
	tbl := mustTable(t,
		numColumn("a", 1, 2, 3),
		strColumn("b", "x", "y", "z"),
	)
	report := New(tbl).Report()
	assert.Empty(t, report.Anomalies)

	encoded, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"anomalies":[]`)
	assert.NotContains(t, string(encoded), `"anomalies":null`)
}
