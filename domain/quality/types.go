// Package quality defines the value objects produced by data-quality
// validation: duplicate and malformed-row reports, anomalies and the
// composite quality score. Field names are consumed downstream verbatim.
package quality

import (
	"csvdoctor/internal/sanitize"
)

// DuplicateReport counts duplicated rows with mark-all-occurrences
// semantics: every member of a duplicate set counts.
type DuplicateReport struct {
	DuplicateCount      int            `json:"duplicate_count"`
	DuplicatePercentage sanitize.Float `json:"duplicate_percentage"`
	DuplicateRows       int            `json:"duplicate_rows"`
}

// MalformedIssue describes one class of malformed rows with up to ten
// sample indices.
type MalformedIssue struct {
	Count      int   `json:"count"`
	SampleRows []int `json:"sample_rows"`
}

// MalformedReport aggregates malformed-row findings.
type MalformedReport struct {
	Count  int                       `json:"count"`
	Rows   []int                     `json:"rows"`
	Issues map[string]MalformedIssue `json:"issues"`
}

// AnomalyType tags the kind of column-level anomaly.
type AnomalyType string

const (
	AnomalyConstantColumn     AnomalyType = "constant_column"
	AnomalyHighNullPercentage AnomalyType = "high_null_percentage"
	AnomalyHighVariance       AnomalyType = "high_variance"
)

// Anomaly is a single column-level data-quality flag. The optional fields
// carry the evidence for the specific anomaly type.
type Anomaly struct {
	Type    AnomalyType `json:"type"`
	Column  string      `json:"column"`
	Message string      `json:"message"`

	Value          string          `json:"value,omitempty"`
	NullPercentage *sanitize.Float `json:"null_percentage,omitempty"`
	StdDev         *sanitize.Float `json:"std_dev,omitempty"`
	Mean           *sanitize.Float `json:"mean,omitempty"`
}

// ScoreBreakdown carries the four component scores, each on a 0-100 scale.
type ScoreBreakdown struct {
	NullScore      sanitize.Float `json:"null_score"`
	DuplicateScore sanitize.Float `json:"duplicate_score"`
	TypeScore      sanitize.Float `json:"type_score"`
	AnomalyScore   sanitize.Float `json:"anomaly_score"`
}

// QualityScore is the weighted composite quality metric.
type QualityScore struct {
	OverallScore sanitize.Float `json:"overall_score"`
	Scores       ScoreBreakdown `json:"scores"`
	IssuesCount  int            `json:"issues_count"`
}

// ColumnTypeInfo reports the stored versus inferred type of a column.
type ColumnTypeInfo struct {
	CurrentDtype   string         `json:"current_dtype"`
	InferredType   string         `json:"inferred_type"`
	UniqueValues   int            `json:"unique_values"`
	NullCount      int            `json:"null_count"`
	NullPercentage sanitize.Float `json:"null_percentage"`
}

// NullTotals summarizes nulls across the whole table, percentage relative
// to total cells.
type NullTotals struct {
	NullCount      int            `json:"null_count"`
	NullPercentage sanitize.Float `json:"null_percentage"`
}

// DataShape is the row/column extent of the validated table.
type DataShape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ColumnNulls mirrors the per-column null profile used inside the
// validation report.
type ColumnNulls struct {
	NullCount      int            `json:"null_count"`
	NullPercentage sanitize.Float `json:"null_percentage"`
	NonNullCount   int            `json:"non_null_count"`
}

// NullDistribution combines per-column null stats with the table total.
type NullDistribution struct {
	Columns map[string]ColumnNulls `json:"columns"`
	Total   NullTotals             `json:"total"`
}

// ValidationReport is the full validation output.
type ValidationReport struct {
	DataShape        DataShape                 `json:"data_shape"`
	NullDistribution NullDistribution          `json:"null_distribution"`
	ColumnTypes      map[string]ColumnTypeInfo `json:"column_types"`
	Duplicates       DuplicateReport           `json:"duplicates"`
	MalformedRows    MalformedReport           `json:"malformed_rows"`
	Anomalies        []Anomaly                 `json:"anomalies"`
	QualityScore     *QualityScore             `json:"quality_score,omitempty"`
}

// SchemaValidationResult is produced by validating a table against an
// expected {column: type} schema.
type SchemaValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
