// Package profile defines the value objects produced by statistical
// profiling. Field names are part of the wire format consumed by report and
// visualization collaborators; renaming any of them is a breaking change.
package profile

import (
	"csvdoctor/internal/sanitize"
)

// ColumnStats holds descriptive statistics for a numeric column, rounded to
// 4 decimal places. Variance and std-dev use the sample (n-1) denominator.
type ColumnStats struct {
	Count    int            `json:"count"`
	Mean     sanitize.Float `json:"mean"`
	Median   sanitize.Float `json:"median"`
	StdDev   sanitize.Float `json:"std_dev"`
	Min      sanitize.Float `json:"min"`
	Max      sanitize.Float `json:"max"`
	Q25      sanitize.Float `json:"q25"`
	Q75      sanitize.Float `json:"q75"`
	IQR      sanitize.Float `json:"iqr"`
	Variance sanitize.Float `json:"variance"`
	Skewness sanitize.Float `json:"skewness"`
	Kurtosis sanitize.Float `json:"kurtosis"`
}

// NullProfile describes the null pattern of a single column, percentages
// relative to total rows at 2 decimal places.
type NullProfile struct {
	NullCount         int            `json:"null_count"`
	NullPercentage    sanitize.Float `json:"null_percentage"`
	NonNullCount      int            `json:"non_null_count"`
	NonNullPercentage sanitize.Float `json:"non_null_percentage"`
}

// CorrelationEntry is one pair from the strict upper triangle of the
// correlation matrix; the coefficient is absolute, rounded to 3 decimals.
type CorrelationEntry struct {
	Column1     string         `json:"column_1"`
	Column2     string         `json:"column_2"`
	Correlation sanitize.Float `json:"correlation"`
}

// FrequencyEntry counts one distinct value, percentage relative to total
// rows.
type FrequencyEntry struct {
	Count      int            `json:"count"`
	Percentage sanitize.Float `json:"percentage"`
}

// DistributionShape summarizes the shape of a numeric column. Kurtosis is
// excess kurtosis; IsNormal applies the |skew| < 0.5 && |kurtosis| < 3 rule.
type DistributionShape struct {
	Mean     sanitize.Float  `json:"mean"`
	Median   sanitize.Float  `json:"median"`
	Mode     *sanitize.Float `json:"mode"`
	Skewness sanitize.Float  `json:"skewness"`
	Kurtosis sanitize.Float  `json:"kurtosis"`
	IsNormal bool            `json:"is_normal"`
}

// CategoricalSummary describes a text-valued column.
type CategoricalSummary struct {
	UniqueValues  int            `json:"unique_values"`
	TopValue      *string        `json:"top_value"`
	TopValueCount int            `json:"top_value_count"`
	NullCount     int            `json:"null_count"`
	MostCommon    map[string]int `json:"most_common"`
}

// OverallSummary is the dataset-level overview.
type OverallSummary struct {
	TotalRows          int            `json:"total_rows"`
	TotalColumns       int            `json:"total_columns"`
	TotalCells         int            `json:"total_cells"`
	NullCells          int            `json:"null_cells"`
	NullPercentage     sanitize.Float `json:"null_percentage"`
	DuplicateRows      int            `json:"duplicate_rows"`
	MemoryUsageBytes   int            `json:"memory_usage_bytes"`
	NumericColumns     int            `json:"numeric_columns"`
	CategoricalColumns int            `json:"categorical_columns"`
	ColumnNames        []string       `json:"column_names"`
}

// ColumnInsights combines per-column metadata with the type-appropriate
// detail block.
type ColumnInsights struct {
	ColumnName     string         `json:"column_name"`
	DataType       string         `json:"data_type"`
	InferredType   string         `json:"inferred_type"`
	TotalValues    int            `json:"total_values"`
	NullCount      int            `json:"null_count"`
	NullPercentage sanitize.Float `json:"null_percentage"`
	UniqueValues   int            `json:"unique_values"`
	Duplicates     int            `json:"duplicates"`

	NumericStats          *ColumnStats              `json:"numeric_stats,omitempty"`
	Distribution          *DistributionShape        `json:"distribution,omitempty"`
	FrequencyDistribution map[string]FrequencyEntry `json:"frequency_distribution,omitempty"`
}

// AnalysisReport aggregates the full profiling output. Pure composition of
// the individual operations; no additional logic lives here.
type AnalysisReport struct {
	Overview          OverallSummary                       `json:"overview"`
	SummaryStats      map[string]ColumnStats               `json:"summary_stats"`
	NullDistribution  map[string]NullProfile               `json:"null_distribution"`
	CorrelationMatrix map[string]map[string]sanitize.Float `json:"correlation_matrix"`
	HighCorrelations  []CorrelationEntry                   `json:"high_correlations"`
	CategoricalSummary map[string]CategoricalSummary       `json:"categorical_summary"`
}
