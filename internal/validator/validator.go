// Package validator detects structural data-quality problems (duplicates,
// malformed rows, anomalies) and computes the weighted quality score.
package validator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"

	"csvdoctor/domain/quality"
	"csvdoctor/domain/table"
	"csvdoctor/internal/inference"
	"csvdoctor/internal/sanitize"
)

// Score weights. The overall score is a 0.3/0.2/0.2/0.3 blend; the null and
// anomaly components deliberately carry the heavier weight.
const (
	nullWeight      = 0.3
	duplicateWeight = 0.2
	typeWeight      = 0.2
	anomalyWeight   = 0.3

	highNullThreshold    = 50.0
	highVarianceRatio    = 2.0
	typeFailureRateLimit = 10.0
	typeIssuePenalty     = 10.0
	anomalyPenalty       = 15.0
	malformedSampleLimit = 10
)

// Validator checks one table snapshot. Column kinds are inferred once at
// construction.
type Validator struct {
	tbl   *table.Table
	kinds map[string]inference.ColumnKind
}

// New builds a validator for the given table.
func New(tbl *table.Table) *Validator {
	return &Validator{
		tbl:   tbl,
		kinds: inference.InferAll(tbl),
	}
}

// DetectDuplicates counts duplicated rows with mark-all semantics: every
// row that has at least one identical sibling counts. The duplicate_rows
// figure halves that count; exact only for duplicate sets of size two, kept
// as-is pending clarified product intent.
func (v *Validator) DetectDuplicates() quality.DuplicateReport {
	rows := v.tbl.NumRows()
	marked := 0
	for _, count := range v.tbl.RowKeyCounts() {
		if count > 1 {
			marked += count
		}
	}

	report := quality.DuplicateReport{DuplicateCount: marked}
	if rows > 0 {
		report.DuplicatePercentage = sanitize.Float(sanitize.Round(100*float64(marked)/float64(rows), 2))
	}
	if marked > 0 {
		report.DuplicateRows = marked / 2
	}
	return report
}

// DetectMalformedRows flags rows containing at least one null value,
// sampling up to ten row indices.
func (v *Validator) DetectMalformedRows() quality.MalformedReport {
	report := quality.MalformedReport{
		Rows:   []int{},
		Issues: map[string]quality.MalformedIssue{},
	}

	var withNulls []int
	for i := 0; i < v.tbl.NumRows(); i++ {
		for c := range v.tbl.Columns {
			if v.tbl.Columns[c].Values[i].IsMissing() {
				withNulls = append(withNulls, i)
				break
			}
		}
	}
	if len(withNulls) > 0 {
		sample := withNulls
		if len(sample) > malformedSampleLimit {
			sample = sample[:malformedSampleLimit]
		}
		report.Issues["missing_values"] = quality.MalformedIssue{
			Count:      len(withNulls),
			SampleRows: sample,
		}
		report.Count += len(withNulls)
	}
	return report
}

// DetectAnomalies evaluates every column independently for constant values,
// excessive nulls and excessive variance. A column may appear more than
// once; findings accumulate by check, columns in table order.
func (v *Validator) DetectAnomalies() []quality.Anomaly {
	anomalies := []quality.Anomaly{}
	rows := v.tbl.NumRows()

	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		distinct := make(map[string]struct{})
		for _, val := range col.NonMissing() {
			distinct[val.String()] = struct{}{}
		}
		if len(distinct) == 1 {
			var first string
			for _, val := range col.Values {
				if !val.IsMissing() {
					first = val.String()
					break
				}
			}
			anomalies = append(anomalies, quality.Anomaly{
				Type:    quality.AnomalyConstantColumn,
				Column:  col.Name,
				Value:   first,
				Message: fmt.Sprintf("Column '%s' has only one unique value", col.Name),
			})
		}
	}

	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		if rows == 0 {
			continue
		}
		nullPct := 100 * float64(col.NullCount()) / float64(rows)
		if nullPct > highNullThreshold {
			rounded := sanitize.Float(sanitize.Round(nullPct, 2))
			anomalies = append(anomalies, quality.Anomaly{
				Type:           quality.AnomalyHighNullPercentage,
				Column:         col.Name,
				NullPercentage: &rounded,
				Message:        fmt.Sprintf("Column '%s' has %.2f%% null values", col.Name, nullPct),
			})
		}
	}

	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		if v.kinds[col.Name] != inference.KindNumeric {
			continue
		}
		data := inference.ColumnFloats(col)
		if len(data) == 0 {
			continue
		}
		mean, _ := stats.Mean(data)
		stdDev, _ := stats.StandardDeviationSample(data)
		if mean != 0 && stdDev/math.Abs(mean) > highVarianceRatio {
			roundedStd := sanitize.Float(sanitize.Round(stdDev, 2))
			roundedMean := sanitize.Float(sanitize.Round(mean, 2))
			anomalies = append(anomalies, quality.Anomaly{
				Type:    quality.AnomalyHighVariance,
				Column:  col.Name,
				StdDev:  &roundedStd,
				Mean:    &roundedMean,
				Message: fmt.Sprintf("Column '%s' has high variance (std/mean = %.2f)", col.Name, stdDev/math.Abs(mean)),
			})
		}
	}

	return anomalies
}

// CheckColumnTypes reports the stored versus inferred type of every column.
// The unique count here includes the null marker as one distinct value.
func (v *Validator) CheckColumnTypes() map[string]quality.ColumnTypeInfo {
	rows := v.tbl.NumRows()
	out := make(map[string]quality.ColumnTypeInfo, v.tbl.NumCols())
	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		distinct := make(map[string]struct{})
		for _, val := range col.Values {
			distinct[val.String()] = struct{}{}
		}
		info := quality.ColumnTypeInfo{
			CurrentDtype: string(col.Storage()),
			InferredType: string(v.kinds[col.Name]),
			UniqueValues: len(distinct),
			NullCount:    col.NullCount(),
		}
		if rows > 0 {
			info.NullPercentage = sanitize.Float(sanitize.Round(100*float64(col.NullCount())/float64(rows), 2))
		}
		out[col.Name] = info
	}
	return out
}

// GetNullDistribution reports per-column nulls plus the table-wide total,
// the total percentage relative to total cells.
func (v *Validator) GetNullDistribution() quality.NullDistribution {
	rows := v.tbl.NumRows()
	cells := rows * v.tbl.NumCols()
	dist := quality.NullDistribution{Columns: make(map[string]quality.ColumnNulls, v.tbl.NumCols())}

	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		nulls := col.NullCount()
		cn := quality.ColumnNulls{NullCount: nulls, NonNullCount: rows - nulls}
		if rows > 0 {
			cn.NullPercentage = sanitize.Float(sanitize.Round(100*float64(nulls)/float64(rows), 2))
		}
		dist.Columns[col.Name] = cn
	}

	totalNulls := v.tbl.NullCells()
	dist.Total = quality.NullTotals{NullCount: totalNulls}
	if cells > 0 {
		dist.Total.NullPercentage = sanitize.Float(sanitize.Round(100*float64(totalNulls)/float64(cells), 2))
	}
	return dist
}

// typeIssueCount counts string-storage columns whose numeric-coercion
// failure rate (nulls included) exceeds the limit.
func (v *Validator) typeIssueCount() int {
	rows := v.tbl.NumRows()
	if rows == 0 {
		return 0
	}
	issues := 0
	for i := range v.tbl.Columns {
		col := &v.tbl.Columns[i]
		if col.Storage() != table.StorageString {
			continue
		}
		failures := 0
		for _, val := range col.Values {
			if val.IsMissing() {
				failures++
				continue
			}
			if _, ok := inference.CoerceNumeric(val); !ok {
				failures++
			}
		}
		if 100*float64(failures)/float64(rows) > typeFailureRateLimit {
			issues++
		}
	}
	return issues
}

// GetDataQualityScore computes the weighted 0-100 composite score. The
// duplicate component uses extras-beyond-first semantics, unlike
// DetectDuplicates; the two conventions are divergent by design.
func (v *Validator) GetDataQualityScore() quality.QualityScore {
	rows := v.tbl.NumRows()
	cells := rows * v.tbl.NumCols()

	nullPct := 0.0
	if cells > 0 {
		nullPct = 100 * float64(v.tbl.NullCells()) / float64(cells)
	}
	nullScore := math.Max(0, 100-nullPct)

	extras := 0
	for _, count := range v.tbl.RowKeyCounts() {
		extras += count - 1
	}
	dupPct := 0.0
	if rows > 0 {
		dupPct = 100 * float64(extras) / float64(rows)
	}
	dupScore := math.Max(0, 100-dupPct)

	typeScore := math.Max(0, 100-float64(v.typeIssueCount())*typeIssuePenalty)

	anomalies := v.DetectAnomalies()
	anomalyScore := math.Max(0, 100-float64(len(anomalies))*anomalyPenalty)

	overall := nullScore*nullWeight + dupScore*duplicateWeight +
		typeScore*typeWeight + anomalyScore*anomalyWeight

	issues := len(anomalies)
	if dupPct > 0 {
		issues++
	}
	if nullPct > 0 {
		issues++
	}

	return quality.QualityScore{
		OverallScore: sanitize.Float(sanitize.Round(overall, 2)),
		Scores: quality.ScoreBreakdown{
			NullScore:      sanitize.Float(sanitize.Round(nullScore, 2)),
			DuplicateScore: sanitize.Float(sanitize.Round(dupScore, 2)),
			TypeScore:      sanitize.Float(sanitize.Round(typeScore, 2)),
			AnomalyScore:   sanitize.Float(sanitize.Round(anomalyScore, 2)),
		},
		IssuesCount: issues,
	}
}

// ValidateSchema checks the table against an expected {column: type}
// schema. Missing columns are errors, type mismatches are warnings.
func (v *Validator) ValidateSchema(schema map[string]string) quality.SchemaValidationResult {
	result := quality.SchemaValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	var missing []string
	for name := range schema {
		if !v.tbl.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Valid = false
		for _, name := range missing {
			result.Errors = append(result.Errors, fmt.Sprintf("missing column: %s", name))
		}
	}

	for name, expected := range schema {
		col := v.tbl.Column(name)
		if col == nil {
			continue
		}
		storage := col.Storage()
		switch expected {
		case "numeric":
			if storage != table.StorageNumber {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Column '%s' expected numeric but got %s", name, storage))
			}
		case "string":
			if storage != table.StorageString {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Column '%s' expected string but got %s", name, storage))
			}
		}
	}
	return result
}

// ParseSchema reads a {column: type} schema from YAML.
func ParseSchema(data []byte) (map[string]string, error) {
	schema := make(map[string]string)
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}

// Report assembles the full validation output, quality score included.
func (v *Validator) Report() quality.ValidationReport {
	score := v.GetDataQualityScore()
	return quality.ValidationReport{
		DataShape: quality.DataShape{
			Rows:    v.tbl.NumRows(),
			Columns: v.tbl.NumCols(),
		},
		NullDistribution: v.GetNullDistribution(),
		ColumnTypes:      v.CheckColumnTypes(),
		Duplicates:       v.DetectDuplicates(),
		MalformedRows:    v.DetectMalformedRows(),
		Anomalies:        v.DetectAnomalies(),
		QualityScore:     &score,
	}
}
