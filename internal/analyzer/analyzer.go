// Package analyzer computes descriptive statistics and distribution
// summaries over a table: per-column stats, null distribution, correlation
// structure and the aggregate analysis report.
package analyzer

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"csvdoctor/domain/profile"
	"csvdoctor/domain/table"
	"csvdoctor/internal/inference"
	"csvdoctor/internal/mathutil"
	"csvdoctor/internal/sanitize"
)

// DefaultCorrelationThreshold is the cutoff for reporting a column pair as
// highly correlated.
const DefaultCorrelationThreshold = 0.7

// Analyzer profiles a single table snapshot. Column kinds are inferred once
// at construction and reused by every operation.
type Analyzer struct {
	tbl   *table.Table
	kinds map[string]inference.ColumnKind
}

// New builds an analyzer for the given table.
func New(tbl *table.Table) *Analyzer {
	return &Analyzer{
		tbl:   tbl,
		kinds: inference.InferAll(tbl),
	}
}

// Kinds exposes the inferred column kinds for this profiling pass.
func (a *Analyzer) Kinds() map[string]inference.ColumnKind {
	return a.kinds
}

// SummaryStats computes descriptive statistics for every numeric column
// with at least one non-null value. Fully-null columns are absent from the
// result.
func (a *Analyzer) SummaryStats() map[string]profile.ColumnStats {
	out := make(map[string]profile.ColumnStats)
	for i := range a.tbl.Columns {
		col := &a.tbl.Columns[i]
		if a.kinds[col.Name] != inference.KindNumeric {
			continue
		}
		data := inference.ColumnFloats(col)
		if len(data) == 0 {
			continue
		}
		out[col.Name] = columnStats(data)
	}
	return out
}

func columnStats(data []float64) profile.ColumnStats {
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviationSample(data)
	variance, _ := stats.SampleVariance(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	q25 := mathutil.Quantile(data, 0.25)
	q75 := mathutil.Quantile(data, 0.75)

	round := func(v float64) sanitize.Float { return sanitize.Float(sanitize.Round(v, 4)) }
	return profile.ColumnStats{
		Count:    len(data),
		Mean:     round(mean),
		Median:   round(median),
		StdDev:   round(stdDev),
		Min:      round(min),
		Max:      round(max),
		Q25:      round(q25),
		Q75:      round(q75),
		IQR:      round(q75 - q25),
		Variance: round(variance),
		Skewness: round(mathutil.Skewness(data)),
		Kurtosis: round(mathutil.Kurtosis(data)),
	}
}

// NullDistribution reports the null pattern of every column, percentages
// relative to total rows.
func (a *Analyzer) NullDistribution() map[string]profile.NullProfile {
	rows := a.tbl.NumRows()
	out := make(map[string]profile.NullProfile, a.tbl.NumCols())
	for i := range a.tbl.Columns {
		col := &a.tbl.Columns[i]
		nulls := col.NullCount()
		np := profile.NullProfile{
			NullCount:    nulls,
			NonNullCount: rows - nulls,
		}
		if rows > 0 {
			np.NullPercentage = sanitize.Float(sanitize.Round(100*float64(nulls)/float64(rows), 2))
			np.NonNullPercentage = sanitize.Float(sanitize.Round(100*float64(rows-nulls)/float64(rows), 2))
		}
		out[col.Name] = np
	}
	return out
}

// numericColumns returns the names of numeric-kind columns in table order.
func (a *Analyzer) numericColumns() []string {
	var names []string
	for i := range a.tbl.Columns {
		if a.kinds[a.tbl.Columns[i].Name] == inference.KindNumeric {
			names = append(names, a.tbl.Columns[i].Name)
		}
	}
	return names
}

// pairwiseCorrelation computes the Pearson coefficient over rows where both
// columns hold coercible values. NaN when fewer than two complete pairs or
// a degenerate variance.
func (a *Analyzer) pairwiseCorrelation(name1, name2 string) float64 {
	col1 := a.tbl.Column(name1)
	col2 := a.tbl.Column(name2)
	var xs, ys []float64
	for i := 0; i < a.tbl.NumRows(); i++ {
		x, ok1 := inference.CoerceNumeric(col1.Values[i])
		y, ok2 := inference.CoerceNumeric(col2.Values[i])
		if ok1 && ok2 {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// CorrelationMatrix computes the full symmetric Pearson matrix over numeric
// columns, cells rounded to 3 decimals. Empty when fewer than two numeric
// columns exist.
func (a *Analyzer) CorrelationMatrix() map[string]map[string]sanitize.Float {
	names := a.numericColumns()
	out := make(map[string]map[string]sanitize.Float, len(names))
	if len(names) < 2 {
		return out
	}
	for _, n1 := range names {
		row := make(map[string]sanitize.Float, len(names))
		for _, n2 := range names {
			var r float64
			if n1 == n2 {
				r = 1.0
			} else {
				r = a.pairwiseCorrelation(n1, n2)
			}
			row[n2] = sanitize.Float(sanitize.Round(r, 3))
		}
		out[n1] = row
	}
	return out
}

// HighCorrelations returns upper-triangle pairs whose absolute correlation
// exceeds the threshold, sorted descending. Ties keep matrix iteration
// order.
func (a *Analyzer) HighCorrelations(threshold float64) []profile.CorrelationEntry {
	names := a.numericColumns()
	if len(names) < 2 {
		return nil
	}
	var entries []profile.CorrelationEntry
	for j := 1; j < len(names); j++ {
		for i := 0; i < j; i++ {
			r := math.Abs(a.pairwiseCorrelation(names[i], names[j]))
			if r > threshold {
				entries = append(entries, profile.CorrelationEntry{
					Column1:     names[i],
					Column2:     names[j],
					Correlation: sanitize.Float(sanitize.Round(r, 3)),
				})
			}
		}
	}
	sort.SliceStable(entries, func(x, y int) bool {
		return math.Abs(float64(entries[x].Correlation)) > math.Abs(float64(entries[y].Correlation))
	})
	return entries
}

// FrequencyDistribution maps every distinct value of a column to its count
// and percentage of total rows. Unknown columns yield an empty map.
func (a *Analyzer) FrequencyDistribution(column string) map[string]profile.FrequencyEntry {
	out := make(map[string]profile.FrequencyEntry)
	col := a.tbl.Column(column)
	if col == nil {
		return out
	}
	rows := a.tbl.NumRows()
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.IsMissing() {
			counts[v.String()]++
		}
	}
	for key, count := range counts {
		entry := profile.FrequencyEntry{Count: count}
		if rows > 0 {
			entry.Percentage = sanitize.Float(sanitize.Round(100*float64(count)/float64(rows), 2))
		}
		out[key] = entry
	}
	return out
}

// categoricalColumns returns the columns summarized as categorical: string
// storage, or text-kind regardless of storage.
func (a *Analyzer) categoricalColumns() []*table.Column {
	var cols []*table.Column
	for i := range a.tbl.Columns {
		col := &a.tbl.Columns[i]
		if col.Storage() == table.StorageString || a.kinds[col.Name] == inference.KindText {
			cols = append(cols, col)
		}
	}
	return cols
}

// CategoricalSummary summarizes every text-valued column: cardinality, top
// value and the five most frequent values.
func (a *Analyzer) CategoricalSummary() map[string]profile.CategoricalSummary {
	out := make(map[string]profile.CategoricalSummary)
	for _, col := range a.categoricalColumns() {
		counts := make(map[string]int)
		for _, v := range col.Values {
			if !v.IsMissing() {
				counts[v.String()]++
			}
		}

		summary := profile.CategoricalSummary{
			UniqueValues: len(counts),
			NullCount:    col.NullCount(),
			MostCommon:   topN(counts, 5),
		}
		if mode, ok := mathutil.ModeValue(col.Values); ok {
			top := mode.String()
			summary.TopValue = &top
			summary.TopValueCount = counts[top]
		}
		out[col.Name] = summary
	}
	return out
}

// topN keeps the n highest counts; ties break on the smaller key so the
// selection is deterministic.
func topN(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, c := range counts {
		sorted = append(sorted, kv{k, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make(map[string]int, len(sorted))
	for _, e := range sorted {
		out[e.key] = e.count
	}
	return out
}

// DistributionShape describes the shape of a numeric column. Nil for
// unknown or non-numeric columns.
func (a *Analyzer) DistributionShape(column string) *profile.DistributionShape {
	col := a.tbl.Column(column)
	if col == nil || a.kinds[column] != inference.KindNumeric {
		return nil
	}
	data := inference.ColumnFloats(col)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	skew := mathutil.Skewness(data)
	kurt := mathutil.Kurtosis(data)

	shape := &profile.DistributionShape{
		Mean:     sanitize.Float(sanitize.Round(mean, 4)),
		Median:   sanitize.Float(sanitize.Round(median, 4)),
		Skewness: sanitize.Float(sanitize.Round(skew, 4)),
		Kurtosis: sanitize.Float(sanitize.Round(kurt, 4)),
		IsNormal: math.Abs(skew) < 0.5 && math.Abs(kurt) < 3,
	}
	if mode, ok := mathutil.ModeFloat(data); ok {
		rounded := sanitize.Float(sanitize.Round(mode, 4))
		shape.Mode = &rounded
	}
	return shape
}

// OverallSummary builds the dataset-level overview. The duplicate count
// here uses extras-beyond-first semantics; the validator's mark-all report
// is a different convention kept deliberately separate.
func (a *Analyzer) OverallSummary() profile.OverallSummary {
	rows := a.tbl.NumRows()
	cols := a.tbl.NumCols()
	cells := rows * cols
	nullCells := a.tbl.NullCells()

	duplicates := 0
	for _, count := range a.tbl.RowKeyCounts() {
		duplicates += count - 1
	}

	summary := profile.OverallSummary{
		TotalRows:          rows,
		TotalColumns:       cols,
		TotalCells:         cells,
		NullCells:          nullCells,
		DuplicateRows:      duplicates,
		MemoryUsageBytes:   a.tbl.MemoryUsage(),
		NumericColumns:     len(a.numericColumns()),
		CategoricalColumns: len(a.categoricalColumns()),
		ColumnNames:        a.tbl.ColumnNames(),
	}
	if cells > 0 {
		summary.NullPercentage = sanitize.Float(sanitize.Round(100*float64(nullCells)/float64(cells), 2))
	}
	return summary
}

// ColumnInsights gives a detailed per-column view combining metadata with
// the type-appropriate statistics. Empty for unknown columns.
func (a *Analyzer) ColumnInsights(column string) *profile.ColumnInsights {
	col := a.tbl.Column(column)
	if col == nil {
		return nil
	}
	rows := a.tbl.NumRows()
	nulls := col.NullCount()
	distinct := make(map[string]struct{})
	for _, v := range col.NonMissing() {
		distinct[v.String()] = struct{}{}
	}

	insights := &profile.ColumnInsights{
		ColumnName:   column,
		DataType:     string(col.Storage()),
		InferredType: string(a.kinds[column]),
		TotalValues:  rows,
		NullCount:    nulls,
		UniqueValues: len(distinct),
		Duplicates:   rows - len(distinct),
	}
	if rows > 0 {
		insights.NullPercentage = sanitize.Float(sanitize.Round(100*float64(nulls)/float64(rows), 2))
	}

	switch a.kinds[column] {
	case inference.KindNumeric:
		if s, ok := a.SummaryStats()[column]; ok {
			insights.NumericStats = &s
		}
		insights.Distribution = a.DistributionShape(column)
	case inference.KindCategorical:
		insights.FrequencyDistribution = a.FrequencyDistribution(column)
	}
	return insights
}

// Report assembles the full analysis output. Pure composition.
func (a *Analyzer) Report() profile.AnalysisReport {
	return profile.AnalysisReport{
		Overview:           a.OverallSummary(),
		SummaryStats:       a.SummaryStats(),
		NullDistribution:   a.NullDistribution(),
		CorrelationMatrix:  a.CorrelationMatrix(),
		HighCorrelations:   a.HighCorrelations(DefaultCorrelationThreshold),
		CategoricalSummary: a.CategoricalSummary(),
	}
}
