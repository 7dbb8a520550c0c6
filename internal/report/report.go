// Package report renders a profiling and quality run as a Markdown
// document, with an HTML rendering for browser export.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"csvdoctor/domain/profile"
	"csvdoctor/domain/quality"
	"csvdoctor/internal/sanitize"
)

// Input bundles everything a report draws from.
type Input struct {
	FileName   string
	Analysis   *profile.AnalysisReport
	Insights   []profile.ColumnInsights
	Validation *quality.ValidationReport
	Changes    []string
	Now        time.Time
}

// Markdown renders the full report as Markdown text.
func Markdown(in Input) string {
	var b strings.Builder

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprintf(&b, "# Data Quality Report: %s\n\n", in.FileName)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	writeExecutiveSummary(&b, in)
	writeColumnOverview(&b, in.Insights)
	writeSummaryStats(&b, in.Analysis)
	writeNullDistribution(&b, in.Analysis)
	writeCorrelations(&b, in.Analysis)
	writeCategoricalSummary(&b, in.Analysis)
	writeQuality(&b, in.Validation)
	writeChangeLog(&b, in.Changes)

	return b.String()
}

// HTML renders the report as a complete HTML page.
func HTML(in Input) []byte {
	md := []byte(Markdown(in))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse(md)

	opts := html.RendererOptions{
		Title: fmt.Sprintf("Data Quality Report: %s", in.FileName),
		Flags: html.CommonFlags | html.CompletePage,
	}
	return markdown.Render(doc, html.NewRenderer(opts))
}

func writeExecutiveSummary(b *strings.Builder, in Input) {
	b.WriteString("## Executive Summary\n\n")
	if in.Analysis != nil {
		ov := in.Analysis.Overview
		fmt.Fprintf(b, "- Rows: %d\n", ov.TotalRows)
		fmt.Fprintf(b, "- Columns: %d\n", ov.TotalColumns)
		fmt.Fprintf(b, "- Numeric columns: %d\n", ov.NumericColumns)
		fmt.Fprintf(b, "- Categorical columns: %d\n", ov.CategoricalColumns)
		fmt.Fprintf(b, "- Duplicate rows: %d\n", ov.DuplicateRows)
	}
	if in.Validation != nil && in.Validation.QualityScore != nil {
		fmt.Fprintf(b, "- Quality score: %.2f/100\n", float64(in.Validation.QualityScore.OverallScore))
		fmt.Fprintf(b, "- Issues found: %d\n", in.Validation.QualityScore.IssuesCount)
	}
	b.WriteString("\n")
}

func writeColumnOverview(b *strings.Builder, insights []profile.ColumnInsights) {
	if len(insights) == 0 {
		return
	}
	b.WriteString("## Column Overview\n\n")
	b.WriteString("| Column | Type | Inferred | Nulls | Null % | Unique |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, ins := range insights {
		fmt.Fprintf(b, "| %s | %s | %s | %d | %.2f%% | %d |\n",
			ins.ColumnName, ins.DataType, ins.InferredType, ins.NullCount,
			float64(ins.NullPercentage), ins.UniqueValues)
	}
	b.WriteString("\n")
}

func writeSummaryStats(b *strings.Builder, a *profile.AnalysisReport) {
	if a == nil || len(a.SummaryStats) == 0 {
		return
	}
	b.WriteString("## Summary Statistics\n\n")
	b.WriteString("| Column | Count | Mean | Median | Std Dev | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, name := range sortedKeys(a.SummaryStats) {
		st := a.SummaryStats[name]
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			name, st.Count, num(st.Mean), num(st.Median), num(st.StdDev),
			num(st.Min), num(st.Max))
	}
	b.WriteString("\n")
}

func writeNullDistribution(b *strings.Builder, a *profile.AnalysisReport) {
	if a == nil {
		return
	}
	withNulls := make([]string, 0)
	for name, np := range a.NullDistribution {
		if np.NullCount > 0 {
			withNulls = append(withNulls, name)
		}
	}
	if len(withNulls) == 0 {
		return
	}
	sort.Strings(withNulls)

	b.WriteString("## Null Distribution\n\n")
	b.WriteString("| Column | Null Count | Null % |\n")
	b.WriteString("|---|---|---|\n")
	for _, name := range withNulls {
		np := a.NullDistribution[name]
		fmt.Fprintf(b, "| %s | %d | %.2f%% |\n", name, np.NullCount, float64(np.NullPercentage))
	}
	b.WriteString("\n")
}

func writeCorrelations(b *strings.Builder, a *profile.AnalysisReport) {
	if a == nil || len(a.HighCorrelations) == 0 {
		return
	}
	b.WriteString("## High Correlations\n\n")
	for _, entry := range a.HighCorrelations {
		fmt.Fprintf(b, "- %s and %s: %.3f\n", entry.Column1, entry.Column2, float64(entry.Correlation))
	}
	b.WriteString("\n")
}

func writeCategoricalSummary(b *strings.Builder, a *profile.AnalysisReport) {
	if a == nil || len(a.CategoricalSummary) == 0 {
		return
	}
	b.WriteString("## Categorical Columns\n\n")
	for _, name := range sortedKeys(a.CategoricalSummary) {
		cs := a.CategoricalSummary[name]
		top := "n/a"
		if cs.TopValue != nil {
			top = fmt.Sprintf("%q (%d rows)", *cs.TopValue, cs.TopValueCount)
		}
		fmt.Fprintf(b, "- **%s**: %d unique values, top value %s, %d nulls\n",
			name, cs.UniqueValues, top, cs.NullCount)
	}
	b.WriteString("\n")
}

func writeQuality(b *strings.Builder, v *quality.ValidationReport) {
	if v == nil {
		return
	}
	if v.QualityScore != nil {
		b.WriteString("## Quality Score\n\n")
		fmt.Fprintf(b, "Overall: **%.2f/100**\n\n", float64(v.QualityScore.OverallScore))
		scores := v.QualityScore.Scores
		fmt.Fprintf(b, "- Completeness: %.2f\n", float64(scores.NullScore))
		fmt.Fprintf(b, "- Uniqueness: %.2f\n", float64(scores.DuplicateScore))
		fmt.Fprintf(b, "- Type consistency: %.2f\n", float64(scores.TypeScore))
		fmt.Fprintf(b, "- Anomaly score: %.2f\n", float64(scores.AnomalyScore))
		b.WriteString("\n")
	}

	if len(v.Anomalies) > 0 {
		b.WriteString("### Anomalies\n\n")
		for _, an := range v.Anomalies {
			fmt.Fprintf(b, "- %s\n", an.Message)
		}
		b.WriteString("\n")
	}
}

func writeChangeLog(b *strings.Builder, changes []string) {
	if len(changes) == 0 {
		return
	}
	b.WriteString("## Cleaning Log\n\n")
	for _, change := range changes {
		fmt.Fprintf(b, "- %s\n", change)
	}
	b.WriteString("\n")
}

func num(f sanitize.Float) string {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
