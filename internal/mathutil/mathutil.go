// Package mathutil holds the estimator conventions shared by the profiler,
// validator and cleaner: linear-interpolation quantiles and the adjusted
// third/fourth moment estimators the report format is defined against.
package mathutil

import (
	"math"
	"sort"

	"csvdoctor/domain/table"
)

// Quantile returns the p-quantile (0 <= p <= 1) of data using linear
// interpolation between order statistics. NaN for empty input.
func Quantile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Skewness returns the adjusted Fisher-Pearson standardized moment
// coefficient (the sample-bias-corrected estimator). NaN when fewer than 3
// values or zero variance.
func Skewness(data []float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return math.NaN()
	}
	mean := sum(data) / n
	m2, m3 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return math.NaN()
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis returns the unbiased estimator of excess kurtosis. NaN when
// fewer than 4 values or zero variance.
func Kurtosis(data []float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return math.NaN()
	}
	mean := sum(data) / n
	m2, m4 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return math.NaN()
	}
	g2 := m4/(m2*m2) - 3
	return ((n - 1) / ((n - 2) * (n - 3))) * ((n+1)*g2 + 6)
}

// ModeFloat returns the first mode of data: the most frequent value, ties
// broken by the smallest value. When every value is unique the smallest
// value wins, matching the convention that the mode sequence is sorted
// ascending and the first element taken.
func ModeFloat(data []float64) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	counts := make(map[float64]int, len(data))
	for _, x := range data {
		counts[x]++
	}
	best, bestCount := math.Inf(1), 0
	for x, c := range counts {
		if c > bestCount || (c == bestCount && x < best) {
			best, bestCount = x, c
		}
	}
	return best, true
}

// ModeValue returns the first mode of a value slice, keyed by string
// representation, missing cells excluded. Ties break on the smallest key.
func ModeValue(values []table.Value) (table.Value, bool) {
	type entry struct {
		value table.Value
		count int
	}
	counts := make(map[string]*entry, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if e, ok := counts[key]; ok {
			e.count++
		} else {
			counts[key] = &entry{value: v, count: 1}
		}
	}
	var bestKey string
	var best *entry
	for key, e := range counts {
		if best == nil || e.count > best.count || (e.count == best.count && key < bestKey) {
			bestKey, best = key, e
		}
	}
	if best == nil {
		return table.Value{}, false
	}
	return best.value, true
}

func sum(data []float64) float64 {
	total := 0.0
	for _, x := range data {
		total += x
	}
	return total
}
