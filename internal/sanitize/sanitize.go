// Package sanitize keeps floating-point results presentable: rounding for
// report fields and NaN/Inf scrubbing at the JSON boundary.
package sanitize

import (
	"encoding/json"
	"math"
	"strconv"
)

// Round rounds v half away from zero to the given number of decimal places.
// NaN and Inf pass through untouched; Float handles them at serialization.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// Float is a float64 that serializes NaN and Inf as JSON null instead of
// failing to marshal.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler, treating null as NaN.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
