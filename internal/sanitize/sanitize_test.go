package sanitize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 4, 1.2346},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{100, 2, 100},
		{0.125, 2, 0.13},
	}
	for _, c := range cases {
		if got := Round(c.v, c.places); got != c.want {
			t.Errorf("Round(%v, %d) = %v, want %v", c.v, c.places, got, c.want)
		}
	}
	if !math.IsNaN(Round(math.NaN(), 2)) {
		t.Error("NaN should pass through")
	}
	if !math.IsInf(Round(math.Inf(1), 2), 1) {
		t.Error("Inf should pass through")
	}
}

func TestFloatMarshalJSON(t *testing.T) {
	type payload struct {
		A Float `json:"a"`
		B Float `json:"b"`
		C Float `json:"c"`
	}
	out, err := json.Marshal(payload{A: 1.5, B: Float(math.NaN()), C: Float(math.Inf(-1))})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":1.5,"b":null,"c":null}`
	if string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}
}

func TestFloatUnmarshalJSON(t *testing.T) {
	var f Float
	if err := json.Unmarshal([]byte("null"), &f); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(f)) {
		t.Errorf("null should unmarshal to NaN, got %v", float64(f))
	}
	if err := json.Unmarshal([]byte("2.25"), &f); err != nil || float64(f) != 2.25 {
		t.Errorf("unmarshal 2.25 = %v, %v", float64(f), err)
	}
}
