package trend

import (
	"math"
	"math/rand"
	"testing"
)

// ar1Series generates a strongly autocorrelated AR(1) series with a fixed
// seed so test results are reproducible.
func ar1Series(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	out[0] = rng.NormFloat64()
	for i := 1; i < n; i++ {
		out[i] = phi*out[i-1] + rng.NormFloat64()*0.3
	}
	return out
}

func TestAutocorrGuards(t *testing.T) {
	series := []float64{0.8, 0.7, 0.9, 0.6, 0.8}

	tests := []struct {
		name     string
		values   []float64
		lag      int
		expected float64
		exact    bool
	}{
		{name: "lag zero is one", values: series, lag: 0, expected: 1.0, exact: true},
		{name: "lag equals length", values: series, lag: 5, expected: 0.0, exact: true},
		{name: "lag beyond length", values: series, lag: 10, expected: 0.0, exact: true},
		{name: "negative lag", values: series, lag: -1, expected: 0.0, exact: true},
		{name: "constant series", values: []float64{1, 1, 1, 1}, lag: 1, expected: 0.0, exact: true},
		{name: "empty", values: nil, lag: 1, expected: 0.0, exact: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Autocorr(tt.values, tt.lag)
			if tt.exact && got != tt.expected {
				t.Errorf("Autocorr(lag=%d) = %v, expected %v", tt.lag, got, tt.expected)
			}
		})
	}
}

func TestAutocorrDetectsAR1(t *testing.T) {
	series := ar1Series(200, 0.8, 42)
	r1 := Autocorr(series, 1)
	if r1 < 0.5 {
		t.Errorf("expected strong lag-1 autocorrelation for AR(0.8) series, got %v", r1)
	}
}

func TestPrewhitenRemovesAR1Component(t *testing.T) {
	series := ar1Series(300, 0.8, 7)
	whitened := Prewhiten(series)

	if len(whitened) != len(series)-1 {
		t.Fatalf("expected length %d, got %d", len(series)-1, len(whitened))
	}

	residual := Autocorr(whitened, 1)
	if math.Abs(residual) > 0.15 {
		t.Errorf("expected residual lag-1 autocorrelation near 0, got %v", residual)
	}
}

func TestPrewhitenDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{name: "empty", values: nil},
		{name: "single", values: []float64{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Prewhiten(tt.values)
			if len(out) != len(tt.values) {
				t.Errorf("expected input returned unchanged, got length %d", len(out))
			}
		})
	}
}

func TestDiagnoseBands(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		phi         float64
		significant bool
	}{
		{name: "strong AR", phi: 0.85, significant: true},
		{name: "independent", phi: 0.0, significant: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := ar1Series(300, tt.phi, 99)
			diag := Diagnose(series, cfg)
			if diag.Significant != tt.significant {
				t.Errorf("expected significant=%v for phi=%v (lag1=%v)", tt.significant, tt.phi, diag.Lag1)
			}
		})
	}
}
