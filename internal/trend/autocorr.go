package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Autocorr computes the lag-k Pearson autocorrelation of a series: the
// correlation of values[:n-lag] against values[lag:]. It returns 0.0 when
// the series is too short for the requested lag or when the correlation is
// undefined (zero variance).
func Autocorr(values []float64, lag int) float64 {
	n := len(values)
	if lag < 0 || n <= lag {
		return 0.0
	}
	if lag == 0 {
		// Degenerate but well defined as long as the variance is nonzero.
		r := stat.Correlation(values, values, nil)
		if math.IsNaN(r) {
			return 0.0
		}
		return r
	}

	head := values[:n-lag]
	tail := values[lag:]
	r := stat.Correlation(head, tail, nil)
	if math.IsNaN(r) {
		return 0.0
	}
	return r
}

// Diagnose buckets the lag-1 autocorrelation of a series into informational
// strength bands and flags it significant at the configured cutoff. Only the
// Significant flag influences downstream behavior; bands are for reporting.
func Diagnose(values []float64, cfg Config) AutocorrDiagnostic {
	r1 := Autocorr(values, 1)
	abs := math.Abs(r1)

	band := AutocorrNegligible
	switch {
	case abs >= cfg.AutocorrStrong:
		band = AutocorrStrong
	case abs >= cfg.AutocorrModerate:
		band = AutocorrModerate
	case abs >= cfg.AutocorrWeak:
		band = AutocorrWeak
	}

	return AutocorrDiagnostic{
		Lag1:        r1,
		Band:        band,
		Significant: abs >= cfg.AutocorrCutoff,
	}
}

// Prewhiten removes the estimated AR(1) component from a series: with r1 the
// lag-1 autocorrelation of the full input, the output has length n-1 and
// out[i-1] = v[i] - r1*v[i-1]. Series shorter than two observations are
// returned unchanged.
func Prewhiten(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return values
	}
	r1 := Autocorr(values, 1)
	out := make([]float64, n-1)
	for i := 1; i < n; i++ {
		out[i-1] = values[i] - r1*values[i-1]
	}
	return out
}
