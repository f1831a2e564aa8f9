// Package trend implements non-parametric trend statistics for albedo time
// series: the Mann-Kendall test, Sen's slope with Theil-Sen confidence
// intervals, lag-k autocorrelation diagnostics, AR(1) pre-whitening, and a
// bootstrap confidence interval engine. The Analyzer ties these together per
// glacier-fraction class.
package trend

import (
	"math"
	"time"
)

// Trend identifies the direction of a detected monotonic trend.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendNone       Trend = "no trend"
)

// Status classifies the outcome of a per-fraction analysis.
type Status string

const (
	// StatusOK means all statistics were computed.
	StatusOK Status = "ok"

	// StatusInsufficientData means too few finite observations remained
	// after cleaning. Statistical fields are NaN.
	StatusInsufficientData Status = "insufficient_data"

	// StatusFailed means a statistical computation failed internally.
	// Statistical fields are NaN.
	StatusFailed Status = "failed"
)

// MKResult holds the outcome of a Mann-Kendall monotonic trend test.
type MKResult struct {
	Trend  Trend
	S      float64
	VarS   float64
	Z      float64
	P      float64
	Tau    float64
	N      int
	Method string // "gonum" or "manual"
}

// SenResult holds a Theil-Sen slope estimate with its confidence interval.
type SenResult struct {
	Slope          float64
	SlopePerDecade float64
	Intercept      float64
	CILower        float64
	CIUpper        float64
	Method         string // "theil_sen" or "failed"
}

// AutocorrBand labels the informational strength band of a lag-1
// autocorrelation value. Bands are reporting-only; the Significant flag is
// what gates behavior.
type AutocorrBand string

const (
	AutocorrNegligible AutocorrBand = "negligible"
	AutocorrWeak       AutocorrBand = "weak"
	AutocorrModerate   AutocorrBand = "moderate"
	AutocorrStrong     AutocorrBand = "strong"
)

// AutocorrDiagnostic holds the lag-1 serial correlation check for a series.
type AutocorrDiagnostic struct {
	Lag1        float64
	Band        AutocorrBand
	Significant bool
}

// FractionResult is the per-fraction trend analysis record. It is created
// once per analysis run and is read-only downstream.
type FractionResult struct {
	Fraction    string
	Status      Status
	StatusNote  string
	N           int
	Removed     int
	MannKendall MKResult
	Sen         SenResult
	Autocorr    AutocorrDiagnostic
	Prewhitened bool
}

// Run is a complete analysis pass over all configured fraction classes.
type Run struct {
	ID        string
	StartedAt time.Time
	Source    string
	Results   []FractionResult
	Bootstrap map[string]BootstrapResult
}

// ResultFor returns the result record for a fraction, if present.
func (r *Run) ResultFor(fraction string) (FractionResult, bool) {
	for _, fr := range r.Results {
		if fr.Fraction == fraction {
			return fr, true
		}
	}
	return FractionResult{}, false
}

// nanMK returns an MKResult with all numeric fields NaN, used for series
// too short or too degenerate to test.
func nanMK(n int, method string) MKResult {
	return MKResult{
		Trend:  TrendNone,
		S:      math.NaN(),
		VarS:   math.NaN(),
		Z:      math.NaN(),
		P:      math.NaN(),
		Tau:    math.NaN(),
		N:      n,
		Method: method,
	}
}

// nanSen returns a SenResult tagged failed with all fields NaN.
func nanSen() SenResult {
	return SenResult{
		Slope:          math.NaN(),
		SlopePerDecade: math.NaN(),
		Intercept:      math.NaN(),
		CILower:        math.NaN(),
		CIUpper:        math.NaN(),
		Method:         "failed",
	}
}
