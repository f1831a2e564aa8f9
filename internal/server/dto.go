package server

import (
	"math"
	"time"

	"github.com/glacioclim/albedotrend/internal/trend"
)

// API shapes mirror the trend records but use pointers for statistical
// fields: NaN ("not computed") becomes null, which encoding/json cannot
// express for a plain float64.

type apiRun struct {
	ID        string                  `json:"run_id" msgpack:"run_id"`
	StartedAt time.Time               `json:"started_at" msgpack:"started_at"`
	Source    string                  `json:"source" msgpack:"source"`
	Results   []apiFractionResult     `json:"results" msgpack:"results"`
	Bootstrap map[string]apiBootstrap `json:"bootstrap,omitempty" msgpack:"bootstrap,omitempty"`
}

type apiFractionResult struct {
	Fraction   string `json:"fraction" msgpack:"fraction"`
	Status     string `json:"status" msgpack:"status"`
	StatusNote string `json:"status_note,omitempty" msgpack:"status_note,omitempty"`
	N          int    `json:"n" msgpack:"n"`
	Removed    int    `json:"removed" msgpack:"removed"`

	Trend    string   `json:"trend" msgpack:"trend"`
	S        *float64 `json:"mk_s" msgpack:"mk_s"`
	Z        *float64 `json:"mk_z" msgpack:"mk_z"`
	P        *float64 `json:"mk_p" msgpack:"mk_p"`
	Tau      *float64 `json:"mk_tau" msgpack:"mk_tau"`
	MKMethod string   `json:"mk_method" msgpack:"mk_method"`

	SenSlope       *float64 `json:"sen_slope" msgpack:"sen_slope"`
	SenSlopeDecade *float64 `json:"sen_slope_per_decade" msgpack:"sen_slope_per_decade"`
	SenIntercept   *float64 `json:"sen_intercept" msgpack:"sen_intercept"`
	SenCILower     *float64 `json:"sen_ci_lower" msgpack:"sen_ci_lower"`
	SenCIUpper     *float64 `json:"sen_ci_upper" msgpack:"sen_ci_upper"`
	SenMethod      string   `json:"sen_method" msgpack:"sen_method"`

	AutocorrLag1        *float64 `json:"autocorr_lag1" msgpack:"autocorr_lag1"`
	AutocorrBand        string   `json:"autocorr_band" msgpack:"autocorr_band"`
	AutocorrSignificant bool     `json:"autocorr_significant" msgpack:"autocorr_significant"`
	Prewhitened         bool     `json:"prewhitened" msgpack:"prewhitened"`
}

type apiBootstrap struct {
	Requested  int  `json:"requested_iterations" msgpack:"requested_iterations"`
	Successful int  `json:"successful_iterations" msgpack:"successful_iterations"`
	Skipped    bool `json:"skipped" msgpack:"skipped"`

	SlopeMedian           *float64 `json:"slope_median" msgpack:"slope_median"`
	SlopeCILower          *float64 `json:"slope_ci_lower" msgpack:"slope_ci_lower"`
	SlopeCIUpper          *float64 `json:"slope_ci_upper" msgpack:"slope_ci_upper"`
	SlopeStdDev           *float64 `json:"slope_stddev" msgpack:"slope_stddev"`
	PMean                 *float64 `json:"p_mean" msgpack:"p_mean"`
	SignificantProportion *float64 `json:"significant_proportion" msgpack:"significant_proportion"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toAPIRun(run *trend.Run) apiRun {
	out := apiRun{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		Source:    run.Source,
		Bootstrap: make(map[string]apiBootstrap, len(run.Bootstrap)),
	}
	for _, fr := range run.Results {
		out.Results = append(out.Results, toAPIFraction(fr))
	}
	for fraction, br := range run.Bootstrap {
		out.Bootstrap[fraction] = toAPIBootstrap(br)
	}
	return out
}

func toAPIFraction(fr trend.FractionResult) apiFractionResult {
	return apiFractionResult{
		Fraction:            fr.Fraction,
		Status:              string(fr.Status),
		StatusNote:          fr.StatusNote,
		N:                   fr.N,
		Removed:             fr.Removed,
		Trend:               string(fr.MannKendall.Trend),
		S:                   optional(fr.MannKendall.S),
		Z:                   optional(fr.MannKendall.Z),
		P:                   optional(fr.MannKendall.P),
		Tau:                 optional(fr.MannKendall.Tau),
		MKMethod:            fr.MannKendall.Method,
		SenSlope:            optional(fr.Sen.Slope),
		SenSlopeDecade:      optional(fr.Sen.SlopePerDecade),
		SenIntercept:        optional(fr.Sen.Intercept),
		SenCILower:          optional(fr.Sen.CILower),
		SenCIUpper:          optional(fr.Sen.CIUpper),
		SenMethod:           fr.Sen.Method,
		AutocorrLag1:        optional(fr.Autocorr.Lag1),
		AutocorrBand:        string(fr.Autocorr.Band),
		AutocorrSignificant: fr.Autocorr.Significant,
		Prewhitened:         fr.Prewhitened,
	}
}

func toAPIBootstrap(br trend.BootstrapResult) apiBootstrap {
	return apiBootstrap{
		Requested:             br.RequestedIterations,
		Successful:            br.SuccessfulIterations,
		Skipped:               br.Skipped,
		SlopeMedian:           optional(br.SlopeMedian),
		SlopeCILower:          optional(br.SlopeCILower),
		SlopeCIUpper:          optional(br.SlopeCIUpper),
		SlopeStdDev:           optional(br.SlopeStdDev),
		PMean:                 optional(br.PMean),
		SignificantProportion: optional(br.SignificantProportion),
	}
}
