package trend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/timeseries"
)

// Analyzer orchestrates trend analysis across glacier-fraction classes:
// validation, autocorrelation diagnostics, optional pre-whitening,
// Mann-Kendall, and Sen's slope. One fraction's failure never aborts the
// batch; it becomes a tagged result record instead.
type Analyzer struct {
	cfg    Config
	tester Tester
	logger *zap.SugaredLogger
}

// NewAnalyzer creates an Analyzer. The Mann-Kendall implementation is
// selected here, once, from cfg.UseManualTester.
func NewAnalyzer(cfg Config, logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		tester: NewTester(cfg.UseManualTester),
		logger: logger,
	}
}

// AnalyzeFraction runs the full per-fraction pipeline on one series and
// assembles a result record. Internal panics from degenerate numerics are
// converted to a StatusFailed record.
func (a *Analyzer) AnalyzeFraction(fraction string, series *timeseries.Series) (result FractionResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorw("trend computation failed", "fraction", fraction, "panic", r)
			result = FractionResult{
				Fraction:    fraction,
				Status:      StatusFailed,
				StatusNote:  fmt.Sprintf("computation failure: %v", r),
				MannKendall: nanMK(0, a.tester.Name()),
				Sen:         nanSen(),
			}
		}
	}()

	ok, clean, removed := timeseries.Validate(series, a.cfg.MinObservations)
	if !ok {
		a.logger.Warnw("insufficient data for trend analysis",
			"fraction", fraction, "valid", clean.Len(), "removed", removed,
			"min_required", a.cfg.MinObservations)
		return FractionResult{
			Fraction:    fraction,
			Status:      StatusInsufficientData,
			StatusNote:  fmt.Sprintf("%d valid observations, need %d", clean.Len(), a.cfg.MinObservations),
			N:           clean.Len(),
			Removed:     removed,
			MannKendall: nanMK(clean.Len(), a.tester.Name()),
			Sen:         nanSen(),
		}
	}

	diag := Diagnose(clean.Values, a.cfg)
	if diag.Significant {
		a.logger.Warnw("significant lag-1 autocorrelation detected",
			"fraction", fraction, "lag1", diag.Lag1, "band", diag.Band)
	}

	testYears := clean.Years
	testValues := clean.Values
	prewhitened := false
	if a.cfg.Prewhiten && clean.Len() >= 2 {
		testValues = Prewhiten(clean.Values)
		testYears = clean.Years[1:]
		prewhitened = true
	}

	mk := a.tester.Test(testValues, a.cfg.Alpha)
	sen := SenSlope(testYears, testValues)

	a.logger.Infow("fraction analyzed",
		"fraction", fraction, "n", clean.Len(), "trend", mk.Trend,
		"p", mk.P, "sen_slope_decade", sen.SlopePerDecade)

	return FractionResult{
		Fraction:    fraction,
		Status:      StatusOK,
		N:           clean.Len(),
		Removed:     removed,
		MannKendall: mk,
		Sen:         sen,
		Autocorr:    diag,
		Prewhitened: prewhitened,
	}
}

// AnalyzeAll runs every configured fraction in order, optionally following
// each with a bootstrap pass, and assembles the run record. Fractions absent
// from the data map produce insufficient-data records so the run always
// covers the full configured set.
func (a *Analyzer) AnalyzeAll(source string, fractions []string, data map[string]*timeseries.Series, boot *BootstrapConfig) *Run {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Source:    source,
		Bootstrap: make(map[string]BootstrapResult),
	}

	for _, fraction := range fractions {
		series := data[fraction]
		fr := a.AnalyzeFraction(fraction, series)
		run.Results = append(run.Results, fr)

		if boot == nil || fr.Status != StatusOK {
			continue
		}
		_, clean, _ := timeseries.Validate(series, 0)
		br := Bootstrap(clean.Years, clean.Values, *boot)
		if br.Skipped {
			a.logger.Warnw("bootstrap skipped", "fraction", fraction, "n", clean.Len())
		}
		run.Bootstrap[fraction] = br
	}

	return run
}
