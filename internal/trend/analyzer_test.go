package trend

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/timeseries"
)

func testAnalyzer(cfg Config) *Analyzer {
	return NewAnalyzer(cfg, zap.NewNop().Sugar())
}

func albedoScenario() *timeseries.Series {
	// Ten evenly spaced seasons of declining albedo, 2010..2019.
	years := []float64{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019}
	values := []float64{0.82, 0.80, 0.79, 0.77, 0.75, 0.74, 0.72, 0.70, 0.69, 0.67}
	s, _ := timeseries.New(years, values)
	return s
}

func TestAnalyzeFractionDecliningAlbedo(t *testing.T) {
	a := testAnalyzer(DefaultConfig())
	res := a.AnalyzeFraction("pure_ice", albedoScenario())

	if res.Status != StatusOK {
		t.Fatalf("expected ok status, got %q (%s)", res.Status, res.StatusNote)
	}
	if res.N != 10 || res.Removed != 0 {
		t.Errorf("expected n=10 removed=0, got n=%d removed=%d", res.N, res.Removed)
	}
	if res.MannKendall.Trend != TrendDecreasing {
		t.Errorf("expected decreasing trend, got %q", res.MannKendall.Trend)
	}
	if res.MannKendall.P >= 0.01 {
		t.Errorf("expected p < 0.01, got %v", res.MannKendall.P)
	}
	if math.Abs(res.Sen.Slope-(-0.0167)) > 0.001 {
		t.Errorf("expected Sen slope near -0.0167/yr, got %v", res.Sen.Slope)
	}
	if math.Abs(res.Sen.SlopePerDecade-(-0.167)) > 0.01 {
		t.Errorf("expected slope near -0.167/decade, got %v", res.Sen.SlopePerDecade)
	}
}

func TestAnalyzeFractionInsufficientData(t *testing.T) {
	nan := math.NaN()
	s, _ := timeseries.New(
		[]float64{2010, 2011, 2012, 2013, 2014, 2015},
		[]float64{0.8, nan, 0.78, nan, nan, 0.75},
	)

	a := testAnalyzer(DefaultConfig())
	res := a.AnalyzeFraction("border", s)

	if res.Status != StatusInsufficientData {
		t.Fatalf("expected insufficient_data status, got %q", res.Status)
	}
	if res.N != 3 || res.Removed != 3 {
		t.Errorf("expected n=3 removed=3, got n=%d removed=%d", res.N, res.Removed)
	}
	if !math.IsNaN(res.MannKendall.P) || !math.IsNaN(res.Sen.Slope) {
		t.Error("expected NaN statistical fields on insufficient data")
	}
	if res.Sen.Method != "failed" {
		t.Errorf("expected failed Sen method, got %q", res.Sen.Method)
	}
}

func TestAnalyzeFractionNilSeries(t *testing.T) {
	a := testAnalyzer(DefaultConfig())
	res := a.AnalyzeFraction("mixed_low", nil)
	if res.Status != StatusInsufficientData {
		t.Errorf("expected insufficient_data for missing series, got %q", res.Status)
	}
}

func TestAnalyzeFractionDeterministic(t *testing.T) {
	a := testAnalyzer(DefaultConfig())
	s := albedoScenario()

	first := a.AnalyzeFraction("pure_ice", s)
	second := a.AnalyzeFraction("pure_ice", s)

	if first.MannKendall != second.MannKendall {
		t.Error("Mann-Kendall results differ between identical runs")
	}
	if first.Sen != second.Sen {
		t.Error("Sen results differ between identical runs")
	}
	if first.Autocorr != second.Autocorr {
		t.Error("autocorrelation diagnostics differ between identical runs")
	}
}

func TestAnalyzeFractionPrewhitened(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prewhiten = true
	a := testAnalyzer(cfg)

	res := a.AnalyzeFraction("pure_ice", albedoScenario())
	if res.Status != StatusOK {
		t.Fatalf("expected ok status, got %q", res.Status)
	}
	if !res.Prewhitened {
		t.Error("expected prewhitened flag to be set")
	}
	if res.MannKendall.N != 9 {
		t.Errorf("expected n-1=9 observations after pre-whitening, got %d", res.MannKendall.N)
	}
}

func TestAnalyzeAllCoversConfiguredFractions(t *testing.T) {
	fractions := []string{"border", "mixed_low", "mixed_high", "mostly_ice", "pure_ice"}
	data := map[string]*timeseries.Series{
		"pure_ice":   albedoScenario(),
		"mostly_ice": albedoScenario(),
		// border, mixed_low, mixed_high intentionally missing
	}

	a := testAnalyzer(DefaultConfig())
	boot := DefaultBootstrapConfig()
	boot.Iterations = 50
	boot.Seed = 1
	run := a.AnalyzeAll("test.csv", fractions, data, &boot)

	if run.ID == "" {
		t.Error("expected a run ID")
	}
	if len(run.Results) != len(fractions) {
		t.Fatalf("expected %d results, got %d", len(fractions), len(run.Results))
	}
	for i, fraction := range fractions {
		if run.Results[i].Fraction != fraction {
			t.Errorf("result %d: expected fraction %q, got %q", i, fraction, run.Results[i].Fraction)
		}
	}

	pure, ok := run.ResultFor("pure_ice")
	if !ok || pure.Status != StatusOK {
		t.Errorf("expected ok result for pure_ice, got %+v", pure)
	}
	border, ok := run.ResultFor("border")
	if !ok || border.Status != StatusInsufficientData {
		t.Errorf("expected insufficient_data for missing border series, got %+v", border)
	}

	if _, ok := run.Bootstrap["pure_ice"]; !ok {
		t.Error("expected bootstrap record for pure_ice")
	}
	if _, ok := run.Bootstrap["border"]; ok {
		t.Error("did not expect bootstrap record for failed fraction")
	}
}
