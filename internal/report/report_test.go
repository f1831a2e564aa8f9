package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/glacioclim/albedotrend/internal/timeseries"
	"github.com/glacioclim/albedotrend/internal/trend"
)

func reportRun() *trend.Run {
	return &trend.Run{
		ID:        "test-run",
		StartedAt: time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC),
		Source:    "albedo.csv",
		Results: []trend.FractionResult{
			{
				Fraction: "pure_ice",
				Status:   trend.StatusOK,
				N:        10,
				MannKendall: trend.MKResult{
					Trend: trend.TrendDecreasing, S: -45, Z: -3.93, P: 0.000083, Tau: -1, N: 10, Method: "gonum",
				},
				Sen: trend.SenResult{
					Slope: -0.0167, SlopePerDecade: -0.167, Intercept: 34.4,
					CILower: -0.02, CIUpper: -0.013, Method: "theil_sen",
				},
				Autocorr: trend.AutocorrDiagnostic{Lag1: 0.9, Band: trend.AutocorrStrong, Significant: true},
			},
			{
				Fraction:   "border",
				Status:     trend.StatusInsufficientData,
				StatusNote: "2 valid observations, need 10",
				N:          2,
				Removed:    8,
				MannKendall: trend.MKResult{
					Trend: trend.TrendNone, S: math.NaN(), Z: math.NaN(), P: math.NaN(), Tau: math.NaN(),
				},
				Sen: trend.SenResult{
					Slope: math.NaN(), SlopePerDecade: math.NaN(), Intercept: math.NaN(),
					CILower: math.NaN(), CIUpper: math.NaN(), Method: "failed",
				},
			},
		},
		Bootstrap: map[string]trend.BootstrapResult{
			"pure_ice": {
				RequestedIterations:   1000,
				SuccessfulIterations:  998,
				Slopes:                []float64{-0.017, -0.016, -0.015, -0.018, -0.016},
				SlopeMedian:           -0.016,
				SlopeCILower:          -0.019,
				SlopeCIUpper:          -0.013,
				SignificantProportion: 0.99,
			},
		},
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, reportRun())
	out := buf.String()

	for _, want := range []string{
		"test-run", "pure_ice", "border", "decreasing", "insufficient_data",
		"-0.1670", "n/a", "0.90 *",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, reportRun()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if len(records[1]) != len(records[0]) {
		t.Errorf("row width %d != header width %d", len(records[1]), len(records[0]))
	}
	if records[1][1] != "pure_ice" || records[2][1] != "border" {
		t.Errorf("unexpected fraction order: %v, %v", records[1][1], records[2][1])
	}
	// NaN fields survive as parseable placeholders.
	if records[2][8] != "NaN" {
		t.Errorf("expected NaN p-value field for failed fraction, got %q", records[2][8])
	}
}

func TestRenderHTML(t *testing.T) {
	years := []float64{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019}
	values := []float64{0.82, 0.80, 0.79, 0.77, 0.75, 0.74, 0.72, 0.70, 0.69, 0.67}
	s, _ := timeseries.New(years, values)
	data := map[string]*timeseries.Series{"pure_ice": s}

	var buf bytes.Buffer
	if err := RenderHTML(&buf, reportRun(), data); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"pure_ice albedo", "Sen slope by fraction class", "bootstrap slope distribution"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart page missing %q", want)
		}
	}
}
