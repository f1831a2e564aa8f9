package storage

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/trend"
)

func sampleRun() *trend.Run {
	return &trend.Run{
		ID:        "0b5a9c2e-7f1d-4e6a-9c3b-2d8f4a1e6b7c",
		StartedAt: time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC),
		Source:    "data/albedo_timeseries.csv",
		Results: []trend.FractionResult{
			{
				Fraction: "pure_ice",
				Status:   trend.StatusOK,
				N:        15,
				Removed:  1,
				MannKendall: trend.MKResult{
					Trend: trend.TrendDecreasing, S: -89, VarS: 408.33, Z: -4.35,
					P: 0.0000134, Tau: -0.848, N: 15, Method: "gonum",
				},
				Sen: trend.SenResult{
					Slope: -0.0167, SlopePerDecade: -0.167, Intercept: 34.4,
					CILower: -0.021, CIUpper: -0.012, Method: "theil_sen",
				},
				Autocorr:    trend.AutocorrDiagnostic{Lag1: 0.62, Band: trend.AutocorrStrong, Significant: true},
				Prewhitened: false,
			},
			{
				Fraction:   "border",
				Status:     trend.StatusInsufficientData,
				StatusNote: "4 valid observations, need 10",
				N:          4,
				Removed:    11,
				MannKendall: trend.MKResult{
					Trend: trend.TrendNone, S: math.NaN(), VarS: math.NaN(),
					Z: math.NaN(), P: math.NaN(), Tau: math.NaN(), N: 4, Method: "gonum",
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
				SuccessfulIterations:  997,
				SlopeMedian:           -0.0165,
				SlopeCILower:          -0.0214,
				SlopeCIUpper:          -0.0119,
				SlopeStdDev:           0.0024,
				PMean:                 0.0008,
				PCILower:              0.00001,
				PCIUpper:              0.006,
				SignificantProportion: 0.996,
			},
		},
	}
}

// eqFloat treats two NaNs as equal.
func eqFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	run := sampleRun()
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := store.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}

	if loaded.Source != run.Source {
		t.Errorf("source: expected %q, got %q", run.Source, loaded.Source)
	}
	if !loaded.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at: expected %v, got %v", run.StartedAt, loaded.StartedAt)
	}
	if len(loaded.Results) != len(run.Results) {
		t.Fatalf("expected %d results, got %d", len(run.Results), len(loaded.Results))
	}

	for i, want := range run.Results {
		got := loaded.Results[i]
		if got.Fraction != want.Fraction || got.Status != want.Status {
			t.Errorf("result %d: fraction/status mismatch: %+v", i, got)
		}
		if got.N != want.N || got.Removed != want.Removed {
			t.Errorf("result %d: counts mismatch: n=%d removed=%d", i, got.N, got.Removed)
		}
		if got.MannKendall.Trend != want.MannKendall.Trend {
			t.Errorf("result %d: trend %q != %q", i, got.MannKendall.Trend, want.MannKendall.Trend)
		}
		if !eqFloat(got.MannKendall.P, want.MannKendall.P) {
			t.Errorf("result %d: p %v != %v", i, got.MannKendall.P, want.MannKendall.P)
		}
		if !eqFloat(got.Sen.Slope, want.Sen.Slope) || got.Sen.Method != want.Sen.Method {
			t.Errorf("result %d: sen mismatch: %+v", i, got.Sen)
		}
		if got.Autocorr.Significant != want.Autocorr.Significant {
			t.Errorf("result %d: autocorr significance mismatch", i)
		}
	}

	boot, ok := loaded.Bootstrap["pure_ice"]
	if !ok {
		t.Fatal("expected bootstrap record for pure_ice")
	}
	if boot.SuccessfulIterations != 997 {
		t.Errorf("expected 997 successful iterations, got %d", boot.SuccessfulIterations)
	}
	if !eqFloat(boot.SignificantProportion, 0.996) {
		t.Errorf("expected significant proportion 0.996, got %v", boot.SignificantProportion)
	}
}

func TestSQLiteStoreLoadLatest(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	older := sampleRun()
	older.ID = "run-older"
	older.StartedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := sampleRun()
	newer.ID = "run-newer"
	newer.StartedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range []*trend.Run{older, newer} {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%s): %v", r.ID, err)
		}
	}

	latest, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if latest.ID != "run-newer" {
		t.Errorf("expected run-newer, got %s", latest.ID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.msgpack")
	run := sampleRun()
	run.Bootstrap["pure_ice"] = trend.BootstrapResult{
		RequestedIterations:  100,
		SuccessfulIterations: 3,
		Slopes:               []float64{-0.016, -0.017, -0.015},
		PValues:              []float64{0.001, 0.002, 0.004},
		SlopeMedian:          -0.016,
	}

	if err := SaveSnapshot(path, run); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.ID != run.ID || len(loaded.Results) != len(run.Results) {
		t.Errorf("run identity mismatch: %+v", loaded)
	}
	boot := loaded.Bootstrap["pure_ice"]
	if len(boot.Slopes) != 3 || boot.Slopes[1] != -0.017 {
		t.Errorf("expected per-iteration slopes preserved, got %v", boot.Slopes)
	}
}
