package trend

import (
	"math"
	"testing"
)

func TestMannKendallShortSeries(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{name: "empty", values: nil},
		{name: "single", values: []float64{0.8}},
		{name: "pair", values: []float64{0.8, 0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := MannKendall(tt.values, 0.05)
			if res.Trend != TrendNone {
				t.Errorf("expected no trend for n=%d, got %q", len(tt.values), res.Trend)
			}
			for field, v := range map[string]float64{
				"S": res.S, "VarS": res.VarS, "Z": res.Z, "P": res.P, "Tau": res.Tau,
			} {
				if !math.IsNaN(v) {
					t.Errorf("expected NaN %s for n=%d, got %v", field, len(tt.values), v)
				}
			}
		})
	}
}

func TestMannKendallMonotonic(t *testing.T) {
	n := 12
	increasing := make([]float64, n)
	decreasing := make([]float64, n)
	for i := 0; i < n; i++ {
		increasing[i] = 0.5 + 0.01*float64(i)
		decreasing[i] = 0.9 - 0.01*float64(i)
	}
	maxS := float64(n * (n - 1) / 2)

	up := MannKendall(increasing, 0.05)
	if up.S != maxS {
		t.Errorf("increasing series: expected S=%v, got %v", maxS, up.S)
	}
	if up.Trend != TrendIncreasing {
		t.Errorf("increasing series: expected increasing trend, got %q", up.Trend)
	}
	if up.P > 0.001 {
		t.Errorf("increasing series: expected p near 0, got %v", up.P)
	}
	if math.Abs(up.Tau-1.0) > 1e-12 {
		t.Errorf("increasing series: expected tau=1, got %v", up.Tau)
	}

	down := MannKendall(decreasing, 0.05)
	if down.S != -maxS {
		t.Errorf("decreasing series: expected S=%v, got %v", -maxS, down.S)
	}
	if down.Trend != TrendDecreasing {
		t.Errorf("decreasing series: expected decreasing trend, got %q", down.Trend)
	}
}

func TestMannKendallConstantSeries(t *testing.T) {
	values := []float64{0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75}
	res := MannKendall(values, 0.05)

	if res.S != 0 {
		t.Errorf("expected S=0, got %v", res.S)
	}
	if res.Z != 0 {
		t.Errorf("expected z=0, got %v", res.Z)
	}
	if res.P != 1.0 {
		t.Errorf("expected p=1.0, got %v", res.P)
	}
	if res.Trend != TrendNone {
		t.Errorf("expected no trend, got %q", res.Trend)
	}
}

func TestMannKendallTieCorrection(t *testing.T) {
	// Ties reduce the variance of S relative to the tie-free formula.
	tied := []float64{1, 2, 2, 3, 3, 3, 4, 5}
	res := MannKendall(tied, 0.05)

	n := float64(len(tied))
	untiedVar := n * (n - 1) * (2*n + 5) / 18.0
	if res.VarS >= untiedVar {
		t.Errorf("expected tie-corrected variance < %v, got %v", untiedVar, res.VarS)
	}
	if res.VarS <= 0 {
		t.Errorf("expected positive variance, got %v", res.VarS)
	}
}

func TestManualTesterMatchesGonum(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{name: "increasing", values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "decreasing", values: []float64{0.82, 0.80, 0.79, 0.77, 0.75, 0.74, 0.72, 0.70, 0.69, 0.67}},
		{name: "noisy", values: []float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 5}},
		{name: "with ties", values: []float64{1, 2, 2, 3, 3, 3, 4, 5, 5, 6}},
	}

	gonum := NewTester(false)
	manual := NewTester(true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gonum.Test(tt.values, 0.05)
			m := manual.Test(tt.values, 0.05)

			if g.S != m.S || g.VarS != m.VarS {
				t.Errorf("S/VarS mismatch: gonum (%v, %v) vs manual (%v, %v)", g.S, g.VarS, m.S, m.VarS)
			}
			if math.Abs(g.Z-m.Z) > 1e-12 {
				t.Errorf("z mismatch: %v vs %v", g.Z, m.Z)
			}
			if math.Abs(g.P-m.P) > 1e-9 {
				t.Errorf("p mismatch: %v vs %v", g.P, m.P)
			}
			if g.Trend != m.Trend {
				t.Errorf("trend mismatch: %q vs %q", g.Trend, m.Trend)
			}
		})
	}
}
