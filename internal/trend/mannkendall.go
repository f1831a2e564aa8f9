package trend

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tester computes a Mann-Kendall test. Two implementations exist: one backed
// by gonum's normal distribution and a manual arithmetic fallback. The
// variant is chosen once at Analyzer construction, not per call.
type Tester interface {
	// Test runs a two-sided Mann-Kendall test at significance level alpha.
	Test(values []float64, alpha float64) MKResult

	// Name identifies the implementation.
	Name() string
}

// NewTester selects a Mann-Kendall implementation. The manual tester exists
// so results can be cross-checked without the distribution library and as a
// fallback when the caller wants pure arithmetic.
func NewTester(manual bool) Tester {
	if manual {
		return manualTester{}
	}
	return gonumTester{}
}

// MannKendall runs the default (gonum-backed) test at alpha.
func MannKendall(values []float64, alpha float64) MKResult {
	return gonumTester{}.Test(values, alpha)
}

// mkCore computes the S statistic and its tie-corrected variance. Both
// testers share it; they differ only in the normal CDF used for the p-value.
func mkCore(values []float64) (s, varS float64) {
	n := len(values)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			diff := values[j] - values[i]
			switch {
			case diff > 0:
				s++
			case diff < 0:
				s--
			}
		}
	}

	// Tie correction: each group of t tied values removes t(t-1)(2t+5)
	// from the numerator.
	counts := make(map[float64]int, n)
	for _, v := range values {
		counts[v]++
	}
	tieTerm := 0.0
	for _, t := range counts {
		if t > 1 {
			tf := float64(t)
			tieTerm += tf * (tf - 1) * (2*tf + 5)
		}
	}

	nf := float64(n)
	varS = (nf*(nf-1)*(2*nf+5) - tieTerm) / 18.0
	return s, varS
}

// mkZScore applies the continuity correction to S.
func mkZScore(s, varS float64) float64 {
	if varS <= 0 {
		return 0
	}
	sigma := math.Sqrt(varS)
	switch {
	case s > 0:
		return (s - 1) / sigma
	case s < 0:
		return (s + 1) / sigma
	default:
		return 0
	}
}

func mkAssemble(values []float64, alpha float64, method string, pvalue func(z float64) float64) MKResult {
	n := len(values)
	if n < 3 {
		return nanMK(n, method)
	}

	s, varS := mkCore(values)
	z := mkZScore(s, varS)

	var p float64
	if varS <= 0 {
		// All observations tied; no evidence either way.
		p = 1.0
	} else {
		p = pvalue(z)
	}

	tau := s / (float64(n) * float64(n-1) / 2.0)

	trend := TrendNone
	if p < alpha {
		if s > 0 {
			trend = TrendIncreasing
		} else if s < 0 {
			trend = TrendDecreasing
		}
	}

	return MKResult{
		Trend:  trend,
		S:      s,
		VarS:   varS,
		Z:      z,
		P:      p,
		Tau:    tau,
		N:      n,
		Method: method,
	}
}

// gonumTester computes the p-value from gonum's standard normal CDF.
type gonumTester struct{}

func (gonumTester) Name() string { return "gonum" }

func (gonumTester) Test(values []float64, alpha float64) MKResult {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return mkAssemble(values, alpha, "gonum", func(z float64) float64 {
		return 2 * (1 - norm.CDF(math.Abs(z)))
	})
}

// manualTester computes the p-value from the complementary error function,
// needing nothing beyond the math package. Sign conventions match the gonum
// tester exactly.
type manualTester struct{}

func (manualTester) Name() string { return "manual" }

func (manualTester) Test(values []float64, alpha float64) MKResult {
	return mkAssemble(values, alpha, "manual", func(z float64) float64 {
		return math.Erfc(math.Abs(z) / math.Sqrt2)
	})
}
