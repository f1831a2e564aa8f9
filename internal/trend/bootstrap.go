package trend

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// BootstrapResult summarizes an empirical resampling run for one series.
// The per-iteration arrays are kept so reports can plot the slope
// distribution; the record lives only for the duration of one analysis run.
type BootstrapResult struct {
	RequestedIterations  int
	SuccessfulIterations int
	Skipped              bool

	Slopes  []float64
	PValues []float64

	SlopeMedian  float64
	SlopeCILower float64 // 2.5th percentile
	SlopeCIUpper float64 // 97.5th percentile
	SlopeStdDev  float64

	PMean    float64
	PCILower float64
	PCIUpper float64

	// SignificantProportion is the fraction of successful iterations with
	// p below the configured alpha.
	SignificantProportion float64
}

// Bootstrap resamples (years, values) with replacement cfg.Iterations times,
// recomputing the Mann-Kendall p-value and Sen's slope on each resample, and
// summarizes the resulting distributions. Individual iteration failures are
// skipped silently. Inputs below cfg.MinObservations skip the bootstrap
// entirely and return a placeholder record with Skipped=true.
func Bootstrap(years, values []float64, cfg BootstrapConfig) BootstrapResult {
	n := len(values)
	res := BootstrapResult{
		RequestedIterations: cfg.Iterations,
		SlopeMedian:         math.NaN(),
		SlopeCILower:        math.NaN(),
		SlopeCIUpper:        math.NaN(),
		SlopeStdDev:         math.NaN(),
		PMean:               math.NaN(),
		PCILower:            math.NaN(),
		PCIUpper:            math.NaN(),
	}

	if n < cfg.MinObservations || len(years) != n {
		res.Skipped = true
		return res
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	tester := NewTester(false)
	indices := make([]int, n)
	resampledYears := make([]float64, n)
	resampledValues := make([]float64, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := 0; i < n; i++ {
			indices[i] = rng.Intn(n)
		}
		// The Mann-Kendall statistic depends on observation order, so the
		// resample must be restored to time order before testing.
		sort.Ints(indices)
		for i, idx := range indices {
			resampledYears[i] = years[idx]
			resampledValues[i] = values[idx]
		}

		mk := tester.Test(resampledValues, cfg.Alpha)
		sen := SenSlope(resampledYears, resampledValues)
		if math.IsNaN(mk.P) || math.IsNaN(sen.Slope) {
			// Degenerate resample (e.g. a single repeated index).
			continue
		}

		res.Slopes = append(res.Slopes, sen.Slope)
		res.PValues = append(res.PValues, mk.P)
	}

	res.SuccessfulIterations = len(res.Slopes)
	if res.SuccessfulIterations == 0 {
		return res
	}

	slopeData := stats.Float64Data(res.Slopes)
	pData := stats.Float64Data(res.PValues)

	res.SlopeMedian, _ = slopeData.Median()
	res.SlopeCILower = percentileOr(slopeData, 2.5, res.SlopeMedian)
	res.SlopeCIUpper = percentileOr(slopeData, 97.5, res.SlopeMedian)
	if sd, err := slopeData.StandardDeviation(); err == nil {
		res.SlopeStdDev = sd
	}

	res.PMean, _ = pData.Mean()
	res.PCILower = percentileOr(pData, 2.5, res.PMean)
	res.PCIUpper = percentileOr(pData, 97.5, res.PMean)

	significant := 0
	for _, p := range res.PValues {
		if p < cfg.Alpha {
			significant++
		}
	}
	res.SignificantProportion = float64(significant) / float64(res.SuccessfulIterations)

	return res
}

func percentileOr(data stats.Float64Data, pct, fallback float64) float64 {
	v, err := data.Percentile(pct)
	if err != nil {
		return fallback
	}
	return v
}
