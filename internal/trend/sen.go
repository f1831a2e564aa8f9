package trend

import (
	"math"
	"sort"
)

// SenSlope computes the Theil-Sen slope estimate for paired (year, value)
// observations, with a 95% confidence interval from the order-statistic
// method on the sorted pairwise slopes. Degenerate input never panics; it
// yields an all-NaN result tagged "failed" which downstream code treats as
// "result unavailable".
func SenSlope(years, values []float64) SenResult {
	n := len(values)
	if n < 2 || len(years) != n {
		return nanSen()
	}

	slopes := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dt := years[j] - years[i]
			if dt == 0 {
				continue
			}
			slopes = append(slopes, (values[j]-values[i])/dt)
		}
	}
	if len(slopes) == 0 {
		return nanSen()
	}

	sort.Float64s(slopes)
	slope := sortedMedian(slopes)

	// Intercept per Conover: median(y) - slope * median(t).
	intercept := median(values) - slope*median(years)

	lower, upper := senInterval(slopes, values)

	return SenResult{
		Slope:          slope,
		SlopePerDecade: slope * 10,
		Intercept:      intercept,
		CILower:        lower,
		CIUpper:        upper,
		Method:         "theil_sen",
	}
}

// senInterval derives the 95% CI ranks from the Mann-Kendall variance of S:
// C = z(0.975) * sqrt(Var(S)), M1 = (N-C)/2, M2 = (N+C)/2.
func senInterval(sortedSlopes, values []float64) (lower, upper float64) {
	const z975 = 1.959963984540054

	_, varS := mkCore(values)
	if varS <= 0 {
		m := sortedMedian(sortedSlopes)
		return m, m
	}

	nSlopes := float64(len(sortedSlopes))
	c := z975 * math.Sqrt(varS)
	m1 := (nSlopes - c) / 2.0
	m2 := (nSlopes + c) / 2.0

	lowIdx := clampIndex(int(math.Floor(m1)), len(sortedSlopes))
	highIdx := clampIndex(int(math.Ceil(m2))-1, len(sortedSlopes))
	if highIdx < lowIdx {
		highIdx = lowIdx
	}
	return sortedSlopes[lowIdx], sortedSlopes[highIdx]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// sortedMedian returns the median of an already-sorted slice.
func sortedMedian(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

func median(values []float64) float64 {
	tmp := make([]float64, len(values))
	copy(tmp, values)
	sort.Float64s(tmp)
	return sortedMedian(tmp)
}
