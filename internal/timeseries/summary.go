package timeseries

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics for a cleaned series.
type Summary struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics over the series values.
// Non-finite values should be removed first (see Clean); an empty series
// yields an all-NaN summary with N=0.
func Summarize(s *Series) Summary {
	if s.Len() == 0 {
		return Summary{
			Mean:   math.NaN(),
			Median: math.NaN(),
			StdDev: math.NaN(),
			Min:    math.NaN(),
			Max:    math.NaN(),
		}
	}

	data := stats.Float64Data(s.Values)
	mean, _ := data.Mean()
	median, _ := data.Median()
	sd, _ := data.StandardDeviationSample()
	min, _ := data.Min()
	max, _ := data.Max()

	if s.Len() < 2 {
		sd = math.NaN()
	}

	return Summary{
		N:      s.Len(),
		Mean:   mean,
		Median: median,
		StdDev: sd,
		Min:    min,
		Max:    max,
	}
}
