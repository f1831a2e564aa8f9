package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/glacioclim/albedotrend/internal/trend"
)

// WriteCSV exports one row per fraction result, suitable for downstream
// spreadsheet or R work.
func WriteCSV(w io.Writer, run *trend.Run) error {
	writer := csv.NewWriter(w)

	header := []string{
		"run_id", "fraction", "status", "n", "removed",
		"mk_trend", "mk_s", "mk_z", "mk_p", "mk_tau",
		"sen_slope", "sen_slope_decade", "sen_intercept", "sen_ci_lower", "sen_ci_upper",
		"autocorr_lag1", "autocorr_significant", "prewhitened",
		"boot_iterations", "boot_slope_median", "boot_slope_ci_lower", "boot_slope_ci_upper",
		"boot_significant_proportion",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, fr := range run.Results {
		row := []string{
			run.ID,
			fr.Fraction,
			string(fr.Status),
			strconv.Itoa(fr.N),
			strconv.Itoa(fr.Removed),
			string(fr.MannKendall.Trend),
			floatField(fr.MannKendall.S),
			floatField(fr.MannKendall.Z),
			floatField(fr.MannKendall.P),
			floatField(fr.MannKendall.Tau),
			floatField(fr.Sen.Slope),
			floatField(fr.Sen.SlopePerDecade),
			floatField(fr.Sen.Intercept),
			floatField(fr.Sen.CILower),
			floatField(fr.Sen.CIUpper),
			floatField(fr.Autocorr.Lag1),
			strconv.FormatBool(fr.Autocorr.Significant),
			strconv.FormatBool(fr.Prewhitened),
		}

		if br, ok := run.Bootstrap[fr.Fraction]; ok && !br.Skipped {
			row = append(row,
				strconv.Itoa(br.SuccessfulIterations),
				floatField(br.SlopeMedian),
				floatField(br.SlopeCILower),
				floatField(br.SlopeCIUpper),
				floatField(br.SignificantProportion),
			)
		} else {
			row = append(row, "", "", "", "", "")
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func floatField(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
