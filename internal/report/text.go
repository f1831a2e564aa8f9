// Package report renders analysis runs as text tables, CSV exports, and
// HTML chart pages.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/glacioclim/albedotrend/internal/trend"
)

// fmtVal renders a float for display, mapping NaN to a placeholder.
func fmtVal(v float64, format string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

// WriteSummary renders the per-fraction trend table for a run.
func WriteSummary(w io.Writer, run *trend.Run) {
	fmt.Fprintf(w, "Albedo trend analysis: run %s\n", run.ID)
	fmt.Fprintf(w, "Source: %s    Started: %s\n\n", run.Source, run.StartedAt.Format("2006-01-02 15:04:05 MST"))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{
		"Fraction", "Status", "N", "Trend", "p-value", "Tau",
		"Sen slope/decade", "95% CI", "AC(1)",
	})

	for _, fr := range run.Results {
		acNote := fmtVal(fr.Autocorr.Lag1, "%.2f")
		if fr.Autocorr.Significant {
			acNote += " *"
		}
		ci := "n/a"
		if !math.IsNaN(fr.Sen.CILower) && !math.IsNaN(fr.Sen.CIUpper) {
			ci = fmt.Sprintf("[%.4f, %.4f]", fr.Sen.CILower*10, fr.Sen.CIUpper*10)
		}

		tbl.AppendRow(table.Row{
			fr.Fraction,
			string(fr.Status),
			fr.N,
			string(fr.MannKendall.Trend),
			fmtVal(fr.MannKendall.P, "%.4g"),
			fmtVal(fr.MannKendall.Tau, "%.3f"),
			fmtVal(fr.Sen.SlopePerDecade, "%.4f"),
			ci,
			acNote,
		})
	}
	tbl.Render()

	if len(run.Bootstrap) > 0 {
		fmt.Fprintln(w)
		writeBootstrapTable(w, run)
	}
	fmt.Fprintln(w, "\n* |lag-1 autocorrelation| above the configured cutoff")
}

func writeBootstrapTable(w io.Writer, run *trend.Run) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{
		"Fraction", "Iterations", "Slope median", "Slope 95% CI", "Significant %",
	})

	for _, fr := range run.Results {
		br, ok := run.Bootstrap[fr.Fraction]
		if !ok {
			continue
		}
		if br.Skipped {
			tbl.AppendRow(table.Row{fr.Fraction, "skipped (insufficient data)", "", "", ""})
			continue
		}
		tbl.AppendRow(table.Row{
			fr.Fraction,
			fmt.Sprintf("%d/%d", br.SuccessfulIterations, br.RequestedIterations),
			fmtVal(br.SlopeMedian, "%.5f"),
			fmt.Sprintf("[%s, %s]", fmtVal(br.SlopeCILower, "%.5f"), fmtVal(br.SlopeCIUpper, "%.5f")),
			fmtVal(br.SignificantProportion*100, "%.1f"),
		})
	}
	tbl.Render()
}
