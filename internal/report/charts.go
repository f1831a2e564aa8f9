package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/glacioclim/albedotrend/internal/timeseries"
	"github.com/glacioclim/albedotrend/internal/trend"
)

const histogramBins = 30

// RenderHTML writes a self-contained HTML page with the exploratory charts
// for one run: per-fraction albedo series with the fitted Sen trend line, a
// slope-per-decade comparison, and bootstrap slope distributions.
func RenderHTML(w io.Writer, run *trend.Run, data map[string]*timeseries.Series) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Albedo trends: run %s", run.ID)

	for _, fr := range run.Results {
		series, ok := data[fr.Fraction]
		if !ok || series.Len() == 0 {
			continue
		}
		clean, _ := series.Clean()
		if clean.Len() == 0 {
			continue
		}
		page.AddCharts(fractionChart(fr, clean))
	}

	page.AddCharts(slopeComparisonChart(run))

	for _, fr := range run.Results {
		br, ok := run.Bootstrap[fr.Fraction]
		if !ok || br.Skipped || len(br.Slopes) == 0 {
			continue
		}
		page.AddCharts(bootstrapHistogram(fr.Fraction, br))
	}

	return page.Render(w)
}

// fractionChart plots one fraction's cleaned albedo series with the Sen
// trend line overlaid when the fit succeeded.
func fractionChart(fr trend.FractionResult, clean *timeseries.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s albedo", fr.Fraction),
			Subtitle: fractionSubtitle(fr),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Albedo", Scale: opts.Bool(true)}),
	)

	labels := make([]string, clean.Len())
	observed := make([]opts.LineData, clean.Len())
	for i := range clean.Values {
		labels[i] = fmt.Sprintf("%.2f", clean.Years[i])
		observed[i] = opts.LineData{Value: clean.Values[i]}
	}

	line.SetXAxis(labels)
	line.AddSeries("Observed", observed,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)

	if fr.Sen.Method == "theil_sen" && !math.IsNaN(fr.Sen.Slope) {
		fitted := make([]opts.LineData, clean.Len())
		for i, year := range clean.Years {
			fitted[i] = opts.LineData{Value: fr.Sen.Intercept + fr.Sen.Slope*year}
		}
		line.AddSeries("Sen trend", fitted,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	}

	return line
}

func fractionSubtitle(fr trend.FractionResult) string {
	if fr.Status != trend.StatusOK {
		return string(fr.Status)
	}
	return fmt.Sprintf("%s, p=%.4g, slope=%.4f/decade",
		fr.MannKendall.Trend, fr.MannKendall.P, fr.Sen.SlopePerDecade)
}

// slopeComparisonChart shows Sen slope per decade across fraction classes.
func slopeComparisonChart(run *trend.Run) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Sen slope by fraction class",
			Subtitle: "Albedo change per decade",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Slope / decade"}),
	)

	labels := make([]string, 0, len(run.Results))
	slopes := make([]opts.BarData, 0, len(run.Results))
	for _, fr := range run.Results {
		labels = append(labels, fr.Fraction)
		if math.IsNaN(fr.Sen.SlopePerDecade) {
			slopes = append(slopes, opts.BarData{Value: "-"})
			continue
		}
		slopes = append(slopes, opts.BarData{Value: fr.Sen.SlopePerDecade})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("Slope / decade", slopes)
	return bar
}

// bootstrapHistogram bins the bootstrap slope distribution for one fraction.
func bootstrapHistogram(fraction string, br trend.BootstrapResult) *charts.Bar {
	min, max := br.Slopes[0], br.Slopes[0]
	for _, v := range br.Slopes {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / histogramBins
	if width == 0 {
		width = 1
	}
	counts := make([]int, histogramBins)
	for _, v := range br.Slopes {
		bin := int((v - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	labels := make([]string, histogramBins)
	data := make([]opts.BarData, histogramBins)
	for i := range counts {
		labels[i] = fmt.Sprintf("%.4f", min+width*(float64(i)+0.5))
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s bootstrap slope distribution", fraction),
			Subtitle: fmt.Sprintf("%d iterations, %.1f%% significant",
				br.SuccessfulIterations, br.SignificantProportion*100),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sen slope"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Iterations", data)
	return bar
}
