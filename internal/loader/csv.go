// Package loader reads MODIS albedo CSV exports into per-fraction time
// series. Each export carries one date (or decimal-year) column plus one
// albedo column per glacier-fraction class.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/timeseries"
	"github.com/glacioclim/albedotrend/pkg/config"
)

// Dataset holds the loaded per-fraction series plus provenance.
type Dataset struct {
	Source    string
	Rows      int
	Fractions map[string]*timeseries.Series
}

// Loader reads albedo exports as described by the dataset configuration.
type Loader struct {
	cfg    config.DatasetData
	logger *zap.SugaredLogger
}

// New creates a Loader for the configured dataset.
func New(cfg config.DatasetData, logger *zap.SugaredLogger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// Load reads the configured CSV file.
func (l *Loader) Load() (*Dataset, error) {
	f, err := os.Open(l.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := l.LoadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.cfg.Path, err)
	}
	ds.Source = l.cfg.Path
	return ds, nil
}

// LoadFrom reads an albedo export from an io.Reader. Fraction columns
// missing from the header are logged and skipped rather than failing the
// load; the trend analyzer reports them as insufficient data.
func (l *Loader) LoadFrom(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	timeIdx, useDecimalYear, err := l.findTimeColumn(header)
	if err != nil {
		return nil, err
	}

	fractionIdx := make(map[string]int)
	for _, f := range l.cfg.Fractions {
		idx := columnIndex(header, f.Column)
		if idx < 0 {
			l.logger.Warnw("fraction column not found in dataset",
				"fraction", f.Name, "column", f.Column)
			continue
		}
		fractionIdx[f.Name] = idx
	}
	if len(fractionIdx) == 0 {
		return nil, fmt.Errorf("no configured fraction columns present in header %v", header)
	}

	years := []float64{}
	values := make(map[string][]float64, len(fractionIdx))
	for name := range fractionIdx {
		values[name] = []float64{}
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rows+2, err)
		}
		if timeIdx >= len(record) {
			continue
		}

		year, ok := l.parseTime(record[timeIdx], useDecimalYear)
		if !ok {
			l.logger.Debugw("skipping row with unparseable time", "row", rows+2, "value", record[timeIdx])
			continue
		}

		years = append(years, year)
		for name, idx := range fractionIdx {
			if idx >= len(record) {
				values[name] = append(values[name], math.NaN())
				continue
			}
			values[name] = append(values[name], parseValue(record[idx]))
		}
		rows++
	}

	ds := &Dataset{
		Rows:      rows,
		Fractions: make(map[string]*timeseries.Series, len(values)),
	}
	for name, vals := range values {
		s, err := timeseries.New(append([]float64(nil), years...), vals)
		if err != nil {
			return nil, err
		}
		ds.Fractions[name] = s
	}

	l.logger.Infow("dataset loaded", "rows", rows, "fractions", len(ds.Fractions))
	return ds, nil
}

func (l *Loader) findTimeColumn(header []string) (idx int, useDecimalYear bool, err error) {
	if l.cfg.DecimalYearColumn != "" {
		if idx = columnIndex(header, l.cfg.DecimalYearColumn); idx >= 0 {
			return idx, true, nil
		}
		return -1, false, fmt.Errorf("decimal year column %q not found", l.cfg.DecimalYearColumn)
	}
	if idx = columnIndex(header, l.cfg.DateColumn); idx >= 0 {
		return idx, false, nil
	}
	return -1, false, fmt.Errorf("date column %q not found", l.cfg.DateColumn)
}

func (l *Loader) parseTime(field string, useDecimalYear bool) (float64, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, false
	}
	if useDecimalYear {
		year, err := strconv.ParseFloat(field, 64)
		return year, err == nil
	}
	t, err := time.Parse(l.cfg.DateFormat, field)
	if err != nil {
		return 0, false
	}
	return timeseries.DecimalYear(t), true
}

// nan tokens produced by the upstream Earth Engine export
var nanTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

func parseValue(field string) float64 {
	field = strings.TrimSpace(strings.Trim(field, "\""))
	if nanTokens[field] {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.Trim(h, "\"")), name) {
			return i
		}
	}
	return -1
}
