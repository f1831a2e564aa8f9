package storage

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/glacioclim/albedotrend/internal/trend"
)

// SQLiteStore is the default local results database. Bootstrap records keep
// only their summary statistics here; the per-iteration arrays live in
// snapshots.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLiteStore opens (and if needed initializes) a results database.
func NewSQLiteStore(path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const resultsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS fraction_results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	fraction TEXT NOT NULL,
	status TEXT NOT NULL,
	status_note TEXT NOT NULL DEFAULT '',
	n INTEGER NOT NULL,
	removed INTEGER NOT NULL,
	mk_trend TEXT NOT NULL,
	mk_s REAL,
	mk_var_s REAL,
	mk_z REAL,
	mk_p REAL,
	mk_tau REAL,
	mk_method TEXT NOT NULL DEFAULT '',
	sen_slope REAL,
	sen_slope_decade REAL,
	sen_intercept REAL,
	sen_ci_lower REAL,
	sen_ci_upper REAL,
	sen_method TEXT NOT NULL DEFAULT '',
	autocorr_lag1 REAL,
	autocorr_band TEXT NOT NULL DEFAULT '',
	autocorr_significant INTEGER NOT NULL DEFAULT 0,
	prewhitened INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, fraction)
);
CREATE TABLE IF NOT EXISTS bootstrap_results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	fraction TEXT NOT NULL,
	requested INTEGER NOT NULL,
	successful INTEGER NOT NULL,
	skipped INTEGER NOT NULL DEFAULT 0,
	slope_median REAL,
	slope_ci_lower REAL,
	slope_ci_upper REAL,
	slope_stddev REAL,
	p_mean REAL,
	p_ci_lower REAL,
	p_ci_upper REAL,
	significant_proportion REAL,
	PRIMARY KEY (run_id, fraction)
);
`

func (s *SQLiteStore) initSchema() error {
	if _, err := s.db.Exec(resultsSchema); err != nil {
		return fmt.Errorf("failed to create results schema: %w", err)
	}
	return nil
}

// nullable maps NaN to NULL so the database distinguishes "not computed"
// from real values.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// SaveRun persists a complete analysis run in one transaction.
func (s *SQLiteStore) SaveRun(run *trend.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, started_at, source) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano), run.Source)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, fr := range run.Results {
		_, err = tx.Exec(`INSERT INTO fraction_results (
			run_id, fraction, status, status_note, n, removed,
			mk_trend, mk_s, mk_var_s, mk_z, mk_p, mk_tau, mk_method,
			sen_slope, sen_slope_decade, sen_intercept, sen_ci_lower, sen_ci_upper, sen_method,
			autocorr_lag1, autocorr_band, autocorr_significant, prewhitened
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, fr.Fraction, string(fr.Status), fr.StatusNote, fr.N, fr.Removed,
			string(fr.MannKendall.Trend), nullable(fr.MannKendall.S), nullable(fr.MannKendall.VarS),
			nullable(fr.MannKendall.Z), nullable(fr.MannKendall.P), nullable(fr.MannKendall.Tau),
			fr.MannKendall.Method,
			nullable(fr.Sen.Slope), nullable(fr.Sen.SlopePerDecade), nullable(fr.Sen.Intercept),
			nullable(fr.Sen.CILower), nullable(fr.Sen.CIUpper), fr.Sen.Method,
			nullable(fr.Autocorr.Lag1), string(fr.Autocorr.Band), fr.Autocorr.Significant,
			fr.Prewhitened)
		if err != nil {
			return fmt.Errorf("inserting fraction result %s: %w", fr.Fraction, err)
		}
	}

	for fraction, br := range run.Bootstrap {
		_, err = tx.Exec(`INSERT INTO bootstrap_results (
			run_id, fraction, requested, successful, skipped,
			slope_median, slope_ci_lower, slope_ci_upper, slope_stddev,
			p_mean, p_ci_lower, p_ci_upper, significant_proportion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, fraction, br.RequestedIterations, br.SuccessfulIterations, br.Skipped,
			nullable(br.SlopeMedian), nullable(br.SlopeCILower), nullable(br.SlopeCIUpper),
			nullable(br.SlopeStdDev), nullable(br.PMean), nullable(br.PCILower),
			nullable(br.PCIUpper), nullable(br.SignificantProportion))
		if err != nil {
			return fmt.Errorf("inserting bootstrap result %s: %w", fraction, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Infow("run saved", "run_id", run.ID, "fractions", len(run.Results))
	return nil
}

// LoadRun retrieves a run by ID.
func (s *SQLiteStore) LoadRun(id string) (*trend.Run, error) {
	run := &trend.Run{ID: id, Bootstrap: make(map[string]trend.BootstrapResult)}

	var startedAt string
	row := s.db.QueryRow(`SELECT started_at, source FROM runs WHERE id = ?`, id)
	if err := row.Scan(&startedAt, &run.Source); err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = t
	}

	if err := s.loadFractionResults(run); err != nil {
		return nil, err
	}
	if err := s.loadBootstrapResults(run); err != nil {
		return nil, err
	}
	return run, nil
}

// LoadLatest retrieves the most recently started run.
func (s *SQLiteStore) LoadLatest() (*trend.Run, error) {
	var id string
	row := s.db.QueryRow(`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`)
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("no runs stored: %w", err)
	}
	return s.LoadRun(id)
}

func (s *SQLiteStore) loadFractionResults(run *trend.Run) error {
	rows, err := s.db.Query(`SELECT
		fraction, status, status_note, n, removed,
		mk_trend, mk_s, mk_var_s, mk_z, mk_p, mk_tau, mk_method,
		sen_slope, sen_slope_decade, sen_intercept, sen_ci_lower, sen_ci_upper, sen_method,
		autocorr_lag1, autocorr_band, autocorr_significant, prewhitened
		FROM fraction_results WHERE run_id = ? ORDER BY rowid`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fr trend.FractionResult
		var status, mkTrend, band string
		var mkS, mkVarS, mkZ, mkP, mkTau sql.NullFloat64
		var senSlope, senDecade, senIntercept, senLower, senUpper, lag1 sql.NullFloat64

		err := rows.Scan(&fr.Fraction, &status, &fr.StatusNote, &fr.N, &fr.Removed,
			&mkTrend, &mkS, &mkVarS, &mkZ, &mkP, &mkTau, &fr.MannKendall.Method,
			&senSlope, &senDecade, &senIntercept, &senLower, &senUpper, &fr.Sen.Method,
			&lag1, &band, &fr.Autocorr.Significant, &fr.Prewhitened)
		if err != nil {
			return err
		}

		fr.Status = trend.Status(status)
		fr.MannKendall.Trend = trend.Trend(mkTrend)
		fr.MannKendall.S = fromNullable(mkS)
		fr.MannKendall.VarS = fromNullable(mkVarS)
		fr.MannKendall.Z = fromNullable(mkZ)
		fr.MannKendall.P = fromNullable(mkP)
		fr.MannKendall.Tau = fromNullable(mkTau)
		fr.MannKendall.N = fr.N
		fr.Sen.Slope = fromNullable(senSlope)
		fr.Sen.SlopePerDecade = fromNullable(senDecade)
		fr.Sen.Intercept = fromNullable(senIntercept)
		fr.Sen.CILower = fromNullable(senLower)
		fr.Sen.CIUpper = fromNullable(senUpper)
		fr.Autocorr.Lag1 = fromNullable(lag1)
		fr.Autocorr.Band = trend.AutocorrBand(band)

		run.Results = append(run.Results, fr)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadBootstrapResults(run *trend.Run) error {
	rows, err := s.db.Query(`SELECT
		fraction, requested, successful, skipped,
		slope_median, slope_ci_lower, slope_ci_upper, slope_stddev,
		p_mean, p_ci_lower, p_ci_upper, significant_proportion
		FROM bootstrap_results WHERE run_id = ?`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fraction string
		var br trend.BootstrapResult
		var median, lower, upper, stddev, pMean, pLower, pUpper, sig sql.NullFloat64

		err := rows.Scan(&fraction, &br.RequestedIterations, &br.SuccessfulIterations, &br.Skipped,
			&median, &lower, &upper, &stddev, &pMean, &pLower, &pUpper, &sig)
		if err != nil {
			return err
		}

		br.SlopeMedian = fromNullable(median)
		br.SlopeCILower = fromNullable(lower)
		br.SlopeCIUpper = fromNullable(upper)
		br.SlopeStdDev = fromNullable(stddev)
		br.PMean = fromNullable(pMean)
		br.PCILower = fromNullable(pLower)
		br.PCIUpper = fromNullable(pUpper)
		br.SignificantProportion = fromNullable(sig)

		run.Bootstrap[fraction] = br
	}
	return rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
