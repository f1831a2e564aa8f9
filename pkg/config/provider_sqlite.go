package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

const configSchema = `
CREATE TABLE IF NOT EXISTS dataset (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	path TEXT NOT NULL,
	date_column TEXT NOT NULL DEFAULT '',
	date_format TEXT NOT NULL DEFAULT '',
	decimal_year_column TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS fractions (
	sort_order INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	column_name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS trend_params (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	min_observations INTEGER NOT NULL DEFAULT 0,
	alpha REAL NOT NULL DEFAULT 0,
	autocorr_weak REAL NOT NULL DEFAULT 0,
	autocorr_moderate REAL NOT NULL DEFAULT 0,
	autocorr_strong REAL NOT NULL DEFAULT 0,
	autocorr_cutoff REAL NOT NULL DEFAULT 0,
	prewhiten INTEGER NOT NULL DEFAULT 0,
	manual_tester INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS bootstrap_params (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	enabled INTEGER NOT NULL DEFAULT 0,
	iterations INTEGER NOT NULL DEFAULT 0,
	min_observations INTEGER NOT NULL DEFAULT 0,
	seed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS storage (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	sqlite_path TEXT NOT NULL DEFAULT '',
	postgres_dsn TEXT NOT NULL DEFAULT '',
	snapshot_path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS report (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	output_dir TEXT NOT NULL DEFAULT '',
	text INTEGER NOT NULL DEFAULT 0,
	csv INTEGER NOT NULL DEFAULT 0,
	charts INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS server (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	listen_addr TEXT NOT NULL DEFAULT '',
	port INTEGER NOT NULL DEFAULT 0
);
`

// InitSchema creates the configuration tables if they do not exist.
func (s *SQLiteProvider) InitSchema() error {
	if _, err := s.db.Exec(configSchema); err != nil {
		return fmt.Errorf("failed to create config schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from the SQLite database and
// applies defaults to unset fields.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	dataset, err := s.GetDataset()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset config: %w", err)
	}
	config.Dataset = *dataset

	trend, err := s.GetTrend()
	if err != nil {
		return nil, fmt.Errorf("failed to load trend config: %w", err)
	}
	config.Trend = *trend

	bootstrap, err := s.GetBootstrap()
	if err != nil {
		return nil, fmt.Errorf("failed to load bootstrap config: %w", err)
	}
	config.Bootstrap = *bootstrap

	if err := s.loadStorage(config); err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	if err := s.loadReport(config); err != nil {
		return nil, fmt.Errorf("failed to load report config: %w", err)
	}
	if err := s.loadServer(config); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	config.ApplyDefaults()
	return config, nil
}

// GetDataset returns the dataset configuration from the database
func (s *SQLiteProvider) GetDataset() (*DatasetData, error) {
	dataset := &DatasetData{}
	row := s.db.QueryRow(`SELECT path, date_column, date_format, decimal_year_column FROM dataset WHERE id = 1`)
	if err := row.Scan(&dataset.Path, &dataset.DateColumn, &dataset.DateFormat, &dataset.DecimalYearColumn); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT name, column_name FROM fractions ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f FractionData
		if err := rows.Scan(&f.Name, &f.Column); err != nil {
			return nil, err
		}
		dataset.Fractions = append(dataset.Fractions, f)
	}
	return dataset, rows.Err()
}

// GetTrend returns the trend parameters from the database
func (s *SQLiteProvider) GetTrend() (*TrendData, error) {
	trend := &TrendData{}
	row := s.db.QueryRow(`
		SELECT min_observations, alpha, autocorr_weak, autocorr_moderate,
		       autocorr_strong, autocorr_cutoff, prewhiten, manual_tester
		FROM trend_params WHERE id = 1`)
	err := row.Scan(&trend.MinObservations, &trend.Alpha, &trend.AutocorrWeak,
		&trend.AutocorrModerate, &trend.AutocorrStrong, &trend.AutocorrCutoff,
		&trend.Prewhiten, &trend.ManualTester)
	if err == sql.ErrNoRows {
		return trend, nil
	}
	return trend, err
}

// GetBootstrap returns the bootstrap parameters from the database
func (s *SQLiteProvider) GetBootstrap() (*BootstrapData, error) {
	bootstrap := &BootstrapData{}
	row := s.db.QueryRow(`SELECT enabled, iterations, min_observations, seed FROM bootstrap_params WHERE id = 1`)
	err := row.Scan(&bootstrap.Enabled, &bootstrap.Iterations, &bootstrap.MinObservations, &bootstrap.Seed)
	if err == sql.ErrNoRows {
		return bootstrap, nil
	}
	return bootstrap, err
}

func (s *SQLiteProvider) loadStorage(config *ConfigData) error {
	var sqlitePath, postgresDSN, snapshotPath string
	row := s.db.QueryRow(`SELECT sqlite_path, postgres_dsn, snapshot_path FROM storage WHERE id = 1`)
	err := row.Scan(&sqlitePath, &postgresDSN, &snapshotPath)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if sqlitePath != "" {
		config.Storage.SQLite = &SQLiteData{Path: sqlitePath}
	}
	if postgresDSN != "" {
		config.Storage.Postgres = &PostgresData{ConnectionString: postgresDSN}
	}
	if snapshotPath != "" {
		config.Storage.Snapshot = &SnapshotData{Path: snapshotPath}
	}
	return nil
}

func (s *SQLiteProvider) loadReport(config *ConfigData) error {
	row := s.db.QueryRow(`SELECT output_dir, text, csv, charts FROM report WHERE id = 1`)
	err := row.Scan(&config.Report.OutputDir, &config.Report.Text, &config.Report.CSV, &config.Report.Charts)
	if err == sql.ErrNoRows {
		return nil
	}
	return err
}

func (s *SQLiteProvider) loadServer(config *ConfigData) error {
	var addr string
	var port int
	row := s.db.QueryRow(`SELECT listen_addr, port FROM server WHERE id = 1`)
	err := row.Scan(&addr, &port)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if port != 0 {
		config.Server = &ServerData{ListenAddr: addr, Port: port}
	}
	return nil
}

// SaveConfig writes a complete configuration into the database, replacing
// any existing one. Used by the config-convert tool.
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	if err := s.InitSchema(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM dataset", "DELETE FROM fractions", "DELETE FROM trend_params",
		"DELETE FROM bootstrap_params", "DELETE FROM storage", "DELETE FROM report",
		"DELETE FROM server",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT INTO dataset (id, path, date_column, date_format, decimal_year_column) VALUES (1, ?, ?, ?, ?)`,
		config.Dataset.Path, config.Dataset.DateColumn, config.Dataset.DateFormat, config.Dataset.DecimalYearColumn)
	if err != nil {
		return err
	}

	for i, f := range config.Dataset.Fractions {
		if _, err := tx.Exec(`INSERT INTO fractions (sort_order, name, column_name) VALUES (?, ?, ?)`, i, f.Name, f.Column); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT INTO trend_params (id, min_observations, alpha, autocorr_weak, autocorr_moderate,
		autocorr_strong, autocorr_cutoff, prewhiten, manual_tester) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		config.Trend.MinObservations, config.Trend.Alpha, config.Trend.AutocorrWeak,
		config.Trend.AutocorrModerate, config.Trend.AutocorrStrong, config.Trend.AutocorrCutoff,
		config.Trend.Prewhiten, config.Trend.ManualTester)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO bootstrap_params (id, enabled, iterations, min_observations, seed) VALUES (1, ?, ?, ?, ?)`,
		config.Bootstrap.Enabled, config.Bootstrap.Iterations, config.Bootstrap.MinObservations, config.Bootstrap.Seed)
	if err != nil {
		return err
	}

	var sqlitePath, postgresDSN, snapshotPath string
	if config.Storage.SQLite != nil {
		sqlitePath = config.Storage.SQLite.Path
	}
	if config.Storage.Postgres != nil {
		postgresDSN = config.Storage.Postgres.ConnectionString
	}
	if config.Storage.Snapshot != nil {
		snapshotPath = config.Storage.Snapshot.Path
	}
	_, err = tx.Exec(`INSERT INTO storage (id, sqlite_path, postgres_dsn, snapshot_path) VALUES (1, ?, ?, ?)`,
		sqlitePath, postgresDSN, snapshotPath)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO report (id, output_dir, text, csv, charts) VALUES (1, ?, ?, ?, ?)`,
		config.Report.OutputDir, config.Report.Text, config.Report.CSV, config.Report.Charts)
	if err != nil {
		return err
	}

	if config.Server != nil {
		_, err = tx.Exec(`INSERT INTO server (id, listen_addr, port) VALUES (1, ?, ?)`,
			config.Server.ListenAddr, config.Server.Port)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false; SQLite configurations can be written back.
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
