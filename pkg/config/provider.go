// Package config defines the toolkit configuration model and its providers.
// Configuration can come from a YAML file or a SQLite database; both
// implement ConfigProvider and produce the same ConfigData.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataset() (*DatasetData, error)
	GetTrend() (*TrendData, error)
	GetBootstrap() (*BootstrapData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset   DatasetData   `json:"dataset" yaml:"dataset"`
	Trend     TrendData     `json:"trend" yaml:"trend"`
	Bootstrap BootstrapData `json:"bootstrap" yaml:"bootstrap"`
	Storage   StorageData   `json:"storage,omitempty" yaml:"storage,omitempty"`
	Report    ReportData    `json:"report,omitempty" yaml:"report,omitempty"`
	Server    *ServerData   `json:"server,omitempty" yaml:"server,omitempty"`
}

// DatasetData describes the albedo CSV export to analyze.
type DatasetData struct {
	Path string `json:"path" yaml:"path"`

	// DateColumn names the observation date column; DateFormat is its Go
	// reference layout. When DecimalYearColumn is set it takes precedence
	// and no date parsing happens.
	DateColumn        string `json:"date_column,omitempty" yaml:"date_column,omitempty"`
	DateFormat        string `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	DecimalYearColumn string `json:"decimal_year_column,omitempty" yaml:"decimal_year_column,omitempty"`

	// Fractions maps glacier-fraction class names to their CSV columns,
	// in analysis order.
	Fractions []FractionData `json:"fractions" yaml:"fractions"`
}

// FractionData binds one glacier-fraction class to a CSV column.
type FractionData struct {
	Name   string `json:"name" yaml:"name"`
	Column string `json:"column" yaml:"column"`
}

// TrendData holds the trend analysis parameters.
type TrendData struct {
	MinObservations  int     `json:"min_observations,omitempty" yaml:"min_observations,omitempty"`
	Alpha            float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	AutocorrWeak     float64 `json:"autocorr_weak,omitempty" yaml:"autocorr_weak,omitempty"`
	AutocorrModerate float64 `json:"autocorr_moderate,omitempty" yaml:"autocorr_moderate,omitempty"`
	AutocorrStrong   float64 `json:"autocorr_strong,omitempty" yaml:"autocorr_strong,omitempty"`
	AutocorrCutoff   float64 `json:"autocorr_cutoff,omitempty" yaml:"autocorr_cutoff,omitempty"`
	Prewhiten        bool    `json:"prewhiten,omitempty" yaml:"prewhiten,omitempty"`
	ManualTester     bool    `json:"manual_tester,omitempty" yaml:"manual_tester,omitempty"`
}

// BootstrapData holds the bootstrap engine parameters.
type BootstrapData struct {
	Enabled         bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Iterations      int   `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	MinObservations int   `json:"min_observations,omitempty" yaml:"min_observations,omitempty"`
	Seed            int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// StorageData holds the configuration for result persistence backends
type StorageData struct {
	SQLite   *SQLiteData   `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres *PostgresData `json:"postgres,omitempty" yaml:"postgres,omitempty"`
	Snapshot *SnapshotData `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type PostgresData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// SnapshotData configures the msgpack snapshot of a full analysis run.
type SnapshotData struct {
	Path string `json:"path" yaml:"path"`
}

// ReportData configures generated reports.
type ReportData struct {
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Text      bool   `json:"text,omitempty" yaml:"text,omitempty"`
	CSV       bool   `json:"csv,omitempty" yaml:"csv,omitempty"`
	Charts    bool   `json:"charts,omitempty" yaml:"charts,omitempty"`
}

// ServerData configures the optional results dashboard API.
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// DefaultFractions is the standard glacier-fraction classification, ordered
// from glacier margin to interior.
func DefaultFractions() []FractionData {
	return []FractionData{
		{Name: "border", Column: "albedo_border"},
		{Name: "mixed_low", Column: "albedo_mixed_low"},
		{Name: "mixed_high", Column: "albedo_mixed_high"},
		{Name: "mostly_ice", Column: "albedo_mostly_ice"},
		{Name: "pure_ice", Column: "albedo_pure_ice"},
	}
}

// ApplyDefaults fills zero-valued fields with standard analysis parameters.
func (c *ConfigData) ApplyDefaults() {
	if c.Dataset.DateColumn == "" && c.Dataset.DecimalYearColumn == "" {
		c.Dataset.DateColumn = "date"
	}
	if c.Dataset.DateFormat == "" {
		c.Dataset.DateFormat = "2006-01-02"
	}
	if len(c.Dataset.Fractions) == 0 {
		c.Dataset.Fractions = DefaultFractions()
	}

	if c.Trend.MinObservations == 0 {
		c.Trend.MinObservations = 10
	}
	if c.Trend.Alpha == 0 {
		c.Trend.Alpha = 0.05
	}
	if c.Trend.AutocorrWeak == 0 {
		c.Trend.AutocorrWeak = 0.1
	}
	if c.Trend.AutocorrModerate == 0 {
		c.Trend.AutocorrModerate = 0.3
	}
	if c.Trend.AutocorrStrong == 0 {
		c.Trend.AutocorrStrong = 0.5
	}
	if c.Trend.AutocorrCutoff == 0 {
		c.Trend.AutocorrCutoff = 0.5
	}

	if c.Bootstrap.Iterations == 0 {
		c.Bootstrap.Iterations = 1000
	}
	if c.Bootstrap.MinObservations == 0 {
		c.Bootstrap.MinObservations = 10
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
}

// FractionNames returns the configured class names in analysis order.
func (d *DatasetData) FractionNames() []string {
	names := make([]string, len(d.Fractions))
	for i, f := range d.Fractions {
		names[i] = f.Name
	}
	return names
}
