package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
dataset:
  path: data/albedo_timeseries.csv
  date_column: date
  fractions:
    - name: border
      column: albedo_border
    - name: pure_ice
      column: albedo_pure_ice
trend:
  min_observations: 12
  alpha: 0.01
bootstrap:
  enabled: true
  iterations: 500
  seed: 42
storage:
  sqlite:
    path: results.db
report:
  output_dir: out
  charts: true
server:
  listen_addr: 127.0.0.1
  port: 8090
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLProviderLoad(t *testing.T) {
	provider := NewYAMLProvider(writeTempYAML(t, sampleYAML))
	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Dataset.Path != "data/albedo_timeseries.csv" {
		t.Errorf("unexpected dataset path %q", cfg.Dataset.Path)
	}
	if len(cfg.Dataset.Fractions) != 2 || cfg.Dataset.Fractions[1].Name != "pure_ice" {
		t.Errorf("unexpected fractions: %+v", cfg.Dataset.Fractions)
	}
	if cfg.Trend.MinObservations != 12 || cfg.Trend.Alpha != 0.01 {
		t.Errorf("trend overrides not applied: %+v", cfg.Trend)
	}
	if !cfg.Bootstrap.Enabled || cfg.Bootstrap.Iterations != 500 || cfg.Bootstrap.Seed != 42 {
		t.Errorf("bootstrap overrides not applied: %+v", cfg.Bootstrap)
	}
	if cfg.Storage.SQLite == nil || cfg.Storage.SQLite.Path != "results.db" {
		t.Errorf("storage not loaded: %+v", cfg.Storage)
	}
	if cfg.Server == nil || cfg.Server.Port != 8090 {
		t.Errorf("server not loaded: %+v", cfg.Server)
	}

	// Unset fields fall back to defaults.
	if cfg.Trend.AutocorrCutoff != 0.5 {
		t.Errorf("expected default autocorr cutoff 0.5, got %v", cfg.Trend.AutocorrCutoff)
	}
	if cfg.Dataset.DateFormat != "2006-01-02" {
		t.Errorf("expected default date format, got %q", cfg.Dataset.DateFormat)
	}
}

func TestYAMLProviderMissingPath(t *testing.T) {
	provider := NewYAMLProvider(writeTempYAML(t, "trend:\n  alpha: 0.05\n"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected error for missing dataset.path")
	}
}

func TestApplyDefaultsFractionSet(t *testing.T) {
	cfg := &ConfigData{}
	cfg.Dataset.Path = "x.csv"
	cfg.ApplyDefaults()

	names := cfg.Dataset.FractionNames()
	expected := []string{"border", "mixed_low", "mixed_high", "mostly_ice", "pure_ice"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d default fractions, got %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("fraction %d: expected %q, got %q", i, expected[i], names[i])
		}
	}
	if cfg.Trend.MinObservations != 10 || cfg.Bootstrap.Iterations != 1000 {
		t.Errorf("numeric defaults not applied: %+v %+v", cfg.Trend, cfg.Bootstrap)
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")

	writer, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}

	original := &ConfigData{}
	original.Dataset.Path = "data/albedo.csv"
	original.Dataset.DateColumn = "obs_date"
	original.Dataset.Fractions = []FractionData{
		{Name: "border", Column: "albedo_border"},
		{Name: "pure_ice", Column: "albedo_pure_ice"},
	}
	original.Trend.MinObservations = 15
	original.Bootstrap.Enabled = true
	original.Bootstrap.Iterations = 250
	original.Storage.Snapshot = &SnapshotData{Path: "run.msgpack"}
	original.Server = &ServerData{ListenAddr: "0.0.0.0", Port: 9000}

	if err := writer.SaveConfig(original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	reader, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	loaded, err := reader.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded.Dataset.Path != original.Dataset.Path {
		t.Errorf("dataset path: expected %q, got %q", original.Dataset.Path, loaded.Dataset.Path)
	}
	if len(loaded.Dataset.Fractions) != 2 || loaded.Dataset.Fractions[0].Name != "border" {
		t.Errorf("fractions: %+v", loaded.Dataset.Fractions)
	}
	if loaded.Trend.MinObservations != 15 {
		t.Errorf("expected min observations 15, got %d", loaded.Trend.MinObservations)
	}
	if !loaded.Bootstrap.Enabled || loaded.Bootstrap.Iterations != 250 {
		t.Errorf("bootstrap: %+v", loaded.Bootstrap)
	}
	if loaded.Storage.Snapshot == nil || loaded.Storage.Snapshot.Path != "run.msgpack" {
		t.Errorf("snapshot: %+v", loaded.Storage)
	}
	if loaded.Server == nil || loaded.Server.Port != 9000 {
		t.Errorf("server: %+v", loaded.Server)
	}
}
