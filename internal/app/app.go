// Package app wires the analysis pipeline: dataset loading, per-fraction
// trend analysis, result persistence, report generation, and the optional
// dashboard server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/loader"
	"github.com/glacioclim/albedotrend/internal/log"
	"github.com/glacioclim/albedotrend/internal/report"
	"github.com/glacioclim/albedotrend/internal/server"
	"github.com/glacioclim/albedotrend/internal/storage"
	"github.com/glacioclim/albedotrend/internal/trend"
	"github.com/glacioclim/albedotrend/pkg/config"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	cfg.ApplyDefaults()
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the full pipeline. When the configuration enables the
// dashboard server, Run blocks serving results until a shutdown signal
// arrives; otherwise it returns after persistence and reporting.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ds, err := loader.New(a.cfg.Dataset, a.logger).Load()
	if err != nil {
		return err
	}
	log.Infof("loaded %d rows from %s", ds.Rows, ds.Source)

	analyzer := trend.NewAnalyzer(a.trendConfig(), a.logger)
	var boot *trend.BootstrapConfig
	if a.cfg.Bootstrap.Enabled {
		bc := a.bootstrapConfig()
		boot = &bc
	}

	run := analyzer.AnalyzeAll(ds.Source, a.cfg.Dataset.FractionNames(), ds.Fractions, boot)
	log.Infof("analysis run %s complete: %d fractions", run.ID, len(run.Results))

	if err := a.persist(run); err != nil {
		return err
	}
	if err := a.report(run, ds); err != nil {
		return err
	}

	if a.cfg.Server == nil {
		return nil
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			log.Info("shutdown signal received, stopping dashboard...")
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := server.New(*a.cfg.Server, run, ds.Fractions, a.logger)
	return srv.Run(ctx)
}

func (a *App) trendConfig() trend.Config {
	t := a.cfg.Trend
	return trend.Config{
		MinObservations:  t.MinObservations,
		Alpha:            t.Alpha,
		AutocorrWeak:     t.AutocorrWeak,
		AutocorrModerate: t.AutocorrModerate,
		AutocorrStrong:   t.AutocorrStrong,
		AutocorrCutoff:   t.AutocorrCutoff,
		Prewhiten:        t.Prewhiten,
		UseManualTester:  t.ManualTester,
	}
}

func (a *App) bootstrapConfig() trend.BootstrapConfig {
	b := a.cfg.Bootstrap
	return trend.BootstrapConfig{
		Iterations:      b.Iterations,
		MinObservations: b.MinObservations,
		Alpha:           a.cfg.Trend.Alpha,
		Seed:            b.Seed,
	}
}

// persist writes the run to every configured backend. Backend failures are
// errors; an empty storage section is fine.
func (a *App) persist(run *trend.Run) error {
	st := a.cfg.Storage

	if st.SQLite != nil {
		store, err := storage.NewSQLiteStore(st.SQLite.Path, a.logger)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		defer store.Close()
		if err := store.SaveRun(run); err != nil {
			return fmt.Errorf("saving run to sqlite: %w", err)
		}
		log.Infof("run saved to sqlite store %s", st.SQLite.Path)
	}

	if st.Postgres != nil {
		store, err := storage.NewPostgresStore(st.Postgres.ConnectionString, a.logger)
		if err != nil {
			return fmt.Errorf("opening postgres store: %w", err)
		}
		defer store.Close()
		if err := store.SaveRun(run); err != nil {
			return fmt.Errorf("saving run to postgres: %w", err)
		}
		log.Info("run saved to postgres store")
	}

	if st.Snapshot != nil {
		if err := storage.SaveSnapshot(st.Snapshot.Path, run); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		log.Infof("snapshot written to %s", st.Snapshot.Path)
	}

	return nil
}

// report writes the configured report artifacts under Report.OutputDir.
func (a *App) report(run *trend.Run, ds *loader.Dataset) error {
	rc := a.cfg.Report
	if !rc.Text && !rc.CSV && !rc.Charts {
		// Always give the operator something to read.
		report.WriteSummary(os.Stdout, run)
		return nil
	}

	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	if rc.Text {
		report.WriteSummary(os.Stdout, run)
		f, err := os.Create(filepath.Join(rc.OutputDir, "summary.txt"))
		if err != nil {
			return fmt.Errorf("creating summary report: %w", err)
		}
		report.WriteSummary(f, run)
		f.Close()
	}

	if rc.CSV {
		f, err := os.Create(filepath.Join(rc.OutputDir, "trend_results.csv"))
		if err != nil {
			return fmt.Errorf("creating csv report: %w", err)
		}
		if err := report.WriteCSV(f, run); err != nil {
			f.Close()
			return fmt.Errorf("writing csv report: %w", err)
		}
		f.Close()
	}

	if rc.Charts {
		f, err := os.Create(filepath.Join(rc.OutputDir, "charts.html"))
		if err != nil {
			return fmt.Errorf("creating chart report: %w", err)
		}
		if err := report.RenderHTML(f, run, ds.Fractions); err != nil {
			f.Close()
			return fmt.Errorf("rendering charts: %w", err)
		}
		f.Close()
	}

	log.Infof("reports written to %s", rc.OutputDir)
	return nil
}
