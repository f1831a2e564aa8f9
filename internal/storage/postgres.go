package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glacioclim/albedotrend/internal/log"
	"github.com/glacioclim/albedotrend/internal/trend"
)

// RunModel is the gorm model for an analysis run.
type RunModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	StartedAt time.Time `gorm:"column:started_at;index"`
	Source    string    `gorm:"column:source"`
}

// TableName specifies the table name for RunModel
func (RunModel) TableName() string {
	return "albedo_runs"
}

// FractionResultModel is the gorm model for one fraction's trend record.
type FractionResultModel struct {
	RunID    string `gorm:"primaryKey;column:run_id"`
	Fraction string `gorm:"primaryKey;column:fraction"`

	Status     string `gorm:"column:status;not null"`
	StatusNote string `gorm:"column:status_note"`
	N          int    `gorm:"column:n"`
	Removed    int    `gorm:"column:removed"`

	MKTrend  string  `gorm:"column:mk_trend"`
	MKS      float64 `gorm:"column:mk_s"`
	MKVarS   float64 `gorm:"column:mk_var_s"`
	MKZ      float64 `gorm:"column:mk_z"`
	MKP      float64 `gorm:"column:mk_p"`
	MKTau    float64 `gorm:"column:mk_tau"`
	MKMethod string  `gorm:"column:mk_method"`

	SenSlope       float64 `gorm:"column:sen_slope"`
	SenSlopeDecade float64 `gorm:"column:sen_slope_decade"`
	SenIntercept   float64 `gorm:"column:sen_intercept"`
	SenCILower     float64 `gorm:"column:sen_ci_lower"`
	SenCIUpper     float64 `gorm:"column:sen_ci_upper"`
	SenMethod      string  `gorm:"column:sen_method"`

	AutocorrLag1        float64 `gorm:"column:autocorr_lag1"`
	AutocorrBand        string  `gorm:"column:autocorr_band"`
	AutocorrSignificant bool    `gorm:"column:autocorr_significant"`
	Prewhitened         bool    `gorm:"column:prewhitened"`
}

// TableName specifies the table name for FractionResultModel
func (FractionResultModel) TableName() string {
	return "albedo_fraction_results"
}

// BootstrapResultModel is the gorm model for a bootstrap summary.
type BootstrapResultModel struct {
	RunID    string `gorm:"primaryKey;column:run_id"`
	Fraction string `gorm:"primaryKey;column:fraction"`

	Requested  int  `gorm:"column:requested"`
	Successful int  `gorm:"column:successful"`
	Skipped    bool `gorm:"column:skipped"`

	SlopeMedian           float64 `gorm:"column:slope_median"`
	SlopeCILower          float64 `gorm:"column:slope_ci_lower"`
	SlopeCIUpper          float64 `gorm:"column:slope_ci_upper"`
	SlopeStdDev           float64 `gorm:"column:slope_stddev"`
	PMean                 float64 `gorm:"column:p_mean"`
	PCILower              float64 `gorm:"column:p_ci_lower"`
	PCIUpper              float64 `gorm:"column:p_ci_upper"`
	SignificantProportion float64 `gorm:"column:significant_proportion"`
}

// TableName specifies the table name for BootstrapResultModel
func (BootstrapResultModel) TableName() string {
	return "albedo_bootstrap_results"
}

// PostgresStore writes analysis runs to a shared Postgres warehouse so runs
// from multiple workstations can be compared.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewPostgresStore connects to the warehouse and migrates the result tables.
func NewPostgresStore(dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Warn,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.AutoMigrate(&RunModel{}, &FractionResultModel{}, &BootstrapResultModel{}); err != nil {
		return nil, fmt.Errorf("migrating result tables: %w", err)
	}

	logger.Info("postgres results warehouse connected")
	return &PostgresStore{db: db, logger: logger}, nil
}

// SaveRun persists a complete analysis run.
func (p *PostgresStore) SaveRun(run *trend.Run) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&RunModel{ID: run.ID, StartedAt: run.StartedAt, Source: run.Source}).Error; err != nil {
			return err
		}

		for _, fr := range run.Results {
			model := fractionToModel(run.ID, fr)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}

		for fraction, br := range run.Bootstrap {
			model := bootstrapToModel(run.ID, fraction, br)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadRun retrieves a run by ID.
func (p *PostgresStore) LoadRun(id string) (*trend.Run, error) {
	var runModel RunModel
	if err := p.db.First(&runModel, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	run := &trend.Run{
		ID:        runModel.ID,
		StartedAt: runModel.StartedAt,
		Source:    runModel.Source,
		Bootstrap: make(map[string]trend.BootstrapResult),
	}

	var fractions []FractionResultModel
	if err := p.db.Where("run_id = ?", id).Find(&fractions).Error; err != nil {
		return nil, err
	}
	for _, m := range fractions {
		run.Results = append(run.Results, modelToFraction(m))
	}

	var boots []BootstrapResultModel
	if err := p.db.Where("run_id = ?", id).Find(&boots).Error; err != nil {
		return nil, err
	}
	for _, m := range boots {
		run.Bootstrap[m.Fraction] = modelToBootstrap(m)
	}

	return run, nil
}

// LoadLatest retrieves the most recently started run.
func (p *PostgresStore) LoadLatest() (*trend.Run, error) {
	var runModel RunModel
	if err := p.db.Order("started_at DESC").First(&runModel).Error; err != nil {
		return nil, fmt.Errorf("no runs stored: %w", err)
	}
	return p.LoadRun(runModel.ID)
}

// Close closes the underlying connection pool.
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fractionToModel(runID string, fr trend.FractionResult) FractionResultModel {
	return FractionResultModel{
		RunID:               runID,
		Fraction:            fr.Fraction,
		Status:              string(fr.Status),
		StatusNote:          fr.StatusNote,
		N:                   fr.N,
		Removed:             fr.Removed,
		MKTrend:             string(fr.MannKendall.Trend),
		MKS:                 fr.MannKendall.S,
		MKVarS:              fr.MannKendall.VarS,
		MKZ:                 fr.MannKendall.Z,
		MKP:                 fr.MannKendall.P,
		MKTau:               fr.MannKendall.Tau,
		MKMethod:            fr.MannKendall.Method,
		SenSlope:            fr.Sen.Slope,
		SenSlopeDecade:      fr.Sen.SlopePerDecade,
		SenIntercept:        fr.Sen.Intercept,
		SenCILower:          fr.Sen.CILower,
		SenCIUpper:          fr.Sen.CIUpper,
		SenMethod:           fr.Sen.Method,
		AutocorrLag1:        fr.Autocorr.Lag1,
		AutocorrBand:        string(fr.Autocorr.Band),
		AutocorrSignificant: fr.Autocorr.Significant,
		Prewhitened:         fr.Prewhitened,
	}
}

func modelToFraction(m FractionResultModel) trend.FractionResult {
	return trend.FractionResult{
		Fraction:   m.Fraction,
		Status:     trend.Status(m.Status),
		StatusNote: m.StatusNote,
		N:          m.N,
		Removed:    m.Removed,
		MannKendall: trend.MKResult{
			Trend:  trend.Trend(m.MKTrend),
			S:      m.MKS,
			VarS:   m.MKVarS,
			Z:      m.MKZ,
			P:      m.MKP,
			Tau:    m.MKTau,
			N:      m.N,
			Method: m.MKMethod,
		},
		Sen: trend.SenResult{
			Slope:          m.SenSlope,
			SlopePerDecade: m.SenSlopeDecade,
			Intercept:      m.SenIntercept,
			CILower:        m.SenCILower,
			CIUpper:        m.SenCIUpper,
			Method:         m.SenMethod,
		},
		Autocorr: trend.AutocorrDiagnostic{
			Lag1:        m.AutocorrLag1,
			Band:        trend.AutocorrBand(m.AutocorrBand),
			Significant: m.AutocorrSignificant,
		},
		Prewhitened: m.Prewhitened,
	}
}

func bootstrapToModel(runID, fraction string, br trend.BootstrapResult) BootstrapResultModel {
	return BootstrapResultModel{
		RunID:                 runID,
		Fraction:              fraction,
		Requested:             br.RequestedIterations,
		Successful:            br.SuccessfulIterations,
		Skipped:               br.Skipped,
		SlopeMedian:           br.SlopeMedian,
		SlopeCILower:          br.SlopeCILower,
		SlopeCIUpper:          br.SlopeCIUpper,
		SlopeStdDev:           br.SlopeStdDev,
		PMean:                 br.PMean,
		PCILower:              br.PCILower,
		PCIUpper:              br.PCIUpper,
		SignificantProportion: br.SignificantProportion,
	}
}

func modelToBootstrap(m BootstrapResultModel) trend.BootstrapResult {
	return trend.BootstrapResult{
		RequestedIterations:   m.Requested,
		SuccessfulIterations:  m.Successful,
		Skipped:               m.Skipped,
		SlopeMedian:           m.SlopeMedian,
		SlopeCILower:          m.SlopeCILower,
		SlopeCIUpper:          m.SlopeCIUpper,
		SlopeStdDev:           m.SlopeStdDev,
		PMean:                 m.PMean,
		PCILower:              m.PCILower,
		PCIUpper:              m.PCIUpper,
		SignificantProportion: m.SignificantProportion,
	}
}
