package trend

// Config holds the tunable parameters for trend analysis. A zero Config is
// not usable; start from DefaultConfig and override.
type Config struct {
	// MinObservations is the smallest cleaned series length the Analyzer
	// will test.
	MinObservations int

	// Alpha is the two-sided significance level for trend labeling.
	Alpha float64

	// Autocorrelation band edges, informational only.
	AutocorrWeak     float64
	AutocorrModerate float64
	AutocorrStrong   float64

	// AutocorrCutoff is the |lag-1| value above which serial correlation
	// is flagged significant and pre-whitening is recommended.
	AutocorrCutoff float64

	// Prewhiten makes the Analyzer test the AR(1)-whitened series instead
	// of the raw one. Off by default; the basic path always uses the raw
	// series even when autocorrelation is flagged.
	Prewhiten bool

	// UseManualTester forces the arithmetic normal-CDF fallback instead of
	// the gonum-backed tester.
	UseManualTester bool
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		MinObservations:  10,
		Alpha:            0.05,
		AutocorrWeak:     0.1,
		AutocorrModerate: 0.3,
		AutocorrStrong:   0.5,
		AutocorrCutoff:   0.5,
	}
}

// BootstrapConfig holds the parameters for the bootstrap CI engine.
type BootstrapConfig struct {
	// Iterations is the number of resamples to draw.
	Iterations int

	// MinObservations below which the bootstrap is skipped entirely.
	MinObservations int

	// Alpha is the per-iteration significance level used for the
	// significant-proportion statistic.
	Alpha float64

	// Seed fixes the resampling RNG when nonzero; zero seeds from the
	// clock.
	Seed int64
}

// DefaultBootstrapConfig returns the standard bootstrap parameters.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Iterations:      1000,
		MinObservations: 10,
		Alpha:           0.05,
	}
}
