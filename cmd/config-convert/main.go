// Command config-convert converts a YAML configuration file into the SQLite
// configuration backend.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/glacioclim/albedotrend/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	fmt.Printf("Loading YAML configuration...\n")
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	configData, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  Loaded dataset %s with %d fraction classes\n",
		configData.Dataset.Path, len(configData.Dataset.Fractions))

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Creating SQLite database...\n")
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	if err := sqliteProvider.InitSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing SQLite schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading configuration into SQLite database...\n")
	if err := sqliteProvider.SaveConfig(configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion complete: %s\n", *sqliteFile)
}

func printConfigSummary(cfg *config.ConfigData) {
	fmt.Println("Configuration summary:")
	fmt.Printf("  Dataset: %s\n", cfg.Dataset.Path)
	for _, f := range cfg.Dataset.Fractions {
		fmt.Printf("    %s <- column %s\n", f.Name, f.Column)
	}
	fmt.Printf("  Trend: min_observations=%d alpha=%g prewhiten=%t\n",
		cfg.Trend.MinObservations, cfg.Trend.Alpha, cfg.Trend.Prewhiten)
	fmt.Printf("  Bootstrap: enabled=%t iterations=%d\n",
		cfg.Bootstrap.Enabled, cfg.Bootstrap.Iterations)
	if cfg.Server != nil {
		fmt.Printf("  Server: %s:%d\n", cfg.Server.ListenAddr, cfg.Server.Port)
	}
}
