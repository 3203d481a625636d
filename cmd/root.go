package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/statlab-vienna/surveygraph/internal/config"
)

var (
	// Global flags (wired to config at load time)
	cfgFile       string
	flagRawPath   string
	flagCensus    string
	flagCacheDir  string
	flagOutDir    string
	flagSeed      int64
	flagTimingThr float64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "surveygraph",
	Short: "Survey cleaning, post-stratification and network estimation",
	Long: `surveygraph reproduces the statistical analysis of the health-behavior
survey: it cleans the raw questionnaire export, compares the sample against
census data, post-stratifies, and estimates a Gaussian copula graphical model
over the demographic and health-behavior variables.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.surveygraph/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRawPath, "raw", "", "raw survey export (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCensus, "census", "", "census workbook (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "artifact cache directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutDir, "out-dir", "", "output directory for tables and figures (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "random seed (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagTimingThr, "timing-threshold", 0, "inattention speed-index threshold (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("raw") && flagRawPath != "" {
		cfg.RawPath = flagRawPath
	}
	if f.Changed("census") && flagCensus != "" {
		cfg.CensusPath = flagCensus
	}
	if f.Changed("cache-dir") && flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if f.Changed("out-dir") && flagOutDir != "" {
		cfg.OutDir = flagOutDir
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("timing-threshold") && flagTimingThr > 0 {
		cfg.TimingThreshold = flagTimingThr
	}
}
