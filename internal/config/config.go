package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Input files.
	RawPath     string `mapstructure:"raw_path" yaml:"raw_path"`
	CensusPath  string `mapstructure:"census_path" yaml:"census_path"`
	CensusSheet string `mapstructure:"census_sheet" yaml:"census_sheet"`

	// Cache and output locations.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
	OutDir   string `mapstructure:"out_dir" yaml:"out_dir"`

	// Cleaning.
	TimingThreshold float64 `mapstructure:"timing_threshold" yaml:"timing_threshold"`

	// Estimation.
	Seed             int64   `mapstructure:"seed" yaml:"seed"`
	Imputations      int     `mapstructure:"imputations" yaml:"imputations"`
	PosteriorDraws   int     `mapstructure:"posterior_draws" yaml:"posterior_draws"`
	BootstrapIters   int     `mapstructure:"bootstrap_iters" yaml:"bootstrap_iters"`
	BootstrapWorkers int     `mapstructure:"bootstrap_workers" yaml:"bootstrap_workers"`
	DisplayThreshold float64 `mapstructure:"display_threshold" yaml:"display_threshold"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.surveygraph/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".surveygraph")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVEYGRAPH")
	v.AutomaticEnv()

	// Defaults match the documented analysis.
	v.SetDefault("raw_path", "data/raw_survey.csv")
	v.SetDefault("census_path", "data/census_population.xlsx")
	v.SetDefault("census_sheet", "population")
	v.SetDefault("cache_dir", ".surveygraph-cache")
	v.SetDefault("out_dir", "results")
	v.SetDefault("timing_threshold", 2.0)
	v.SetDefault("seed", 20210412)
	v.SetDefault("imputations", 5)
	v.SetDefault("posterior_draws", 200)
	v.SetDefault("bootstrap_iters", 250)
	v.SetDefault("bootstrap_workers", 0)
	v.SetDefault("display_threshold", 0.05)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".surveygraph")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
