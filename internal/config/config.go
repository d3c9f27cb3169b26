// Package config provides viper-based configuration: defaults, then an
// optional config.yaml, then EXPENSE_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"expensereview/internal/scorer"
)

type Config struct {
	ReportingCurrency string `mapstructure:"reporting_currency"`
	// AnalysisDate is the cutoff day counts are measured against,
	// formatted 2006-01-02. Empty means today (UTC).
	AnalysisDate string `mapstructure:"analysis_date"`

	Seed         int64   `mapstructure:"seed"`
	Algo         string  `mapstructure:"algo"`
	TestFraction float64 `mapstructure:"test_fraction"`
	CVFolds      int     `mapstructure:"cv_folds"`
	MinSamples   int     `mapstructure:"min_samples"`
	RecallFloor  float64 `mapstructure:"recall_floor"`

	Search scorer.Grid `mapstructure:"search"`

	Cutoff struct {
		Default     float64            `mapstructure:"default"`
		PerCategory map[string]float64 `mapstructure:"per_category"`
	} `mapstructure:"cutoff"`

	Data struct {
		Records string `mapstructure:"records"`
		Rates   string `mapstructure:"rates"`
		OutDir  string `mapstructure:"out_dir"`
	} `mapstructure:"data"`
}

// LoadEnv loads a .env file when present. Missing files are fine.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load builds the configuration from defaults, an optional config.yaml and
// the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.expensereview")

	v.SetEnvPrefix("EXPENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reporting_currency", "EUR")
	v.SetDefault("analysis_date", "")
	v.SetDefault("seed", 42)
	v.SetDefault("algo", "gb")
	v.SetDefault("test_fraction", 0.3)
	v.SetDefault("cv_folds", 3)
	v.SetDefault("min_samples", 2)
	v.SetDefault("recall_floor", 0.5)

	g := scorer.DefaultGrid()
	v.SetDefault("search.learning_rates", g.LearningRates)
	v.SetDefault("search.estimators", g.Estimators)
	v.SetDefault("search.depths", g.Depths)

	v.SetDefault("cutoff.default", 0.5)
	v.SetDefault("cutoff.per_category", map[string]float64{})

	v.SetDefault("data.records", "data/expenses.csv")
	v.SetDefault("data.rates", "data/rates.csv")
	v.SetDefault("data.out_dir", "out")
}

func validate(cfg *Config) error {
	if cfg.ReportingCurrency == "" {
		return fmt.Errorf("reporting_currency must be set")
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0,1), got %v", cfg.TestFraction)
	}
	if cfg.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", cfg.CVFolds)
	}
	switch cfg.Algo {
	case "gb", "rf", "bagging", "dt":
	default:
		return fmt.Errorf("algo must be one of gb|rf|bagging|dt, got %q", cfg.Algo)
	}
	if cfg.AnalysisDate != "" {
		if _, err := time.Parse("2006-01-02", cfg.AnalysisDate); err != nil {
			return fmt.Errorf("analysis_date: %w", err)
		}
	}
	return nil
}

// CutoffTime resolves the analysis cutoff instant: end of the configured
// analysis date, or now when unset.
func (c *Config) CutoffTime() time.Time {
	if c.AnalysisDate == "" {
		return time.Now().UTC()
	}
	day, _ := time.ParseInLocation("2006-01-02", c.AnalysisDate, time.UTC)
	return day.Add(24*time.Hour - time.Nanosecond)
}

// ScorerOptions maps the configuration onto per-segment training options.
func (c *Config) ScorerOptions() scorer.Options {
	return scorer.Options{
		Algo:         c.Algo,
		Seed:         c.Seed,
		TestFraction: c.TestFraction,
		Folds:        c.CVFolds,
		MinSamples:   c.MinSamples,
		Grid:         c.Search,
		RecallFloor:  c.RecallFloor,
	}
}
