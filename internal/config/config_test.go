package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensereview/internal/policy"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.ReportingCurrency)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "gb", cfg.Algo)
	assert.Equal(t, 0.3, cfg.TestFraction)
	assert.Equal(t, 3, cfg.CVFolds)
	assert.Equal(t, 0.5, cfg.Cutoff.Default)
	assert.NotEmpty(t, cfg.Search.LearningRates)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXPENSE_REPORTING_CURRENCY", "USD")
	t.Setenv("EXPENSE_ALGO", "rf")
	t.Setenv("EXPENSE_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.ReportingCurrency)
	assert.Equal(t, "rf", cfg.Algo)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
reporting_currency: GBP
analysis_date: "2023-07-01"
cutoff:
  default: 0.6
  per_category:
    Events: 0.2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.ReportingCurrency)
	assert.Equal(t, 0.6, cfg.Cutoff.Default)
	// viper lowercases map keys: the configured override must still reach
	// the capitalized category through the policy
	pol := policy.New(cfg.Cutoff.Default, cfg.Cutoff.PerCategory)
	assert.Equal(t, 0.2, pol.Cutoff("Events"))
	assert.Equal(t, policy.Escalate, pol.Decide("Events", 0.3))
	assert.Equal(t, policy.AutoApprove, pol.Decide("Travel", 0.3))

	want := time.Date(2023, 7, 1, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, want, cfg.CutoffTime())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad algo", "EXPENSE_ALGO", "xgboost"},
		{"test fraction too big", "EXPENSE_TEST_FRACTION", "1.5"},
		{"too few folds", "EXPENSE_CV_FOLDS", "1"},
		{"bad analysis date", "EXPENSE_ANALYSIS_DATE", "June 1st"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestScorerOptions(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.ScorerOptions()
	assert.Equal(t, cfg.Seed, opts.Seed)
	assert.Equal(t, cfg.TestFraction, opts.TestFraction)
	assert.Equal(t, cfg.CVFolds, opts.Folds)
	assert.Equal(t, cfg.Search, opts.Grid)
}
