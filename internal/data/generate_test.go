package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensereview/internal/expense"
	"expensereview/internal/rates"
)

func TestGeneratedRecordsLoadCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, GenerateRecords(500, 1, "2023-07-01", path))

	records, diags, err := expense.Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 500)
	assert.Empty(t, diags, "generated records must not be dropped")

	positives := 0
	for _, rec := range records {
		assert.False(t, rec.Amount.IsNegative())
		assert.NotEqual(t, expense.StatusUnknown, rec.Status)
		if rec.Status == expense.StatusWaitingForReviewer {
			positives++
		}
	}
	// the review-waiting class stays a minority
	assert.Greater(t, positives, 0)
	assert.Less(t, positives, 100)
}

func TestGeneratedRatesLoadCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	require.NoError(t, GenerateRates(1, "EUR", "2023-07-01", path))

	_, err := rates.Load(path, "EUR")
	require.NoError(t, err)
}

func TestGenerateIsSeeded(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, GenerateRecords(50, 9, "2023-07-01", a))
	require.NoError(t, GenerateRecords(50, 9, "2023-07-01", b))

	ra, _, err := expense.Load(a)
	require.NoError(t, err)
	rb, _, err := expense.Load(b)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}
