package rates

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestConvertReportingCurrencyIsIdentity(t *testing.T) {
	// no EUR series exists, so a lookup would fail: identity must not look up
	table := NewTable("EUR", []Entry{
		{Date: day("2023-06-01"), Currency: "USD", Rate: decimal.RequireFromString("0.92")},
	})

	for _, amount := range []string{"0", "50", "9501", "123.45"} {
		got, err := table.Convert(decimal.RequireFromString(amount), "EUR", day("2019-01-01"))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(amount)), "EUR→EUR must be unchanged")
	}
}

func TestConvertAppliesRate(t *testing.T) {
	table := NewTable("EUR", []Entry{
		{Date: day("2023-06-01"), Currency: "USD", Rate: decimal.RequireFromString("0.92")},
	})
	got, err := table.Convert(decimal.NewFromInt(100), "USD", day("2023-06-01"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("92")), "got %s", got)
}

func TestRateOnForwardFill(t *testing.T) {
	table := NewTable("EUR", []Entry{
		{Date: day("2023-06-01"), Currency: "USD", Rate: decimal.RequireFromString("0.92")},
		{Date: day("2023-06-05"), Currency: "USD", Rate: decimal.RequireFromString("0.95")},
	})

	tests := []struct {
		name string
		on   string
		want string
	}{
		{"exact day", "2023-06-01", "0.92"},
		{"gap inherits prior day", "2023-06-03", "0.92"},
		{"next quote takes over", "2023-06-05", "0.95"},
		{"after last quote", "2023-07-20", "0.95"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := table.RateOn("USD", day(tc.on))
			require.NoError(t, err)
			assert.True(t, rate.Equal(decimal.RequireFromString(tc.want)), "got %s", rate)
		})
	}
}

func TestRateOnNoBackwardFill(t *testing.T) {
	table := NewTable("EUR", []Entry{
		{Date: day("2023-06-10"), Currency: "USD", Rate: decimal.RequireFromString("0.92")},
	})
	_, err := table.RateOn("USD", day("2023-06-09"))
	var mre *MissingRateError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, "USD", mre.Currency)
}

func TestRateOnUnknownCurrency(t *testing.T) {
	table := NewTable("EUR", nil)
	_, err := table.Convert(decimal.NewFromInt(10), "CHF", day("2023-06-01"))
	var mre *MissingRateError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "CHF", mre.Currency)
	assert.Contains(t, mre.Error(), "CHF")
}

func TestReportingCurrencyNeverStored(t *testing.T) {
	table := NewTable("EUR", []Entry{
		{Date: day("2023-06-01"), Currency: "EUR", Rate: decimal.RequireFromString("2")},
	})
	got, err := table.Convert(decimal.NewFromInt(7), "EUR", day("2023-06-01"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestReadCSV(t *testing.T) {
	csv := strings.Join([]string{
		"date,currency,rate",
		"2023-06-01,USD,0.92",
		"2023-06-02,GBP,1.16",
	}, "\n")
	table, err := Read(strings.NewReader(csv), "EUR")
	require.NoError(t, err)

	rate, err := table.RateOn("USD", day("2023-06-04"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.92")))
}

func TestReadCSVBadRow(t *testing.T) {
	csv := "date,currency,rate\nnot-a-date,USD,0.92\n"
	_, err := Read(strings.NewReader(csv), "EUR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad date")
}
