// Package rates holds the daily exchange-rate table and the currency
// normalizer that converts expense amounts into the reporting currency.
package rates

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one quoted rate: on Date, 1 unit of Currency equals Rate units of
// the reporting currency.
type Entry struct {
	Date     time.Time
	Currency string
	Rate     decimal.Decimal
}

// MissingRateError means no rate exists for a currency on or before the
// needed date. It signals a configuration gap and is fatal for the run.
type MissingRateError struct {
	Currency string
	Date     time.Time
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no exchange rate for %s on or before %s", e.Currency, e.Date.Format("2006-01-02"))
}

type dayRate struct {
	day  time.Time
	rate decimal.Decimal
}

// Table maps (currency, calendar day) to a rate into the reporting currency.
// Gaps in a currency's series are closed by forward-fill at lookup time;
// there is no backward-fill. The table is read-only once built.
type Table struct {
	reporting string
	series    map[string][]dayRate
}

// NewTable builds a lookup table for the given reporting currency. Entries
// quoting the reporting currency itself are never stored: its rate is
// identically 1.
func NewTable(reporting string, entries []Entry) *Table {
	t := &Table{reporting: reporting, series: make(map[string][]dayRate)}
	for _, e := range entries {
		if e.Currency == reporting {
			continue
		}
		day := truncateDay(e.Date)
		t.series[e.Currency] = append(t.series[e.Currency], dayRate{day: day, rate: e.Rate})
	}
	for c := range t.series {
		s := t.series[c]
		sort.Slice(s, func(i, j int) bool { return s[i].day.Before(s[j].day) })
		// last quote of a day wins
		dedup := s[:0]
		for _, dr := range s {
			if len(dedup) > 0 && dedup[len(dedup)-1].day.Equal(dr.day) {
				dedup[len(dedup)-1] = dr
				continue
			}
			dedup = append(dedup, dr)
		}
		t.series[c] = dedup
	}
	return t
}

// Reporting returns the reporting currency code.
func (t *Table) Reporting() string { return t.reporting }

// RateOn returns the rate for currency on the given day, forward-filling
// from the most recent earlier day when the exact day has no quote.
func (t *Table) RateOn(currency string, date time.Time) (decimal.Decimal, error) {
	day := truncateDay(date)
	s := t.series[currency]
	// rightmost quote at or before day
	i := sort.Search(len(s), func(i int) bool { return s[i].day.After(day) })
	if i == 0 {
		return decimal.Zero, &MissingRateError{Currency: currency, Date: day}
	}
	return s[i-1].rate, nil
}

// Convert normalizes amount from currency into the reporting currency using
// the rate for the given date. The reporting currency is an identity and is
// never looked up.
func (t *Table) Convert(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	if currency == t.reporting {
		return amount, nil
	}
	rate, err := t.RateOn(currency, date)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
