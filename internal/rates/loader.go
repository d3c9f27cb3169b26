package rates

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type csvRate struct {
	Date     string `csv:"date"`
	Currency string `csv:"currency"`
	Rate     string `csv:"rate"`
}

// Load reads a rate CSV (date, currency, rate) and builds the table for the
// given reporting currency.
func Load(path, reporting string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rates: %w", err)
	}
	defer f.Close()
	return Read(f, reporting)
}

// Read parses rate entries from r.
func Read(r io.Reader, reporting string) (*Table, error) {
	var rows []csvRate
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse rates csv: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		day, err := time.ParseInLocation("2006-01-02", row.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("rates row %d: bad date %q: %w", i+2, row.Date, err)
		}
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil {
			return nil, fmt.Errorf("rates row %d: bad rate %q: %w", i+2, row.Rate, err)
		}
		if row.Currency == "" {
			return nil, fmt.Errorf("rates row %d: missing currency", i+2)
		}
		entries = append(entries, Entry{Date: day, Currency: row.Currency, Rate: rate})
	}
	return NewTable(reporting, entries), nil
}
