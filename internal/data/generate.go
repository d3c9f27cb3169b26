// Package data generates synthetic expense and rate CSVs for demos and
// trainer dry runs.
package data

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
)

var categories = []string{"Lunch", "Meals & Drinks", "Travel", "Events", "Office Supplies"}
var countries = []string{"DE", "FR", "NL", "SE", "US", "GB"}
var currencies = []string{"EUR", "USD", "GBP", "SEK"}
var statuses = []string{"OK", "NOT_REQUIRED", "WAITING_FOR_REVIEWER"}

type recordRow struct {
	ExpenseID string `csv:"expense_id"`
	TeamID    string `csv:"team_id"`
	CreatedAt string `csv:"created_at"`
	Amount    string `csv:"amount"`
	Currency  string `csv:"currency"`
	Status    string `csv:"review_status"`
	Purchase  string `csv:"purchase_type"`
	Country   string `csv:"merchant_country"`
	Category  string `csv:"category"`
	HasNote   string `csv:"has_note"`
}

type rateRow struct {
	Date     string `csv:"date"`
	Currency string `csv:"currency"`
	Rate     string `csv:"rate"`
}

// GenerateRecords writes n synthetic expense records spanning the year
// ending at analysisDate (2006-01-02). Review-waiting records are a small
// minority so the label imbalance the scorer must surface is present.
func GenerateRecords(n int, seed int64, analysisDate, outPath string) error {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]recordRow, 0, n)
	for i := 0; i < n; i++ {
		cat := categories[rng.Intn(len(categories))]
		cur := currencies[rng.Intn(len(currencies))]
		amount := rng.Float64()*420 + 8
		if cat == "Travel" || cat == "Events" {
			amount *= 4
		}

		status := statuses[0]
		r := rng.Float64()
		switch {
		case r < 0.05:
			status = "WAITING_FOR_REVIEWER"
		case r < 0.35:
			status = "NOT_REQUIRED"
		}

		purchase := "IN_STORE"
		if rng.Float64() < 0.4 {
			purchase = "ONLINE"
		}

		day := rng.Intn(360) + 1
		createdAt := fmt.Sprintf("%sT%02d:%02d:00Z", shiftDate(analysisDate, -day), rng.Intn(24), rng.Intn(60))

		rows = append(rows, recordRow{
			ExpenseID: "E" + strconv.Itoa(1000000+i),
			TeamID:    "T" + strconv.Itoa(rng.Intn(120)),
			CreatedAt: createdAt,
			Amount:    strconv.FormatFloat(amount, 'f', 2, 64),
			Currency:  cur,
			Status:    status,
			Purchase:  purchase,
			Country:   countries[rng.Intn(len(countries))],
			Category:  cat,
			HasNote:   strconv.FormatBool(rng.Float64() < 0.3),
		})
	}
	return writeCSV(outPath, &rows)
}

// GenerateRates writes a daily rate series into the reporting currency for
// the year ending at analysisDate, with weekend-like gaps that the
// normalizer closes by forward-fill.
func GenerateRates(seed int64, reporting, analysisDate, outPath string) error {
	rng := rand.New(rand.NewSource(seed))
	base := map[string]float64{"USD": 0.92, "GBP": 1.16, "SEK": 0.088}
	var rows []rateRow
	for day := 366; day >= 0; day-- {
		date := shiftDate(analysisDate, -day)
		for _, cur := range currencies {
			if cur == reporting {
				continue
			}
			// ~2 in 7 days unquoted; the series start is always quoted
			// so forward-fill has an anchor
			if rng.Float64() < 2.0/7.0 && day != 366 {
				continue
			}
			b := base[cur]
			if b == 0 {
				b = 1
			}
			rate := b * (1 + (rng.Float64()-0.5)*0.04)
			rows = append(rows, rateRow{Date: date, Currency: cur, Rate: strconv.FormatFloat(rate, 'f', 6, 64)})
		}
	}
	return writeCSV(outPath, &rows)
}

func shiftDate(date string, days int) string {
	t, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	return t.AddDate(0, 0, days).Format("2006-01-02")
}

func writeCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}
