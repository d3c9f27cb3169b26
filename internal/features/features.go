// Package features derives the model inputs and the review label from
// normalized expense records.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"expensereview/internal/diag"
	"expensereview/internal/expense"
)

// FutureTimestampError means a record was created after the analysis cutoff.
// That is an input error and fails the run; it is never clamped to zero days.
type FutureTimestampError struct {
	RecordID string
	Created  time.Time
	Cutoff   time.Time
}

func (e *FutureTimestampError) Error() string {
	return fmt.Sprintf("record %s created %s, after analysis cutoff %s",
		e.RecordID, e.Created.Format(time.RFC3339), e.Cutoff.Format(time.RFC3339))
}

// Vector is one record's feature row plus its label. Values align with
// Names().
type Vector struct {
	ExpenseID string
	Category  string
	Values    []float64
	Label     int
}

var names = []string{
	"normalized_amount",
	"days_since_creation",
	"team_code",
	"country_code",
	"currency_code",
	"category_code",
	"purchase_code",
	"has_note",
}

// Names returns the feature column names in vector order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Deriver turns records into feature vectors against a fixed analysis
// cutoff. Encoders are memoized per Deriver, i.e. per run.
type Deriver struct {
	cutoff     time.Time
	teams      *Encoder
	countries  *Encoder
	currencies *Encoder
	categories *Encoder
	purchases  *Encoder
}

func NewDeriver(cutoff time.Time) *Deriver {
	return &Deriver{
		cutoff:     cutoff.UTC(),
		teams:      NewEncoder(),
		countries:  NewEncoder(),
		currencies: NewEncoder(),
		categories: NewEncoder(),
		purchases:  NewEncoder(),
	}
}

// DaysSince returns whole days between created and the cutoff, floored.
// created after the cutoff is a FutureTimestampError.
func (d *Deriver) DaysSince(recordID string, created time.Time) (int, error) {
	if created.After(d.cutoff) {
		return 0, &FutureTimestampError{RecordID: recordID, Created: created, Cutoff: d.cutoff}
	}
	return int(math.Floor(d.cutoff.Sub(created).Hours() / 24)), nil
}

// Label maps the review status to the priority_to_review label: 1 iff the
// record is waiting for a reviewer. Every other status, known or not, maps
// to 0; unknown ones are reported, not swallowed.
func Label(status expense.ReviewStatus) int {
	switch status {
	case expense.StatusWaitingForReviewer:
		return 1
	case expense.StatusOK, expense.StatusNotRequired, expense.StatusUnknown:
		return 0
	}
	return 0
}

// Derive builds one vector per record. normalized must align with records
// and carry the reporting-currency amounts.
func (d *Deriver) Derive(records []expense.Record, normalized []decimal.Decimal) ([]Vector, []diag.Diagnostic, error) {
	if len(records) != len(normalized) {
		return nil, nil, fmt.Errorf("derive: %d records but %d normalized amounts", len(records), len(normalized))
	}
	vecs := make([]Vector, 0, len(records))
	var diags []diag.Diagnostic
	for i, rec := range records {
		days, err := d.DaysSince(rec.ExpenseID, rec.CreatedAt)
		if err != nil {
			return nil, nil, err
		}
		if rec.Status == expense.StatusUnknown {
			diags = append(diags, diag.Diagnostic{
				Kind:     diag.UnknownStatus,
				RecordID: rec.ExpenseID,
				Category: rec.Category,
				Message:  fmt.Sprintf("status %q not recognized, labeled non-priority", rec.RawStatus),
			})
		}
		vecs = append(vecs, Vector{
			ExpenseID: rec.ExpenseID,
			Category:  rec.Category,
			Values: []float64{
				normalized[i].InexactFloat64(),
				float64(days),
				float64(d.teams.Code(rec.TeamID)),
				float64(d.countries.Code(rec.Country)),
				float64(d.currencies.Code(rec.Currency)),
				float64(d.categories.Code(rec.Category)),
				float64(d.purchases.Code(string(rec.Purchase))),
				boolToFloat(rec.HasNote),
			},
			Label: Label(rec.Status),
		})
	}
	return vecs, diags, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
