package expense

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"expensereview/internal/diag"
)

// createdAtLayouts are tried in order; a value no layout accepts means the
// record is dropped with a diagnostic rather than failing the run.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type csvRow struct {
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

// Load reads and validates the expense CSV at path.
func Load(path string) ([]Record, []diag.Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses expense records from r. Schema violations are fatal; records
// whose creation timestamp survives neither parse attempt are dropped with a
// diagnostic, per the backfill-then-drop policy.
func Read(r io.Reader) ([]Record, []diag.Diagnostic, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("parse records csv: %w", err)
	}

	records := make([]Record, 0, len(rows))
	var diags []diag.Diagnostic
	for i, row := range rows {
		// data row number, counting the header
		rowNum := i + 2
		rec, drop, err := buildRecord(rowNum, row)
		if err != nil {
			return nil, nil, err
		}
		if drop != nil {
			diags = append(diags, *drop)
			continue
		}
		records = append(records, rec)
	}
	return records, diags, nil
}

func buildRecord(rowNum int, row csvRow) (Record, *diag.Diagnostic, error) {
	if row.ExpenseID == "" {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "expense_id", Reason: "missing"}
	}
	if row.TeamID == "" {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "team_id", Reason: "missing"}
	}
	if row.Currency == "" {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "currency", Reason: "missing"}
	}
	if row.Category == "" {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "category", Reason: "missing"}
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "amount", Reason: fmt.Sprintf("not a number: %q", row.Amount)}
	}
	if amount.IsNegative() {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "amount", Reason: "negative"}
	}

	purchase, ok := ParsePurchaseType(row.Purchase)
	if !ok {
		return Record{}, nil, &SchemaError{Row: rowNum, Field: "purchase_type", Reason: fmt.Sprintf("unknown value %q", row.Purchase)}
	}

	hasNote := false
	if row.HasNote != "" {
		hasNote, err = strconv.ParseBool(row.HasNote)
		if err != nil {
			return Record{}, nil, &SchemaError{Row: rowNum, Field: "has_note", Reason: fmt.Sprintf("not a boolean: %q", row.HasNote)}
		}
	}

	createdAt, ok := parseCreatedAt(row.CreatedAt)
	if !ok {
		d := diag.Diagnostic{
			Kind:     diag.DroppedRecord,
			RecordID: row.ExpenseID,
			Message:  fmt.Sprintf("created_at %q unparseable after fallback, record dropped", row.CreatedAt),
		}
		return Record{}, &d, nil
	}

	status, _ := ParseStatus(row.Status)
	return Record{
		ExpenseID: row.ExpenseID,
		TeamID:    row.TeamID,
		CreatedAt: createdAt,
		Amount:    amount,
		Currency:  row.Currency,
		Status:    status,
		RawStatus: row.Status,
		Purchase:  purchase,
		Country:   row.Country,
		Category:  row.Category,
		HasNote:   hasNote,
	}, nil, nil
}

func parseCreatedAt(s string) (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
