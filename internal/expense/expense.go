// Package expense holds the expense record model and its CSV ingestion.
package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReviewStatus is the submitted expense's review state. Values outside the
// known set are kept as StatusUnknown and flagged downstream; they are never
// silently treated as reviewed.
type ReviewStatus string

const (
	StatusOK                 ReviewStatus = "OK"
	StatusNotRequired        ReviewStatus = "NOT_REQUIRED"
	StatusWaitingForReviewer ReviewStatus = "WAITING_FOR_REVIEWER"
	StatusUnknown            ReviewStatus = "UNKNOWN"
)

// ParseStatus maps a raw status value onto the known set. The second return
// is false when the value was not recognized.
func ParseStatus(s string) (ReviewStatus, bool) {
	switch ReviewStatus(s) {
	case StatusOK, StatusNotRequired, StatusWaitingForReviewer:
		return ReviewStatus(s), true
	}
	return StatusUnknown, false
}

type PurchaseType string

const (
	PurchaseOnline  PurchaseType = "ONLINE"
	PurchaseInStore PurchaseType = "IN_STORE"
)

func ParsePurchaseType(s string) (PurchaseType, bool) {
	switch PurchaseType(s) {
	case PurchaseOnline, PurchaseInStore:
		return PurchaseType(s), true
	}
	return "", false
}

// Record is one submitted expense. It is built once at ingestion and treated
// as immutable by every pipeline stage.
type Record struct {
	ExpenseID string
	TeamID    string
	CreatedAt time.Time
	Amount    decimal.Decimal
	Currency  string
	Status    ReviewStatus
	RawStatus string
	Purchase  PurchaseType
	Country   string
	Category  string
	HasNote   bool
}

// SchemaError reports a required field absent or malformed in the raw input.
// It is fatal: the run aborts without partial output.
type SchemaError struct {
	Row    int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at row %d, field %q: %s", e.Row, e.Field, e.Reason)
}
