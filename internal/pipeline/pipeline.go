// Package pipeline wires the stages together: normalize, derive, segment,
// train, score, decide. Data flows strictly forward; every stage consumes an
// immutable view of the previous stage's output.
package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expensereview/internal/diag"
	"expensereview/internal/expense"
	"expensereview/internal/features"
	"expensereview/internal/policy"
	"expensereview/internal/rates"
	"expensereview/internal/scorer"
	"expensereview/internal/segment"
)

type Options struct {
	// Cutoff is the analysis instant day counts are measured against.
	Cutoff time.Time
	Scorer scorer.Options
	Policy policy.Policy
}

// Row is the externally observable result for one input record.
type Row struct {
	ExpenseID        string          `csv:"expense_id" json:"expense_id"`
	TeamID           string          `csv:"team_id" json:"team_id"`
	Category         string          `csv:"category" json:"category"`
	NormalizedAmount decimal.Decimal `csv:"normalized_amount" json:"normalized_amount"`
	Label            int             `csv:"priority_to_review" json:"priority_to_review"`
	Score            float64         `csv:"score" json:"score"`
	Decision         policy.Decision `csv:"decision" json:"decision"`
}

type SegmentReport struct {
	Category   string            `yaml:"category" json:"category"`
	Records    int               `yaml:"records" json:"records"`
	Positives  int               `yaml:"positives" json:"positives"`
	Constant   bool              `yaml:"constant_fallback" json:"constant_fallback"`
	Best       scorer.Config     `yaml:"best_config" json:"best_config"`
	CVAccuracy float64           `yaml:"cv_accuracy" json:"cv_accuracy"`
	TrainSize  int               `yaml:"train_size" json:"train_size"`
	TestSize   int               `yaml:"test_size" json:"test_size"`
	Eval       scorer.Evaluation `yaml:"evaluation" json:"evaluation"`
}

type Result struct {
	Rows        []Row
	Segments    []SegmentReport
	Scorers     []*scorer.SegmentScorer
	Diagnostics []diag.Diagnostic
}

// Run executes the full pipeline over an in-memory dataset. Fatal errors
// (schema, missing rate, future timestamp) abort with record context; all
// non-fatal conditions come back in Result.Diagnostics.
func Run(records []expense.Record, table *rates.Table, opts Options) (*Result, error) {
	normalized := make([]decimal.Decimal, len(records))
	for i, rec := range records {
		amt, err := table.Convert(rec.Amount, rec.Currency, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("normalize record %s: %w", rec.ExpenseID, err)
		}
		normalized[i] = amt
	}

	deriver := features.NewDeriver(opts.Cutoff)
	vecs, diags, err := deriver.Derive(records, normalized)
	if err != nil {
		return nil, err
	}

	segs := segment.Partition(vecs)

	res := &Result{Diagnostics: diags}
	scores := make(map[string]float64, len(vecs))
	for _, seg := range segs {
		sc, sdiags, err := scorer.Train(seg, opts.Scorer)
		if err != nil {
			return nil, err
		}
		res.Diagnostics = append(res.Diagnostics, sdiags...)
		res.Scorers = append(res.Scorers, sc)
		res.Segments = append(res.Segments, SegmentReport{
			Category:   seg.Category,
			Records:    len(seg.Vectors),
			Positives:  seg.Positives(),
			Constant:   sc.Constant,
			Best:       sc.Best,
			CVAccuracy: sc.CVScore,
			TrainSize:  sc.TrainSize,
			TestSize:   sc.TestSize,
		})
		res.Segments[len(res.Segments)-1].Eval = sc.Eval

		X := make([][]float64, len(seg.Vectors))
		for i, v := range seg.Vectors {
			X[i] = v.Values
		}
		for i, p := range sc.Score(X) {
			scores[seg.Vectors[i].ExpenseID] = p
		}
	}

	res.Rows = make([]Row, 0, len(vecs))
	for i, v := range vecs {
		score := scores[v.ExpenseID]
		res.Rows = append(res.Rows, Row{
			ExpenseID:        v.ExpenseID,
			TeamID:           records[i].TeamID,
			Category:         v.Category,
			NormalizedAmount: normalized[i],
			Label:            v.Label,
			Score:            score,
			Decision:         opts.Policy.Decide(v.Category, score),
		})
	}
	return res, nil
}
