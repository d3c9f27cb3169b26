// Package scorer trains one binary classifier per category segment and
// emits probability-of-review scores with held-out evaluation.
package scorer

import (
	"fmt"
	"math/rand"

	"expensereview/internal/diag"
	"expensereview/internal/models"
	"expensereview/internal/segment"
)

// Options controls the per-segment training run. Identical options over
// identical input reproduce the same split, search and scores.
type Options struct {
	Algo         string
	Seed         int64
	TestFraction float64
	Folds        int
	MinSamples   int
	Grid         Grid
	RecallFloor  float64
}

func DefaultOptions() Options {
	return Options{
		Algo:         "gb",
		Seed:         42,
		TestFraction: 0.3,
		Folds:        3,
		MinSamples:   2,
		Grid:         DefaultGrid(),
		RecallFloor:  0.5,
	}
}

// SegmentScorer holds a segment's fitted model and its held-out evaluation.
type SegmentScorer struct {
	Category  string
	Model     models.Model
	Constant  bool
	Best      Config
	CVScore   float64
	Eval      Evaluation
	TrainSize int
	TestSize  int
}

// Score returns the probability of needing review for each feature row.
func (s *SegmentScorer) Score(X [][]float64) []float64 {
	return s.Model.PredictProba(X)
}

// Train fits the segment's classifier. A training split with fewer than two
// label classes cannot support one; the segment then degrades to the
// constant non-priority scorer with a warning, which is a normal control
// path, never an error.
func Train(seg segment.Segment, opts Options) (*SegmentScorer, []diag.Diagnostic, error) {
	n := len(seg.Vectors)
	if n == 0 {
		return nil, nil, fmt.Errorf("segment %q has no records", seg.Category)
	}

	X := make([][]float64, n)
	y := make([]int, n)
	for i, v := range seg.Vectors {
		X[i] = v.Values
		y[i] = v.Label
	}

	perm := rand.New(rand.NewSource(opts.Seed)).Perm(n)
	cut := n - int(opts.TestFraction*float64(n))
	trainX := make([][]float64, 0, cut)
	trainY := make([]int, 0, cut)
	testX := make([][]float64, 0, n-cut)
	testY := make([]int, 0, n-cut)
	for i, j := range perm {
		if i < cut {
			trainX = append(trainX, X[j])
			trainY = append(trainY, y[j])
		} else {
			testX = append(testX, X[j])
			testY = append(testY, y[j])
		}
	}

	s := &SegmentScorer{Category: seg.Category, TrainSize: len(trainY), TestSize: len(testY)}
	var diags []diag.Diagnostic

	if classes(trainY) < 2 {
		s.Model = &models.Constant{P: 0}
		s.Constant = true
		diags = append(diags, diag.Diagnostic{
			Kind:     diag.DegenerateSegment,
			Category: seg.Category,
			Message: fmt.Sprintf("training split has %d label class(es) over %d record(s), falling back to constant non-priority scorer",
				classes(trainY), len(trainY)),
		})
	} else {
		best, cvScore, err := searchBest(opts.Algo, opts.Grid, trainX, trainY, opts.Folds, opts.Seed, opts.MinSamples)
		if err != nil {
			return nil, nil, fmt.Errorf("segment %q: %w", seg.Category, err)
		}
		mdl, err := buildModel(opts.Algo, best, opts.Seed, opts.MinSamples)
		if err != nil {
			return nil, nil, err
		}
		if err := mdl.Fit(trainX, trainY); err != nil {
			return nil, nil, fmt.Errorf("segment %q: fit: %w", seg.Category, err)
		}
		s.Model = mdl
		s.Best = best
		s.CVScore = cvScore
	}

	if len(testY) > 0 {
		s.Eval = Evaluate(testY, s.Model.PredictProba(testX), 0.5)
	}
	diags = append(diags, evalDiagnostics(seg.Category, s.Eval, len(testY), opts.RecallFloor)...)
	return s, diags, nil
}

func evalDiagnostics(category string, ev Evaluation, testSize int, recallFloor float64) []diag.Diagnostic {
	var out []diag.Diagnostic
	report := func(name string, m Metric) {
		if !m.Computed {
			out = append(out, diag.Diagnostic{
				Kind:     diag.UndefinedMetric,
				Category: category,
				Message:  fmt.Sprintf("%s undefined on held-out split (%d records), reported as not computed", name, testSize),
			})
		}
	}
	report("accuracy", ev.Accuracy)
	report("precision", ev.Precision)
	report("recall", ev.Recall)
	report("f1", ev.F1)
	if ev.Recall.Computed && ev.Recall.Value < recallFloor {
		out = append(out, diag.Diagnostic{
			Kind:     diag.LowRecall,
			Category: category,
			Message:  fmt.Sprintf("positive-class recall %.4f below floor %.2f", ev.Recall.Value, recallFloor),
		})
	}
	return out
}

func classes(y []int) int {
	seen := map[int]bool{}
	for _, v := range y {
		seen[v] = true
	}
	return len(seen)
}
