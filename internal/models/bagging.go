package models

import "math/rand"

// Bagging averages seeded full-feature trees over bootstrap resamples.
type Bagging struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	Seed               int64
	Trees              []*DecisionTree
}

func NewBagging(seed int64) *Bagging {
	return &Bagging{NEstimators: 30, MaxDepth: 6, MinSamples: 2, MaxThresholdsPerFe: 32, Seed: seed}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) Fit(X [][]float64, y []int) error {
	if bg.NEstimators <= 0 {
		bg.NEstimators = 30
	}
	n := len(X)
	rng := rand.New(rand.NewSource(bg.Seed))
	bg.Trees = make([]*DecisionTree, 0, bg.NEstimators)
	for k := 0; k < bg.NEstimators; k++ {
		Xb := make([][]float64, n)
		yb := make([]int, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			Xb[i] = X[j]
			yb[i] = y[j]
		}
		dt := NewDecisionTree()
		dt.MaxDepth = bg.MaxDepth
		dt.MinSamplesSplit = bg.MinSamples
		dt.MaxThresholdsPerFe = bg.MaxThresholdsPerFe
		if err := dt.Fit(Xb, yb); err != nil {
			return err
		}
		bg.Trees = append(bg.Trees, dt)
	}
	return nil
}

func (bg *Bagging) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range bg.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (bg *Bagging) PredictProba(X [][]float64) []float64 {
	return averageProba(bg.Trees, X)
}
