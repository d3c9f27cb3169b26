package models

import (
	"math"
	"math/rand"
)

// RandomForest bags seeded decision trees with sqrt-feature subsampling.
type RandomForest struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	Trees              []*DecisionTree
}

func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{NEstimators: 30, MaxDepth: 6, MinSamples: 2, MaxThresholdsPerFe: 32, Seed: seed}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if rf.NEstimators <= 0 {
		rf.NEstimators = 30
	}
	n := len(X)
	nFeats := len(X[0])
	if rf.MaxFeatures <= 0 {
		rf.MaxFeatures = int(math.Max(1, math.Sqrt(float64(nFeats))))
	}
	rng := rand.New(rand.NewSource(rf.Seed))
	rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
	for k := 0; k < rf.NEstimators; k++ {
		Xb := make([][]float64, n)
		yb := make([]int, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			Xb[i] = X[j]
			yb[i] = y[j]
		}
		dt := NewDecisionTree().WithSeed(rng.Int63())
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamples
		dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
		dt.MaxFeatures = rf.MaxFeatures
		if err := dt.Fit(Xb, yb); err != nil {
			return err
		}
		rf.Trees = append(rf.Trees, dt)
	}
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range rf.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	return averageProba(rf.Trees, X)
}

func averageProba(trees []*DecisionTree, X [][]float64) []float64 {
	n := len(X)
	out := make([]float64, n)
	if len(trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range trees {
		for i, p := range dt.PredictProba(X) {
			out[i] += p
		}
	}
	m := float64(len(trees))
	for i := range out {
		out[i] /= m
	}
	return out
}
