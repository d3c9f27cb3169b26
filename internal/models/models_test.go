package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns a single-feature dataset split cleanly at x=10.
func separable() ([][]float64, []int) {
	X := make([][]float64, 20)
	y := make([]int, 20)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i >= 10 {
			y[i] = 1
		}
	}
	return X, y
}

func TestGradientBoostingLearnsSeparableData(t *testing.T) {
	X, y := separable()
	gb := NewGradientBoosting()
	gb.NEstimators = 25
	gb.LearningRate = 0.5
	gb.MaxDepth = 1
	require.NoError(t, gb.Fit(X, y))

	proba := gb.PredictProba(X)
	assert.Less(t, proba[0], 0.5)
	assert.Greater(t, proba[19], 0.5)
	assert.Less(t, proba[0], proba[19])

	correct := 0
	for i, p := range gb.Predict(X) {
		if p == y[i] {
			correct++
		}
	}
	assert.GreaterOrEqual(t, correct, 18)
}

func TestGradientBoostingIsDeterministic(t *testing.T) {
	X, y := separable()
	a := NewGradientBoosting()
	b := NewGradientBoosting()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
}

func TestGradientBoostingEmptyInput(t *testing.T) {
	gb := NewGradientBoosting()
	require.NoError(t, gb.Fit(nil, nil))
	assert.Empty(t, gb.Trees)
}

func TestDecisionTreePureLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []int{1, 1, 1}
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	for _, p := range dt.PredictProba(X) {
		assert.Equal(t, 1.0, p)
	}
}

func TestDecisionTreeSeparableData(t *testing.T) {
	X, y := separable()
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	assert.Equal(t, y, dt.Predict(X))
}

func TestRandomForestReproducibleWithSeed(t *testing.T) {
	X, y := separable()
	a := NewRandomForest(7)
	b := NewRandomForest(7)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
}

func TestBaggingMajority(t *testing.T) {
	X, y := separable()
	bg := NewBagging(3)
	bg.NEstimators = 10
	require.NoError(t, bg.Fit(X, y))
	correct := 0
	for i, p := range bg.Predict(X) {
		if p == y[i] {
			correct++
		}
	}
	assert.GreaterOrEqual(t, correct, 16)
}

func TestConstantScorer(t *testing.T) {
	c := &Constant{P: 0}
	X := [][]float64{{1}, {2}}
	assert.Equal(t, []float64{0, 0}, c.PredictProba(X))
	assert.Equal(t, []int{0, 0}, c.Predict(X))
	require.NoError(t, c.Fit(X, []int{0, 1}))
}
