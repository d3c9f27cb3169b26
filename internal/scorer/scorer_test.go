package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensereview/internal/diag"
	"expensereview/internal/features"
	"expensereview/internal/segment"
)

func makeSegment(category string, n int, labelAt func(i int) int) segment.Segment {
	seg := segment.Segment{Category: category}
	for i := 0; i < n; i++ {
		seg.Vectors = append(seg.Vectors, features.Vector{
			ExpenseID: category + "-" + string(rune('A'+i%26)) + string(rune('0'+i/26)),
			Category:  category,
			Values:    []float64{float64(i), float64(i % 7)},
			Label:     labelAt(i),
		})
	}
	return seg
}

func smallGridOptions() Options {
	opts := DefaultOptions()
	opts.Grid = Grid{LearningRates: []float64{0.3}, Estimators: []int{10}, Depths: []int{1, 2}}
	return opts
}

func TestTrainSeparableSegment(t *testing.T) {
	seg := makeSegment("Travel", 60, func(i int) int {
		if i >= 30 {
			return 1
		}
		return 0
	})
	sc, diags, err := Train(seg, smallGridOptions())
	require.NoError(t, err)
	assert.False(t, sc.Constant)
	assert.Equal(t, 42, sc.TrainSize)
	assert.Equal(t, 18, sc.TestSize)
	assert.Zero(t, diag.Count(diags, diag.DegenerateSegment))

	require.True(t, sc.Eval.Accuracy.Computed)
	assert.Greater(t, sc.Eval.Accuracy.Value, 0.8)

	scores := sc.Score([][]float64{{2, 2}, {58, 2}})
	assert.Less(t, scores[0], scores[1])
}

func TestTrainDegenerateSegmentFallsBack(t *testing.T) {
	seg := makeSegment("Lunch", 10, func(i int) int { return 0 })
	sc, diags, err := Train(seg, smallGridOptions())
	require.NoError(t, err)
	assert.True(t, sc.Constant)
	assert.Equal(t, "Constant", sc.Model.Name())
	require.Equal(t, 1, diag.Count(diags, diag.DegenerateSegment))

	// constant policy always scores non-priority
	for _, s := range sc.Score([][]float64{{1, 1}, {9, 3}}) {
		assert.Equal(t, 0.0, s)
	}
	// without positives in the held-out split: accuracy is computed,
	// precision, recall and f1 are not
	assert.False(t, sc.Eval.Recall.Computed)
	assert.False(t, sc.Eval.F1.Computed)
	assert.Equal(t, 3, diag.Count(diags, diag.UndefinedMetric))
}

func TestTrainSingleRecordSegment(t *testing.T) {
	seg := makeSegment("Events", 1, func(i int) int { return 1 })
	sc, diags, err := Train(seg, smallGridOptions())
	require.NoError(t, err)
	assert.True(t, sc.Constant)
	assert.Equal(t, 1, sc.TrainSize)
	assert.Equal(t, 0, sc.TestSize)
	assert.Equal(t, 1, diag.Count(diags, diag.DegenerateSegment))
	// empty held-out split: nothing is computed, and that is reported
	assert.False(t, sc.Eval.Accuracy.Computed)
	assert.False(t, sc.Eval.Precision.Computed)
	assert.False(t, sc.Eval.Recall.Computed)
	assert.False(t, sc.Eval.F1.Computed)
	assert.Equal(t, 4, diag.Count(diags, diag.UndefinedMetric))
}

func TestTrainEmptySegment(t *testing.T) {
	_, _, err := Train(segment.Segment{Category: "Empty"}, smallGridOptions())
	require.Error(t, err)
}

func TestTrainReproducible(t *testing.T) {
	seg := makeSegment("Travel", 50, func(i int) int {
		if i%3 == 0 {
			return 1
		}
		return 0
	})
	opts := smallGridOptions()

	a, _, err := Train(seg, opts)
	require.NoError(t, err)
	b, _, err := Train(seg, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.TrainSize, b.TrainSize)
	X := [][]float64{{5, 5}, {20, 6}, {49, 0}}
	assert.Equal(t, a.Score(X), b.Score(X))
	assert.Equal(t, a.Eval, b.Eval)
}

func TestConfigsForCollapsesIgnoredAxes(t *testing.T) {
	g := Grid{LearningRates: []float64{0.1, 0.2}, Estimators: []int{10, 20}, Depths: []int{1, 2}}

	assert.Len(t, configsFor("gb", g), 8)
	assert.Len(t, configsFor("rf", g), 4, "rf ignores learning rate")
	assert.Len(t, configsFor("dt", g), 2, "dt ignores learning rate and ensemble size")

	// enumeration order is learning rate, then estimators, then depth
	gb := configsFor("gb", g)
	assert.Equal(t, Config{LearningRate: 0.1, Estimators: 10, Depth: 1}, gb[0])
	assert.Equal(t, Config{LearningRate: 0.1, Estimators: 10, Depth: 2}, gb[1])
	assert.Equal(t, Config{LearningRate: 0.2, Estimators: 20, Depth: 2}, gb[7])
}

func TestBuildModelUnknownAlgo(t *testing.T) {
	_, err := buildModel("xgboost", Config{}, 1, 2)
	require.Error(t, err)
}
