package models

import "math"

// GBNode is one node of a regression tree fit on residuals.
type GBNode struct {
	Feature   int
	Threshold float64
	Left      *GBNode
	Right     *GBNode
	IsLeaf    bool
	Value     float64
}

// GradientBoosting fits an additive ensemble of shallow regression trees on
// the logistic residuals, starting from the log-odds of the base rate.
// Training is deterministic: thresholds come from sorted quantiles and the
// search order over features is fixed.
type GradientBoosting struct {
	NEstimators        int
	LearningRate       float64
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	InitScore          float64
	Trees              []*GBNode
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 50, LearningRate: 0.1, MaxDepth: 2, MinSamples: 2, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return nil
	}
	pos := 0
	for i := 0; i < n; i++ {
		pos += y[i]
	}
	base := float64(pos) / float64(n)
	if base <= 1e-3 {
		base = 1e-3
	}
	if base >= 1-1e-3 {
		base = 1 - 1e-3
	}
	gb.InitScore = math.Log(base / (1 - base))
	gb.Trees = gb.Trees[:0]

	F := make([]float64, n)
	for i := range F {
		F[i] = gb.InitScore
	}
	r := make([]float64, n)
	for m := 0; m < gb.NEstimators; m++ {
		for i := 0; i < n; i++ {
			r[i] = float64(y[i]) - sigmoid(F[i])
		}
		tree := gb.buildTree(X, r, allRows(n), 0)
		if tree.IsLeaf && tree.Value == 0 {
			break
		}
		gb.Trees = append(gb.Trees, tree)
		for i := 0; i < n; i++ {
			F[i] += gb.LearningRate * predictNode(tree, X[i])
		}
	}
	return nil
}

// buildTree grows a regression tree over the residuals, splitting on the
// lowest sum of squared errors.
func (gb *GradientBoosting) buildTree(X [][]float64, r []float64, idx []int, depth int) *GBNode {
	mean := meanAt(r, idx)
	if depth >= gb.MaxDepth || len(idx) < 2*gb.MinSamples {
		return &GBNode{IsLeaf: true, Value: mean}
	}

	bestSSE := math.MaxFloat64
	bestFeature := -1
	bestThr := 0.0
	var leftBest, rightBest []int

	nFeats := len(X[idx[0]])
	for f := 0; f < nFeats; f++ {
		for _, thr := range candidateThresholds(X, idx, f, gb.MaxThresholdsPerFe) {
			lIdx, rIdx := splitRows(X, idx, f, thr)
			if len(lIdx) < gb.MinSamples || len(rIdx) < gb.MinSamples {
				continue
			}
			sse := sseAround(r, lIdx) + sseAround(r, rIdx)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThr = thr
				leftBest = lIdx
				rightBest = rIdx
			}
		}
	}

	if bestFeature == -1 {
		return &GBNode{IsLeaf: true, Value: mean}
	}
	return &GBNode{
		Feature:   bestFeature,
		Threshold: bestThr,
		Left:      gb.buildTree(X, r, leftBest, depth+1),
		Right:     gb.buildTree(X, r, rightBest, depth+1),
	}
}

func (gb *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		f := gb.InitScore
		for _, t := range gb.Trees {
			f += gb.LearningRate * predictNode(t, X[i])
		}
		out[i] = sigmoid(f)
	}
	return out
}

func (gb *GradientBoosting) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range gb.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func predictNode(n *GBNode, x []float64) float64 {
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func meanAt(r []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += r[i]
	}
	return sum / float64(len(idx))
}

func sseAround(r []float64, idx []int) float64 {
	mean := meanAt(r, idx)
	sse := 0.0
	for _, i := range idx {
		d := r[i] - mean
		sse += d * d
	}
	return sse
}
