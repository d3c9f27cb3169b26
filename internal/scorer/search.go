package scorer

import (
	"fmt"
	"math/rand"

	"expensereview/internal/models"
)

// Config is one hyperparameter candidate.
type Config struct {
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	Estimators   int     `yaml:"estimators" json:"estimators"`
	Depth        int     `yaml:"depth" json:"depth"`
}

// Grid spans the exhaustive search. Candidates are enumerated learning rate
// first, then ensemble size, then depth, and ties on the validation metric
// keep the earliest candidate.
type Grid struct {
	LearningRates []float64 `mapstructure:"learning_rates" yaml:"learning_rates"`
	Estimators    []int     `mapstructure:"estimators" yaml:"estimators"`
	Depths        []int     `mapstructure:"depths" yaml:"depths"`
}

func DefaultGrid() Grid {
	return Grid{
		LearningRates: []float64{0.05, 0.1, 0.3},
		Estimators:    []int{25, 50},
		Depths:        []int{1, 2, 3},
	}
}

// configsFor enumerates candidates, collapsing axes the algorithm ignores so
// the same model is never fit twice.
func configsFor(algo string, g Grid) []Config {
	lrs := g.LearningRates
	ests := g.Estimators
	depths := g.Depths
	switch algo {
	case "dt":
		lrs = []float64{0}
		ests = []int{0}
	case "rf", "bagging":
		lrs = []float64{0}
	}
	if len(lrs) == 0 {
		lrs = []float64{0.1}
	}
	if len(ests) == 0 {
		ests = []int{50}
	}
	if len(depths) == 0 {
		depths = []int{2}
	}
	out := make([]Config, 0, len(lrs)*len(ests)*len(depths))
	for _, lr := range lrs {
		for _, e := range ests {
			for _, d := range depths {
				out = append(out, Config{LearningRate: lr, Estimators: e, Depth: d})
			}
		}
	}
	return out
}

func buildModel(algo string, cfg Config, seed int64, minSamples int) (models.Model, error) {
	switch algo {
	case "gb", "":
		gb := models.NewGradientBoosting()
		gb.LearningRate = cfg.LearningRate
		gb.NEstimators = cfg.Estimators
		gb.MaxDepth = cfg.Depth
		gb.MinSamples = minSamples
		return gb, nil
	case "rf":
		rf := models.NewRandomForest(seed)
		rf.NEstimators = cfg.Estimators
		rf.MaxDepth = cfg.Depth
		rf.MinSamples = minSamples
		return rf, nil
	case "bagging":
		bg := models.NewBagging(seed)
		bg.NEstimators = cfg.Estimators
		bg.MaxDepth = cfg.Depth
		bg.MinSamples = minSamples
		return bg, nil
	case "dt":
		dt := models.NewDecisionTree()
		dt.MaxDepth = cfg.Depth
		dt.MinSamplesSplit = minSamples
		return dt, nil
	}
	return nil, fmt.Errorf("unknown algorithm %q", algo)
}

// crossValAccuracy runs k-fold cross-validation with deterministic folds
// from the seeded permutation and returns mean fold accuracy.
func crossValAccuracy(algo string, cfg Config, X [][]float64, y []int, folds int, seed int64, minSamples int) (float64, error) {
	n := len(X)
	if folds > n {
		folds = n
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	total := 0.0
	counted := 0
	for k := 0; k < folds; k++ {
		var trX, vaX [][]float64
		var trY, vaY []int
		for i, j := range perm {
			if i%folds == k {
				vaX = append(vaX, X[j])
				vaY = append(vaY, y[j])
			} else {
				trX = append(trX, X[j])
				trY = append(trY, y[j])
			}
		}
		if len(trX) == 0 || len(vaX) == 0 {
			continue
		}
		mdl, err := buildModel(algo, cfg, seed, minSamples)
		if err != nil {
			return 0, err
		}
		if err := mdl.Fit(trX, trY); err != nil {
			return 0, err
		}
		total += accuracy(vaY, mdl.Predict(vaX))
		counted++
	}
	if counted == 0 {
		return 0, nil
	}
	return total / float64(counted), nil
}

// searchBest picks the candidate with the highest cross-validated accuracy.
// Comparison is strict, so the first candidate in enumeration order wins
// ties.
func searchBest(algo string, g Grid, X [][]float64, y []int, folds int, seed int64, minSamples int) (Config, float64, error) {
	cands := configsFor(algo, g)
	best := cands[0]
	bestScore := -1.0
	for _, cfg := range cands {
		score, err := crossValAccuracy(algo, cfg, X, y, folds, seed, minSamples)
		if err != nil {
			return Config{}, 0, err
		}
		if score > bestScore {
			bestScore = score
			best = cfg
		}
	}
	return best, bestScore, nil
}
