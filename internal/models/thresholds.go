package models

import (
	"math"
	"sort"
)

// candidateThresholds picks up to nCand split candidates for feature f over
// the rows in idx, taken at sorted quantiles so threshold selection is
// deterministic for identical input.
func candidateThresholds(X [][]float64, idx []int, f, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	vals := make([]float64, len(idx))
	for j, i := range idx {
		vals[j] = X[i][f]
	}
	sort.Float64s(vals)
	n := len(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		p := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if p <= 0 || p >= n {
			continue
		}
		thr := vals[p]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 && n > 1 && vals[0] != vals[n-1] {
		out = append(out, (vals[0]+vals[n-1])/2)
	}
	return out
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
