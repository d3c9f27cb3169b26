package models

// Model is a binary classifier over dense feature rows.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Name() string
}

// Constant always scores the same probability. It is the fallback for
// segments whose training split cannot support a real classifier.
type Constant struct {
	P float64
}

func (c *Constant) Name() string { return "Constant" }

func (c *Constant) Fit(X [][]float64, y []int) error { return nil }

func (c *Constant) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range out {
		if c.P >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (c *Constant) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = c.P
	}
	return out
}
