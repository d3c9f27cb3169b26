package scorer

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metric is a possibly-undefined evaluation value. A zero denominator makes
// the metric "not computed"; it is never coerced to 0 or NaN.
type Metric struct {
	Value    float64 `yaml:"value" json:"value"`
	Computed bool    `yaml:"computed" json:"computed"`
}

func (m Metric) String() string {
	if !m.Computed {
		return "not computed"
	}
	return fmt.Sprintf("%.4f", m.Value)
}

// MarshalYAML renders undefined metrics as the literal "not_computed" so a
// report never shows a placeholder number.
func (m Metric) MarshalYAML() (interface{}, error) {
	if !m.Computed {
		return "not_computed", nil
	}
	return m.Value, nil
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Computed {
		return []byte(`"not_computed"`), nil
	}
	return []byte(fmt.Sprintf("%g", m.Value)), nil
}

// UnmarshalYAML accepts the scalar form MarshalYAML emits.
func (m *Metric) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil && s == "not_computed" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	*m = Metric{Value: v, Computed: true}
	return nil
}

func metricOf(v float64) Metric { return Metric{Value: v, Computed: true} }

type Confusion struct {
	TP int `yaml:"tp" json:"tp"`
	FP int `yaml:"fp" json:"fp"`
	TN int `yaml:"tn" json:"tn"`
	FN int `yaml:"fn" json:"fn"`
}

type Evaluation struct {
	Accuracy  Metric    `yaml:"accuracy" json:"accuracy"`
	Precision Metric    `yaml:"precision" json:"precision"`
	Recall    Metric    `yaml:"recall" json:"recall"`
	F1        Metric    `yaml:"f1" json:"f1"`
	Confusion Confusion `yaml:"confusion" json:"confusion"`
}

// Evaluate scores probabilities against labels at the given classification
// threshold. Precision needs a predicted positive, recall an actual
// positive; without one the metric stays not computed.
func Evaluate(y []int, proba []float64, threshold float64) Evaluation {
	var c Confusion
	for i := range y {
		pred := 0
		if proba[i] >= threshold {
			pred = 1
		}
		switch {
		case pred == 1 && y[i] == 1:
			c.TP++
		case pred == 1 && y[i] == 0:
			c.FP++
		case pred == 0 && y[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}

	var ev Evaluation
	ev.Confusion = c
	if n := c.TP + c.FP + c.TN + c.FN; n > 0 {
		ev.Accuracy = metricOf(float64(c.TP+c.TN) / float64(n))
	}
	if c.TP+c.FP > 0 {
		ev.Precision = metricOf(float64(c.TP) / float64(c.TP+c.FP))
	}
	if c.TP+c.FN > 0 {
		ev.Recall = metricOf(float64(c.TP) / float64(c.TP+c.FN))
	}
	if ev.Precision.Computed && ev.Recall.Computed && ev.Precision.Value+ev.Recall.Value > 0 {
		p, r := ev.Precision.Value, ev.Recall.Value
		ev.F1 = metricOf(2 * p * r / (p + r))
	}
	return ev
}

func accuracy(y, pred []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == pred[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}
