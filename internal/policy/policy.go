// Package policy maps review scores to automate/escalate decisions.
package policy

import "strings"

type Decision string

const (
	AutoApprove Decision = "AUTO_APPROVE"
	Escalate    Decision = "ESCALATE"
)

// Policy holds the default cutoff and independently tunable per-category
// overrides. Cutoffs are a business decision and arrive via configuration.
// Category names match case-insensitively: configuration layers lowercase
// map keys, record categories do not.
type Policy struct {
	Default     float64
	PerCategory map[string]float64
}

func New(def float64, perCategory map[string]float64) Policy {
	p := Policy{Default: def}
	if len(perCategory) > 0 {
		p.PerCategory = make(map[string]float64, len(perCategory))
		for c, v := range perCategory {
			p.PerCategory[strings.ToLower(c)] = v
		}
	}
	return p
}

// Cutoff returns the category's cutoff, or the default when no override is
// set.
func (p Policy) Cutoff(category string) float64 {
	if c, ok := p.PerCategory[strings.ToLower(category)]; ok {
		return c
	}
	return p.Default
}

// Decide escalates when score >= cutoff, otherwise auto-approves.
func (p Policy) Decide(category string, score float64) Decision {
	if score >= p.Cutoff(category) {
		return Escalate
	}
	return AutoApprove
}
