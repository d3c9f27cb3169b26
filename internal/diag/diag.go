// Package diag collects the non-fatal conditions a pipeline run produces.
// Fatal errors abort the run; everything here rides along with the result
// and ends up in the run report, never silently dropped.
package diag

import "fmt"

type Kind string

const (
	// DegenerateSegment: a category segment had fewer than two label
	// classes in its training split and fell back to the constant policy.
	DegenerateSegment Kind = "degenerate_segment"
	// UndefinedMetric: precision or recall had a zero denominator and is
	// reported as not computed.
	UndefinedMetric Kind = "undefined_metric"
	// UnknownStatus: a review status outside the known set was mapped to
	// the non-priority label.
	UnknownStatus Kind = "unknown_status"
	// LowRecall: positive-class recall came in under the configured floor.
	LowRecall Kind = "low_recall"
	// DroppedRecord: a record was dropped at ingestion after both
	// timestamp parse attempts failed.
	DroppedRecord Kind = "dropped_record"
)

type Diagnostic struct {
	Kind     Kind   `yaml:"kind" json:"kind"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	RecordID string `yaml:"record_id,omitempty" json:"record_id,omitempty"`
	Message  string `yaml:"message" json:"message"`
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Category != "" {
		s += " category=" + d.Category
	}
	if d.RecordID != "" {
		s += " record=" + d.RecordID
	}
	return fmt.Sprintf("%s: %s", s, d.Message)
}

// Count returns how many diagnostics of the given kind are present.
func Count(ds []Diagnostic, k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}
