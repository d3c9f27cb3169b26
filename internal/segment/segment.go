// Package segment partitions feature vectors by expense category. Segments
// are disjoint and exhaustive over observed categories: every vector lands
// in exactly one segment.
package segment

import "expensereview/internal/features"

type Segment struct {
	Category string
	Vectors  []features.Vector
}

// Positives counts priority-to-review labels in the segment.
func (s Segment) Positives() int {
	n := 0
	for _, v := range s.Vectors {
		n += v.Label
	}
	return n
}

// Partition groups vectors by category in first-seen order, so the segment
// sequence is identical across runs over the same input.
func Partition(vecs []features.Vector) []Segment {
	index := make(map[string]int)
	var segs []Segment
	for _, v := range vecs {
		i, ok := index[v.Category]
		if !ok {
			i = len(segs)
			index[v.Category] = i
			segs = append(segs, Segment{Category: v.Category})
		}
		segs[i].Vectors = append(segs[i].Vectors, v)
	}
	return segs
}
