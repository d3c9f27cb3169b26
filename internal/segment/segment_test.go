package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensereview/internal/features"
)

func vec(id, category string, label int) features.Vector {
	return features.Vector{ExpenseID: id, Category: category, Values: []float64{1}, Label: label}
}

func TestPartitionIsAPartition(t *testing.T) {
	in := []features.Vector{
		vec("E1", "Travel", 1),
		vec("E2", "Lunch", 0),
		vec("E3", "Travel", 0),
		vec("E4", "Events", 1),
		vec("E5", "Lunch", 0),
	}
	segs := Partition(in)

	// first-seen order
	require.Len(t, segs, 3)
	assert.Equal(t, "Travel", segs[0].Category)
	assert.Equal(t, "Lunch", segs[1].Category)
	assert.Equal(t, "Events", segs[2].Category)

	// every record in exactly one segment, union == input
	seen := map[string]string{}
	total := 0
	for _, s := range segs {
		for _, v := range s.Vectors {
			assert.Equal(t, s.Category, v.Category)
			prev, dup := seen[v.ExpenseID]
			assert.False(t, dup, "record %s already in segment %s", v.ExpenseID, prev)
			seen[v.ExpenseID] = s.Category
			total++
		}
	}
	assert.Equal(t, len(in), total)
	for _, v := range in {
		assert.Contains(t, seen, v.ExpenseID)
	}
}

func TestPositives(t *testing.T) {
	segs := Partition([]features.Vector{
		vec("E1", "Travel", 1),
		vec("E2", "Travel", 1),
		vec("E3", "Travel", 0),
	})
	require.Len(t, segs, 1)
	assert.Equal(t, 2, segs[0].Positives())
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(nil))
}
