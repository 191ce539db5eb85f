package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	var (
		pm    = NewPartitionMap(4, 10)
		total = 0
		last  = 0
	)
	assert.Equal(t, 4, pm.ParallelDegree)
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		assert.Equal(t, last, kMin) // contiguous cover
		assert.InDelta(t, 10/4, pm.GetBucketDimension(n), 1)
		total += kMax - kMin
		last = kMax
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 10, last)
}

func TestPartitionMapDegreeClamp(t *testing.T) {
	// More workers than items collapses to one item per worker
	pm := NewPartitionMap(8, 3)
	assert.Equal(t, 3, pm.ParallelDegree)
	for n := 0; n < 3; n++ {
		assert.Equal(t, 1, pm.GetBucketDimension(n))
	}
	// A degenerate request still yields a usable single bucket
	pm = NewPartitionMap(0, 5)
	assert.Equal(t, 1, pm.ParallelDegree)
	assert.Equal(t, 5, pm.GetBucketDimension(0))
}

func TestIndex(t *testing.T) {
	r := NewRange(2, 5)
	assert.Equal(t, Index{2, 3, 4, 5}, r)
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(6))
	assert.Len(t, NewIndex(3), 3)
}
