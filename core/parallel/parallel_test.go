package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkers(t *testing.T) {
	tests := []struct {
		name         string
		items, limit int
		want         int
	}{
		{"no items", 0, 4, 0},
		{"fewer items than limit", 3, 8, 3},
		{"limit applies", 100, 4, 4},
		{"single worker", 100, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Workers(tt.items, tt.limit))
		})
	}
	assert.GreaterOrEqual(t, Workers(1000, 0), 1)
}

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{1, 7, 64, 1001} {
		counts := make([]int32, items)
		Parallelize(items, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&counts[i], 1)
			}
		})
		for i, c := range counts {
			if c != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, c)
			}
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, 4, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)

	calls = 0
	ParallelizeWithThreshold(0, 100, 4, func(start, end int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(0), calls)

	var sum int64
	ParallelizeWithThreshold(200, 10, 4, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&sum, int64(i))
		}
	})
	assert.Equal(t, int64(199*200/2), sum)
}
