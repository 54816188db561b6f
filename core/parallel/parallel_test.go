package parallel

import (
	"testing"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name  string
		items int
	}{
		{"single item", 1},
		{"small", 7},
		{"large", 10_001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int, tt.items)
			Parallelize(tt.items, func(start, end int) {
				for i := start; i < end; i++ {
					hits[i]++
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, DefaultThreshold, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("got range [%d, %d), want [0, 10)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single sequential call, got %d", calls)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	ParallelizeWithThreshold(0, 0, func(start, end int) {
		t.Fatal("fn must not be called for zero items")
	})
	Parallelize(0, func(start, end int) {
		t.Fatal("fn must not be called for zero items")
	})
}
