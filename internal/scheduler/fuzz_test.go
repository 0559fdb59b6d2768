package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzRange_Table(t *testing.T) {
	cases := []struct {
		ivl    int
		lo, hi int
	}{
		{0, 1, 1},
		{1, 1, 1},
		{2, 2, 3},
		{3, 2, 4},    // int(0.75) = 0, floored to 1
		{4, 3, 5},    // int(1.0) = 1
		{6, 5, 7},    // int(1.5) = 1
		{7, 5, 9},    // max(2, int(1.05)) = 2
		{20, 17, 23}, // max(2, int(3.0)) = 3
		{29, 25, 33}, // int(4.35) = 4
		{30, 26, 34}, // max(4, int(1.5)) = 4
		{100, 95, 105},
	}
	for _, tc := range cases {
		lo, hi := FuzzRange(tc.ivl)
		assert.Equal(t, tc.lo, lo, "ivl=%d lo", tc.ivl)
		assert.Equal(t, tc.hi, hi, "ivl=%d hi", tc.ivl)
	}
}

func TestFuzzedInterval_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for ivl := 0; ivl < 400; ivl++ {
		lo, hi := FuzzRange(ivl)
		for i := 0; i < 20; i++ {
			got := FuzzedInterval(rng, ivl)
			assert.GreaterOrEqual(t, got, lo, "ivl=%d", ivl)
			assert.LessOrEqual(t, got, hi, "ivl=%d", ivl)
			if ivl < 2 {
				assert.Equal(t, 1, got)
			}
		}
	}
}

func TestFuzzedInterval_CoversRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[FuzzedInterval(rng, 2)] = true
	}
	assert.Equal(t, map[int]bool{2: true, 3: true}, seen)
}

func TestLearningFuzz_Bounded(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		assert.Less(t, LearningFuzz(rng, 600), 150)
		assert.Less(t, LearningFuzz(rng, 86400), 300)
		assert.Equal(t, 0, LearningFuzz(rng, 2))
	}
}
