package scheduler

import "math/rand"

// Fuzzer perturbs a review interval. A nil Fuzzer leaves intervals as
// computed.
type Fuzzer func(ivl int) int

// FuzzRange returns the inclusive range a review interval of ivl days may be
// spread over.
func FuzzRange(ivl int) (lo, hi int) {
	if ivl < 2 {
		return 1, 1
	}
	if ivl == 2 {
		return 2, 3
	}
	var fuzz int
	switch {
	case ivl < 7:
		fuzz = int(float64(ivl) * 0.25)
	case ivl < 30:
		fuzz = max(2, int(float64(ivl)*0.15))
	default:
		fuzz = max(4, int(float64(ivl)*0.05))
	}
	fuzz = max(fuzz, 1)
	return ivl - fuzz, ivl + fuzz
}

// FuzzedInterval draws uniformly from FuzzRange(ivl).
func FuzzedInterval(rng *rand.Rand, ivl int) int {
	lo, hi := FuzzRange(ivl)
	return lo + rng.Intn(hi-lo+1)
}

// NewFuzzer binds FuzzedInterval to rng.
func NewFuzzer(rng *rand.Rand) Fuzzer {
	return func(ivl int) int { return FuzzedInterval(rng, ivl) }
}

// LearningFuzz returns the extra seconds added to a learning step of delay
// seconds so that cards answered together do not come back together.
func LearningFuzz(rng *rand.Rand, delay int) int {
	maxExtra := min(300, int(float64(delay)*0.25))
	return rng.Intn(max(maxExtra, 1))
}
