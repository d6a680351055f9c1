package adept

import (
	"math"
	"math/rand"
)

// Fuzz widens each Review interval into a small random window so that
// cards reviewed together do not stay clustered on the same future days.
// Intervals under 2.5 days are too short to fuzz.
const fuzzMinInterval = 2.5

// fuzzBands accumulate the window half-width: each band contributes
// factor × (days of the interval falling inside the band).
var fuzzBands = []struct {
	start, end, factor float64
}{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// applyFuzz randomizes an interval (in whole days) within its fuzz window,
// bounded below by 2 days and above by maxIvl.
func applyFuzz(interval, maxIvl int, rng *rand.Rand) int {
	ivl := float64(interval)
	if ivl < fuzzMinInterval {
		return interval
	}

	delta := 1.0
	for _, band := range fuzzBands {
		delta += band.factor * math.Max(math.Min(ivl, band.end)-band.start, 0)
	}

	lo := max(2, int(math.Round(ivl-delta)))
	hi := min(int(math.Round(ivl+delta)), maxIvl)
	lo = min(lo, hi)

	fuzzed := lo + int(math.Round(rng.Float64()*float64(hi-lo+1)))
	return min(fuzzed, maxIvl)
}
