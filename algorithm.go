package adept

import "math"

// retentionBase is the reference recall probability that defines
// stability: R(S, S) = 0.9.
const retentionBase = 0.9

// minStability keeps stability strictly positive.
const minStability = 0.001

// initialDifficulty is the midpoint difficulty assigned on first review.
const initialDifficulty = 5.0

// deltaDFactors scales the per-rating difficulty step w[6]:
// Again and Hard push difficulty up, Easy pulls it down.
var deltaDFactors = [...]float64{Again: 2, Hard: 1, Good: 0, Easy: -1}

// algo holds the retention model math, parameterized by the weight set.
type algo struct {
	w        Weights
	initStab [4]float64 // S₀ per rating, Again..Easy.
}

func newAlgo(w Weights, initStab [4]float64) algo {
	return algo{w: w, initStab: initStab}
}

// retrievability computes R(t, S) = 0.9 ^ (t / S).
// Elapsed time is clamped at zero so R never exceeds 1.
func (a *algo) retrievability(elapsedDays, stability float64) float64 {
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	return math.Pow(retentionBase, elapsedDays/stability)
}

// intervalDays inverts R: the time at which retrievability decays to the
// target retention fraction. R(interval) = target ⇒
// interval = S · ln(target) / ln(0.9). At target 0.9 the interval equals
// the stability itself.
func (a *algo) intervalDays(stability, targetRetention float64) float64 {
	return stability * math.Log(targetRetention) / math.Log(retentionBase)
}

// initStability returns S₀ for the first rating of a card.
func (a *algo) initStability(r Rating) float64 {
	return clampStability(a.initStab[r-Again])
}

// nextDifficulty applies the rating-dependent step plus a mild mean
// reversion toward the midpoint, clamped to [0, 10].
func (a *algo) nextDifficulty(difficulty float64, r Rating) float64 {
	d := difficulty + a.w[6]*deltaDFactors[r]
	d += a.w[7] * (initialDifficulty - d)
	return clampDifficulty(d)
}

// nextStability dispatches on recall success.
func (a *algo) nextStability(d, s, r float64, rating Rating) float64 {
	if rating == Again {
		return a.forgetStability(s, r)
	}
	return a.recallStability(d, s, r, rating)
}

// recallStability grows stability multiplicatively after a successful
// recall. The growth factor exceeds 1 for every success rating and is
// larger when retrievability was low (a risky recall proves a strong
// memory) and when the material is easy.
//
//	S' = S · (1 + w0 · bonus(rating) · (1 + w2·(10-D)/10) · e^(w1·(1-R)))
func (a *algo) recallStability(d, s, r float64, rating Rating) float64 {
	bonus := 1.0
	switch rating {
	case Hard:
		bonus = a.w[3]
	case Easy:
		bonus = a.w[4]
	}
	growth := 1 + a.w[0]*bonus*(1+a.w[2]*(10-d)/10)*math.Exp(a.w[1]*(1-r))
	return clampStability(s * growth)
}

// forgetStability shrinks stability sharply after a lapse. The retained
// fraction w5·(0.5 + 0.5R) is strictly below 1 (w5 ≤ 0.9); a lapse while
// the memory was still strong (high R) keeps more of the old stability.
func (a *algo) forgetStability(s, r float64) float64 {
	return clampStability(s * a.w[5] * (0.5 + 0.5*r))
}

func clampStability(s float64) float64 {
	return math.Max(s, minStability)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 0), 10)
}
