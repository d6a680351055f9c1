package adept

import "fmt"

// NumWeights is the size of the retention model's tunable weight vector.
const NumWeights = 8

// Weights is the tunable weight set of the retention model's stability and
// difficulty updates. Global defaults ship with the package; per-learner or
// per-topic overrides come from the adept/calibrate subpackage once enough
// review history exists.
//
//	w[0] growth scale        overall stability-growth magnitude
//	w[1] retrievability gain e^(w1·(1-R)) — bigger growth for riskier recalls
//	w[2] difficulty gain     (1 + w2·(10-D)/10) — easier material stabilizes faster
//	w[3] hard penalty        growth damping for Hard recalls
//	w[4] easy bonus          growth boost for Easy recalls
//	w[5] lapse shrink        stability fraction retained after a lapse
//	w[6] difficulty step     ΔD unit applied per rating
//	w[7] mean reversion      pull of difficulty toward the 5.0 midpoint
type Weights [NumWeights]float64

// DefaultWeights are the package's global default weight values.
var DefaultWeights = Weights{
	1.0,  // w[0] growth scale
	1.5,  // w[1] retrievability gain
	0.5,  // w[2] difficulty gain
	0.5,  // w[3] hard penalty
	1.4,  // w[4] easy bonus
	0.3,  // w[5] lapse shrink
	0.6,  // w[6] difficulty step
	0.05, // w[7] mean reversion
}

// WeightLowerBounds defines the minimum allowed value for each weight.
var WeightLowerBounds = Weights{
	0.05, 0.0, 0.0, 0.05, 1.0, 0.01, 0.0, 0.0,
}

// WeightUpperBounds defines the maximum allowed value for each weight.
var WeightUpperBounds = Weights{
	10.0, 5.0, 2.0, 1.0, 4.0, 0.9, 3.0, 0.5,
}

// ValidateWeights checks that every weight is within
// [WeightLowerBounds, WeightUpperBounds].
func ValidateWeights(w Weights) error {
	for i := 0; i < NumWeights; i++ {
		if w[i] < WeightLowerBounds[i] || w[i] > WeightUpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidWeights, i, w[i], WeightLowerBounds[i], WeightUpperBounds[i])
		}
	}
	return nil
}

// ClampWeights constrains each weight to its bounds. The calibrate
// subpackage applies it after every gradient step.
func ClampWeights(w Weights) Weights {
	for i := 0; i < NumWeights; i++ {
		if w[i] < WeightLowerBounds[i] {
			w[i] = WeightLowerBounds[i]
		}
		if w[i] > WeightUpperBounds[i] {
			w[i] = WeightUpperBounds[i]
		}
	}
	return w
}
