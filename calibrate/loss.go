package calibrate

import (
	"math"

	"github.com/sky-flux/adept"
)

const logClamp = 1e-7

// logLoss computes the binary cross-entropy -[y·ln(p) + (1-y)·ln(1-p)].
// rPred is clamped to [logClamp, 1-logClamp] to avoid log(0).
func logLoss(rPred, y float64) float64 {
	p := math.Max(logClamp, math.Min(rPred, 1-logClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// batchLoss computes the average log loss over all cross-day reviews under
// the given weights. It builds a fuzz-free Scheduler and replays each
// card's history, comparing predicted retrievability before each review
// against the binary recall outcome. Returns 0 when there are no
// cross-day reviews.
func batchLoss(weights adept.Weights, data map[int64][]review) float64 {
	s, err := adept.NewScheduler(adept.SchedulerConfig{
		Weights:        weights,
		DisableFuzzing: true,
	})
	if err != nil {
		return 0
	}

	var totalLoss float64
	var count int

	for cardID, reviews := range data {
		card := adept.NewCard(cardID, "", reviews[0].reviewTime)

		for _, rev := range reviews {
			rPred := s.Retrievability(card, rev.reviewTime)

			if card.LastReview != nil && rev.elapsedDays >= 1.0 {
				totalLoss += logLoss(rPred, rev.label)
				count++
			}

			next, _, err := s.Review(card, rev.rating, rev.reviewTime)
			if err != nil {
				continue
			}
			card = next
		}
	}

	if count == 0 {
		return 0
	}
	return totalLoss / float64(count)
}

const gradEps = 1e-5

// numericalGradient computes dL/dw by central differences:
// dL/dw[i] ≈ (L(w[i]+ε) - L(w[i]-ε)) / (2ε).
func numericalGradient(weights adept.Weights, data map[int64][]review) adept.Weights {
	var grad adept.Weights
	for i := 0; i < adept.NumWeights; i++ {
		wPlus := weights
		wPlus[i] += gradEps
		wMinus := weights
		wMinus[i] -= gradEps

		grad[i] = (batchLoss(wPlus, data) - batchLoss(wMinus, data)) / (2 * gradEps)
	}
	return grad
}
