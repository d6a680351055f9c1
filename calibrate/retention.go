package calibrate

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sky-flux/adept"
)

var (
	// ErrInsufficientLogs is returned when fewer than 512 review logs are
	// provided to OptimalRetention.
	ErrInsufficientLogs = errors.New("calibrate: at least 512 review logs required for optimal retention")

	// ErrMissingDuration is returned when any log lacks DurationMs.
	ErrMissingDuration = errors.New("calibrate: DurationMs must be set on every log for optimal retention")
)

// ratingStats holds the observed probability of a rating and the average
// review duration (milliseconds) for it.
type ratingStats struct {
	prob       float64
	durationMs float64
}

// reviewCosts summarizes rating behavior split into first reviews of a
// card and the reviews after. Recall probabilities among non-first reviews
// are conditioned on recall (Again excluded): the simulation supplies the
// forgetting probability itself via the retention candidate.
type reviewCosts struct {
	first    [5]ratingStats // indexed by Rating; [0] unused.
	later    [5]ratingStats
	recallPr [5]float64 // P(rating | recalled), Hard/Good/Easy only.
}

// summarizeLogs derives reviewCosts from the review logs.
func summarizeLogs(logs []adept.ReviewLog) reviewCosts {
	byCard := make(map[int64][]adept.ReviewLog)
	for _, entry := range logs {
		byCard[entry.CardID] = append(byCard[entry.CardID], entry)
	}

	var costs reviewCosts
	var firstTotal, recallTotal float64
	firstDurN := [5]float64{}
	laterDurN := [5]float64{}

	for _, cardLogs := range byCard {
		sort.Slice(cardLogs, func(i, j int) bool {
			return cardLogs[i].Timestamp.Before(cardLogs[j].Timestamp)
		})
		for i, entry := range cardLogs {
			r := entry.Rating
			dur := 0.0
			if entry.DurationMs != nil {
				dur = float64(*entry.DurationMs)
			}
			if i == 0 {
				firstTotal++
				costs.first[r].prob++
				costs.first[r].durationMs += dur
				firstDurN[r]++
			} else {
				costs.later[r].durationMs += dur
				laterDurN[r]++
				if r != adept.Again {
					recallTotal++
					costs.recallPr[r]++
				}
			}
		}
	}

	for _, r := range adept.Ratings {
		if firstTotal > 0 {
			costs.first[r].prob /= firstTotal
		}
		if firstDurN[r] > 0 {
			costs.first[r].durationMs /= firstDurN[r]
		}
		if laterDurN[r] > 0 {
			costs.later[r].durationMs /= laterDurN[r]
		}
		if r != adept.Again {
			if recallTotal > 0 {
				costs.recallPr[r] /= recallTotal
			} else {
				costs.recallPr[r] = 1.0 / 3.0
			}
		}
	}
	return costs
}

// pickRating draws a rating from a cumulative distribution over the given
// ratings.
func pickRating(rng *rand.Rand, probs [5]float64, ratings []adept.Rating) adept.Rating {
	p := rng.Float64()
	cum := 0.0
	for _, r := range ratings[:len(ratings)-1] {
		cum += probs[r]
		if p < cum {
			return r
		}
	}
	return ratings[len(ratings)-1]
}

// simulateCost estimates review milliseconds per retained card at the
// given retention target: 1000 cards simulated over one year, recalling
// with probability equal to the target.
func simulateCost(retention float64, weights adept.Weights, costs reviewCosts) float64 {
	const numCards = 1000

	s, err := adept.NewScheduler(adept.SchedulerConfig{
		Weights:         weights,
		TargetRetention: retention,
		DisableFuzzing:  true,
	})
	if err != nil {
		return math.Inf(1)
	}

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	firstProbs := [5]float64{
		adept.Again: costs.first[adept.Again].prob,
		adept.Hard:  costs.first[adept.Hard].prob,
		adept.Good:  costs.first[adept.Good].prob,
		adept.Easy:  costs.first[adept.Easy].prob,
	}
	recallRatings := []adept.Rating{adept.Hard, adept.Good, adept.Easy}

	var totalMs float64
	for i := 0; i < numCards; i++ {
		card := adept.NewCard(int64(i+1), "", start)
		now := start

		for !now.After(end) {
			var rating adept.Rating
			var table *[5]ratingStats

			if card.LastReview == nil {
				rating = pickRating(rng, firstProbs, adept.Ratings[:])
				table = &costs.first
			} else {
				table = &costs.later
				if rng.Float64() < retention {
					rating = pickRating(rng, costs.recallPr, recallRatings)
				} else {
					rating = adept.Again
				}
			}

			totalMs += table[rating].durationMs

			next, _, err := s.Review(card, rating, now)
			if err != nil {
				break
			}
			card = next
			now = card.Due
		}
	}

	return totalMs / (retention * numCards)
}

// OptimalRetention returns the retention target (among standard
// candidates 0.70–0.95) with the lowest simulated review cost per
// retained card.
func (c *Calibrator) OptimalRetention(ctx context.Context, weights adept.Weights, logs []adept.ReviewLog) (float64, error) {
	if len(logs) < 512 {
		return 0, ErrInsufficientLogs
	}
	for _, entry := range logs {
		if entry.DurationMs == nil {
			return 0, ErrMissingDuration
		}
	}

	costs := summarizeLogs(logs)
	candidates := []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

	best := candidates[0]
	bestCost := math.Inf(1)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if cost := simulateCost(candidate, weights, costs); cost < bestCost {
			bestCost = cost
			best = candidate
		}
	}

	return best, nil
}
