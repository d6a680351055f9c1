package calibrate

import (
	"sort"
	"time"

	"github.com/sky-flux/adept"
)

// review is the internal representation of one review event for training.
type review struct {
	rating      adept.Rating
	elapsedDays float64   // days since previous review (0 for first).
	label       float64   // 0 if Again, 1 otherwise.
	reviewTime  time.Time // original timestamp, for replay.
}

// groupLogs splits review logs by card ID and sorts each card's reviews by
// time. Each review gets its elapsed days from the previous review and a
// binary recall label.
func groupLogs(logs []adept.ReviewLog) map[int64][]review {
	if len(logs) == 0 {
		return nil
	}

	byCard := make(map[int64][]adept.ReviewLog)
	for _, entry := range logs {
		byCard[entry.CardID] = append(byCard[entry.CardID], entry)
	}

	result := make(map[int64][]review, len(byCard))
	for cardID, cardLogs := range byCard {
		sort.Slice(cardLogs, func(i, j int) bool {
			return cardLogs[i].Timestamp.Before(cardLogs[j].Timestamp)
		})

		reviews := make([]review, len(cardLogs))
		for i, entry := range cardLogs {
			var elapsed float64
			if i > 0 {
				elapsed = entry.Timestamp.Sub(cardLogs[i-1].Timestamp).Hours() / 24.0
			}

			label := 1.0
			if entry.Rating == adept.Again {
				label = 0.0
			}

			reviews[i] = review{
				rating:      entry.Rating,
				elapsedDays: elapsed,
				label:       label,
				reviewTime:  entry.Timestamp,
			}
		}
		result[cardID] = reviews
	}

	return result
}

// countCrossDayReviews counts reviews with elapsed_days >= 1. Only those
// carry a retention signal; the first review of a card never does.
func countCrossDayReviews(data map[int64][]review) int {
	count := 0
	for _, reviews := range data {
		for _, r := range reviews {
			if r.elapsedDays >= 1.0 {
				count++
			}
		}
	}
	return count
}
