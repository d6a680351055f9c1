package adept

import (
	"sort"
	"time"
)

// DefaultReviewCost is the per-card time estimate used when no cost
// function is supplied to BuildQueue.
const DefaultReviewCost = 30 * time.Second

// CostFunc estimates the review time of one card, e.g. from the owning
// unit's median completion time.
type CostFunc func(Card) time.Duration

// QueueEntry is one scheduled review in the retention queue.
type QueueEntry struct {
	Card        Card          `json:"card"`
	Overdue     bool          `json:"overdue"`
	OverdueDays float64       `json:"overdue_days"` // 0 when not overdue.
	DueIn       time.Duration `json:"due_in"`       // 0 when overdue.
	EstCost     time.Duration `json:"est_cost"`
}

// BuildQueue assembles the time-boxed review queue for a session starting
// at now: overdue cards first, most overdue leading, then upcoming cards
// soonest-due first, with a deterministic card-ID tie-break. Cards are
// taken until the cumulative estimated cost reaches budgetMinutes, so the
// queue never exceeds the budget by more than one card's cost.
//
// cost estimates per-card review time; nil → DefaultReviewCost for every
// card. A non-positive budget yields an empty queue.
func BuildQueue(cards []Card, now time.Time, budgetMinutes float64, cost CostFunc) []QueueEntry {
	if budgetMinutes <= 0 || len(cards) == 0 {
		return nil
	}
	if cost == nil {
		cost = func(Card) time.Duration { return DefaultReviewCost }
	}

	entries := make([]QueueEntry, 0, len(cards))
	for _, c := range cards {
		e := QueueEntry{Card: c, EstCost: cost(c)}
		if !c.Due.After(now) {
			e.Overdue = true
			e.OverdueDays = now.Sub(c.Due).Hours() / 24.0
		} else {
			e.DueIn = c.Due.Sub(now)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Overdue != b.Overdue {
			return a.Overdue
		}
		if a.Overdue {
			if a.OverdueDays != b.OverdueDays {
				return a.OverdueDays > b.OverdueDays
			}
		} else if a.DueIn != b.DueIn {
			return a.DueIn < b.DueIn
		}
		return a.Card.CardID < b.Card.CardID
	})

	budget := time.Duration(budgetMinutes * float64(time.Minute))
	var taken time.Duration
	queue := make([]QueueEntry, 0, len(entries))
	for _, e := range entries {
		if taken >= budget {
			break
		}
		queue = append(queue, e)
		taken += e.EstCost
	}
	return queue
}
