package adept

import "time"

// Card represents one unit's spaced-repetition memory state.
//
// Stability is measured in days and is strictly positive once the card has
// been reviewed. Difficulty lives on a [0, 10] scale. Retrievability is
// never stored: it is always recomputed from the elapsed time since
// LastReview (see Scheduler.Retrievability).
type Card struct {
	CardID     int64      `json:"card_id" yaml:"card_id"`
	UnitID     string     `json:"unit_id" yaml:"unit_id"`
	State      CardState  `json:"state" yaml:"state"`
	Stability  *float64   `json:"stability" yaml:"stability"`   // nil before first review.
	Difficulty *float64   `json:"difficulty" yaml:"difficulty"` // nil before first review.
	Due        time.Time  `json:"due" yaml:"due"`
	Reps       int        `json:"reps" yaml:"reps"`
	Lapses     int        `json:"lapses" yaml:"lapses"`
	LastReview *time.Time `json:"last_review" yaml:"last_review"` // nil before first review.
}

// NewCard creates a card in the New state for the given unit.
// Due is set to now (immediately reviewable).
func NewCard(id int64, unitID string, now time.Time) Card {
	return Card{
		CardID: id,
		UnitID: unitID,
		State:  New,
		Due:    now,
	}
}

// clone returns a deep copy of the card. Pointer fields are copied by value.
func (c Card) clone() Card {
	out := c
	if c.Stability != nil {
		v := *c.Stability
		out.Stability = &v
	}
	if c.Difficulty != nil {
		v := *c.Difficulty
		out.Difficulty = &v
	}
	if c.LastReview != nil {
		v := *c.LastReview
		out.LastReview = &v
	}
	return out
}

func (c *Card) setStability(s float64) {
	c.Stability = &s
}

func (c *Card) setDifficulty(d float64) {
	c.Difficulty = &d
}
