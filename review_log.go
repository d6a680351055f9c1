package adept

import "time"

// ReviewLog records a single rated review of a card, including the memory
// state before and after. Logs are append-only; the core only ever reads
// them back for replay (Scheduler.Reschedule) and the calibrate subpackage
// consumes them to fit retention weights.
type ReviewLog struct {
	CardID        int64     `json:"card_id"`
	Rating        Rating    `json:"rating"`
	Timestamp     time.Time `json:"timestamp"`
	PreState      CardState `json:"pre_state"`
	PostState     CardState `json:"post_state"`
	PreStability  *float64  `json:"pre_stability"` // nil on first review.
	PostStability float64   `json:"post_stability"`
	PreDifficulty *float64  `json:"pre_difficulty"` // nil on first review.
	PostDifficulty float64  `json:"post_difficulty"`
	DurationMs    *int64    `json:"duration_ms,omitempty"` // optional review duration.
}
