package adept

import "time"

// recentAttemptCap bounds the per-item attempt history kept for exposure
// windows. 32 entries comfortably covers a 7-day window at any plausible
// serve rate for a single item.
const recentAttemptCap = 32

// AttemptMark is one bounded-history entry on ItemStats.
type AttemptMark struct {
	Timestamp time.Time `json:"timestamp"`
	Correct   bool      `json:"correct"`
}

// ItemStats tracks one learner's history with one item. The bounded Recent
// ring derives the sliding exposure windows; counts computed from it are
// never negative.
type ItemStats struct {
	ItemID      string        `json:"item_id"`
	Attempts    int           `json:"attempts"`
	Correct     int           `json:"correct"`
	LastAttempt time.Time     `json:"last_attempt"`
	Recent      []AttemptMark `json:"recent"` // bounded, newest last.
}

// Record returns a copy of the stats with one attempt folded in.
func (s ItemStats) Record(ts time.Time, correct bool) ItemStats {
	out := s
	out.Recent = append(append([]AttemptMark(nil), s.Recent...), AttemptMark{Timestamp: ts, Correct: correct})
	if len(out.Recent) > recentAttemptCap {
		out.Recent = out.Recent[len(out.Recent)-recentAttemptCap:]
	}
	out.Attempts++
	if correct {
		out.Correct++
	}
	if ts.After(out.LastAttempt) {
		out.LastAttempt = ts
	}
	return out
}

// Exposure is the snapshot of recent-exposure signals a Candidate carries
// into scoring. HoursSinceLast is negative when the item has never been
// attempted.
type Exposure struct {
	Last24h           int     `json:"last_24h"`
	Last7d            int     `json:"last_7d"`
	HoursSinceLast    float64 `json:"hours_since_last"`
	RecentCorrectRate float64 `json:"recent_correct_rate"`
	SE                float64 `json:"se"` // current SE of the relevant objective.
}

// ExposureAt derives the exposure snapshot from the bounded history as of
// now. objectiveSE is stamped through for the scorer.
func (s ItemStats) ExposureAt(now time.Time, objectiveSE float64) Exposure {
	exp := Exposure{HoursSinceLast: -1, SE: objectiveSE}

	if s.LastAttempt.IsZero() && len(s.Recent) == 0 {
		return exp
	}

	var recentCorrect, recentTotal int
	for _, m := range s.Recent {
		age := now.Sub(m.Timestamp)
		if age < 0 {
			continue
		}
		if age <= 24*time.Hour {
			exp.Last24h++
		}
		if age <= 7*24*time.Hour {
			exp.Last7d++
		}
		recentTotal++
		if m.Correct {
			recentCorrect++
		}
	}
	if recentTotal > 0 {
		exp.RecentCorrectRate = float64(recentCorrect) / float64(recentTotal)
	}

	last := s.LastAttempt
	if last.IsZero() && len(s.Recent) > 0 {
		last = s.Recent[len(s.Recent)-1].Timestamp
	}
	if !last.IsZero() && !now.Before(last) {
		exp.HoursSinceLast = now.Sub(last).Hours()
	}
	return exp
}
