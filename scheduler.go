package adept

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// DefaultInitialStability is the first-review stability table in days,
// indexed Again..Easy.
var DefaultInitialStability = [4]float64{0.4, 1.0, 3.0, 7.0}

// learningHorizon caps the interval of cards still in Learning or
// Relearning: they come back within a day regardless of stability.
const learningHorizon = 24 * time.Hour

// minInterval keeps the due date strictly ahead of the review timestamp.
const minInterval = time.Minute

// SchedulerConfig configures a retention Scheduler.
// Zero values produce sensible defaults; see field comments.
type SchedulerConfig struct {
	Weights          Weights    `json:"weights" yaml:"weights"`                     // zero → DefaultWeights
	InitialStability [4]float64 `json:"initial_stability" yaml:"initial_stability"` // zero → DefaultInitialStability
	TargetRetention  float64    `json:"target_retention" yaml:"target_retention"`   // zero → 0.9
	MaximumInterval  int        `json:"maximum_interval" yaml:"maximum_interval"`   // days; zero → 36500
	DisableFuzzing   bool       `json:"disable_fuzzing" yaml:"disable_fuzzing"`     // zero false → fuzz enabled

	// Logger receives the data-quality signal when a review update is
	// discarded for numeric instability. Nil → no-op logger.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Scheduler applies the memory-decay model to rated reviews and computes
// due dates targeting a configured retention fraction.
type Scheduler struct {
	algo            algo
	targetRetention float64
	maximumInterval int
	disableFuzzing  bool
	logger          *zap.Logger
	rng             *rand.Rand
}

// NewScheduler creates a Scheduler from the given config.
// Zero-value fields are filled with defaults; invalid values return an error.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	w := cfg.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}

	initStab := cfg.InitialStability
	if initStab == ([4]float64{}) {
		initStab = DefaultInitialStability
	}
	for i, s := range initStab {
		if s <= 0 || !isFinite(s) {
			return nil, fmt.Errorf("%w: initial stability[%s] = %f must be positive",
				ErrInvalidConfig, Rating(i+1), s)
		}
	}

	target := cfg.TargetRetention
	if target == 0 {
		target = 0.9
	}
	if target <= 0 || target >= 1 {
		return nil, fmt.Errorf("%w: target retention %f out of range (0, 1)", ErrInvalidConfig, target)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 0 {
		return nil, fmt.Errorf("%w: maximum interval %d must be positive", ErrInvalidConfig, maxIvl)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		algo:            newAlgo(w, initStab),
		targetRetention: target,
		maximumInterval: maxIvl,
		disableFuzzing:  cfg.DisableFuzzing,
		logger:          logger,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Review processes a rated review of the card at the given time.
// It returns the updated card and an append-only review log entry; the
// input card is never mutated.
//
// An invalid rating returns ErrInvalidRating with the card unchanged. A
// review that would produce an invalid memory state (non-finite or
// non-positive stability) is discarded with ErrNumericInstability — the
// prior card is retained and the event logged as a data-quality signal.
func (s *Scheduler) Review(card Card, rating Rating, now time.Time) (Card, ReviewLog, error) {
	if !rating.IsValid() {
		return card, ReviewLog{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	c := card.clone()
	log := ReviewLog{
		CardID:    c.CardID,
		Rating:    rating,
		Timestamp: now,
		PreState:  c.State,
	}
	if card.Stability != nil {
		v := *card.Stability
		log.PreStability = &v
	}
	if card.Difficulty != nil {
		v := *card.Difficulty
		log.PreDifficulty = &v
	}

	var elapsedDays float64
	if c.LastReview != nil {
		elapsedDays = now.Sub(*c.LastReview).Hours() / 24.0
	}

	s.updateMemory(&c, rating, elapsedDays)

	if !isFinite(*c.Stability) || *c.Stability <= 0 ||
		!isFinite(*c.Difficulty) || *c.Difficulty < 0 || *c.Difficulty > 10 {
		s.logger.Warn("discarding numerically unstable review update",
			zap.Int64("card_id", card.CardID),
			zap.String("rating", rating.String()),
			zap.Float64("elapsed_days", elapsedDays))
		return card, ReviewLog{}, fmt.Errorf("%w: card %d review produced S=%f D=%f",
			ErrNumericInstability, card.CardID, *c.Stability, *c.Difficulty)
	}

	s.transition(&c, rating)
	interval := s.interval(&c)

	c.Due = now.Add(interval)
	c.LastReview = &now
	c.Reps++

	log.PostState = c.State
	log.PostStability = *c.Stability
	log.PostDifficulty = *c.Difficulty
	return c, log, nil
}

// updateMemory applies the decay model to stability and difficulty.
func (s *Scheduler) updateMemory(c *Card, rating Rating, elapsedDays float64) {
	if c.Stability == nil {
		// First review: initialize from the per-rating table.
		c.setStability(s.algo.initStability(rating))
		c.setDifficulty(initialDifficulty)
		return
	}

	stability := *c.Stability
	difficulty := *c.Difficulty
	r := s.algo.retrievability(elapsedDays, stability)

	c.setStability(s.algo.nextStability(difficulty, stability, r, rating))
	c.setDifficulty(s.algo.nextDifficulty(difficulty, rating))
}

// transition applies the card state machine.
//
//	New, Learning:  Again/Hard stay Learning; Good/Easy graduate to Review.
//	Review:         Again is a lapse → Relearning; otherwise stays Review.
//	Relearning:     Again/Hard stay Relearning; Good/Easy return to Review.
func (s *Scheduler) transition(c *Card, rating Rating) {
	switch c.State {
	case New, Learning:
		if rating >= Good {
			c.State = Review
		} else {
			c.State = Learning
		}
	case Review:
		if rating == Again {
			c.State = Relearning
			c.Lapses++
		}
	case Relearning:
		if rating >= Good {
			c.State = Review
		}
	}
}

// interval computes the time until the next review: the point at which
// retrievability decays to the target retention, capped by the maximum
// interval, the learning horizon for non-Review cards, and fuzzed for
// Review cards unless fuzzing is disabled.
func (s *Scheduler) interval(c *Card) time.Duration {
	days := s.algo.intervalDays(*c.Stability, s.targetRetention)
	days = math.Min(days, float64(s.maximumInterval))

	if c.State == Review && !s.disableFuzzing {
		if whole := int(days); whole >= 1 {
			days = float64(applyFuzz(whole, s.maximumInterval, s.rng))
		}
	}

	interval := time.Duration(days * 24 * float64(time.Hour))
	if c.State == Learning || c.State == Relearning {
		interval = min(interval, learningHorizon)
	}
	return max(interval, minInterval)
}

// Retrievability returns the card's recall probability at the given time:
// R(t) = 0.9^(t/S) with t in days since the last review. A card that has
// never been reviewed has no memory trace and returns 0.
func (s *Scheduler) Retrievability(card Card, now time.Time) float64 {
	if card.LastReview == nil || card.Stability == nil {
		return 0
	}
	elapsed := now.Sub(*card.LastReview).Hours() / 24.0
	return s.algo.retrievability(elapsed, *card.Stability)
}

// Preview returns the card state that would result from each possible
// rating at the given time. Useful for showing interval choices up front.
func (s *Scheduler) Preview(card Card, now time.Time) (map[Rating]Card, error) {
	result := make(map[Rating]Card, len(Ratings))
	for _, r := range Ratings {
		c, _, err := s.Review(card, r, now)
		if err != nil {
			return nil, err
		}
		result[r] = c
	}
	return result, nil
}

// Reschedule replays the given review logs in order to rebuild the card's
// scheduling state, e.g. after a weight change. Returns ErrCardIDMismatch
// if any log belongs to a different card.
func (s *Scheduler) Reschedule(card Card, logs []ReviewLog) (Card, error) {
	c := card.clone()
	for _, entry := range logs {
		if entry.CardID != c.CardID {
			return Card{}, fmt.Errorf("%w: card %d, log %d", ErrCardIDMismatch, c.CardID, entry.CardID)
		}
		var err error
		c, _, err = s.Review(c, entry.Rating, entry.Timestamp)
		if err != nil {
			return Card{}, err
		}
	}
	return c, nil
}
