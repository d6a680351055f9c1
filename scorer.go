package adept

import (
	"fmt"
	"math"
	"sort"
)

// Candidate is one item under consideration for the next probe, with every
// external signal the scorer needs already materialized by the caller.
type Candidate struct {
	ItemID        string   `json:"item_id"`
	ObjectiveIDs  []string `json:"objective_ids"`
	Difficulty    float64  `json:"difficulty"`
	MedianTimeSec float64  `json:"median_time_sec"`

	// BlueprintMultiplier boosts objectives under-represented relative to
	// the exam-blueprint target distribution (>1) and suppresses
	// over-represented ones (<1). Zero → 1 (on target).
	BlueprintMultiplier float64 `json:"blueprint_multiplier"`

	Exposure Exposure `json:"exposure"`

	// FatigueScalar is the session-position discount, typically produced
	// by Scorer.FatigueAt. Zero → 1 (no discount).
	FatigueScalar float64 `json:"fatigue_scalar"`
}

// ScoreResult carries every numeric signal behind one candidate's score.
// The explanation layer renders its "why this next" rationale from these
// fields alone; there is no hidden state.
type ScoreResult struct {
	ItemID              string  `json:"item_id"`
	ObjectiveID         string  `json:"objective_id"` // primary objective used for information.
	Information         float64 `json:"information"`
	BlueprintMultiplier float64 `json:"blueprint_multiplier"`
	ExposureMultiplier  float64 `json:"exposure_multiplier"`
	FatigueScalar       float64 `json:"fatigue_scalar"`
	Score               float64 `json:"score"`
	Eligible            bool    `json:"eligible"`
}

// ExposureFunc maps an exposure snapshot to a multiplier in [0, 1].
// Zero means in cooldown (ineligible).
type ExposureFunc func(Exposure) float64

// FatigueFunc maps a zero-based session position to a discount in (0, 1].
type FatigueFunc func(position int) float64

// ScorerConfig configures a Scorer.
// Zero values produce sensible defaults; see field comments.
type ScorerConfig struct {
	CooldownHours         float64 `json:"cooldown_hours" yaml:"cooldown_hours"`                     // zero → 2
	DailyCap              int     `json:"daily_cap" yaml:"daily_cap"`                               // zero → 4; Last24h at or above this → ineligible
	ExposureHalfLifeHours float64 `json:"exposure_half_life_hours" yaml:"exposure_half_life_hours"` // zero → 12
	FatigueFloor          float64 `json:"fatigue_floor" yaml:"fatigue_floor"`                       // zero → 0.4
	FatigueDecay          float64 `json:"fatigue_decay" yaml:"fatigue_decay"`                       // zero → 0.05 per position
	SampleTemperature     float64 `json:"sample_temperature" yaml:"sample_temperature"`             // zero → 1.0
	UrgencyHalfLifeHours  float64 `json:"urgency_half_life_hours" yaml:"urgency_half_life_hours"`   // zero → 48

	// ExposureFn and FatigueFn override the default shaping functions.
	// Overrides must keep the documented qualitative shape: exposure rises
	// toward 1 as recency/frequency decay, fatigue decreases with session
	// position down to a floor.
	ExposureFn ExposureFunc `json:"-" yaml:"-"`
	FatigueFn  FatigueFunc  `json:"-" yaml:"-"`
}

// Scorer ranks candidates by expected measurement value: Fisher
// information at the candidate's difficulty, shaped by blueprint coverage,
// exposure cooldown, and session fatigue.
type Scorer struct {
	cooldownHours   float64
	dailyCap        int
	exposureHalf    float64
	fatigueFloor    float64
	fatigueDecay    float64
	temperature     float64
	urgencyHalf     float64
	exposureFn      ExposureFunc
	fatigueFn       FatigueFunc
}

// NewScorer creates a Scorer from the given config.
// Zero-value fields are filled with defaults; invalid values return an error.
func NewScorer(cfg ScorerConfig) (*Scorer, error) {
	s := &Scorer{
		cooldownHours: cfg.CooldownHours,
		dailyCap:      cfg.DailyCap,
		exposureHalf:  cfg.ExposureHalfLifeHours,
		fatigueFloor:  cfg.FatigueFloor,
		fatigueDecay:  cfg.FatigueDecay,
		temperature:   cfg.SampleTemperature,
		urgencyHalf:   cfg.UrgencyHalfLifeHours,
	}
	if s.cooldownHours == 0 {
		s.cooldownHours = 2
	}
	if s.dailyCap == 0 {
		s.dailyCap = 4
	}
	if s.exposureHalf == 0 {
		s.exposureHalf = 12
	}
	if s.fatigueFloor == 0 {
		s.fatigueFloor = 0.4
	}
	if s.fatigueDecay == 0 {
		s.fatigueDecay = 0.05
	}
	if s.temperature == 0 {
		s.temperature = 1.0
	}
	if s.urgencyHalf == 0 {
		s.urgencyHalf = 48
	}

	if s.cooldownHours < 0 {
		return nil, fmt.Errorf("%w: cooldown hours %f must not be negative", ErrInvalidConfig, s.cooldownHours)
	}
	if s.dailyCap < 1 {
		return nil, fmt.Errorf("%w: daily cap %d must be at least 1", ErrInvalidConfig, s.dailyCap)
	}
	if s.exposureHalf <= 0 {
		return nil, fmt.Errorf("%w: exposure half-life %f must be positive", ErrInvalidConfig, s.exposureHalf)
	}
	if s.fatigueFloor < 0 || s.fatigueFloor > 1 {
		return nil, fmt.Errorf("%w: fatigue floor %f must be in (0, 1]", ErrInvalidConfig, s.fatigueFloor)
	}
	if s.fatigueDecay < 0 {
		return nil, fmt.Errorf("%w: fatigue decay %f must not be negative", ErrInvalidConfig, s.fatigueDecay)
	}
	if s.temperature <= 0 {
		return nil, fmt.Errorf("%w: sample temperature %f must be positive", ErrInvalidConfig, s.temperature)
	}
	if s.urgencyHalf <= 0 {
		return nil, fmt.Errorf("%w: urgency half-life %f must be positive", ErrInvalidConfig, s.urgencyHalf)
	}

	s.exposureFn = cfg.ExposureFn
	if s.exposureFn == nil {
		s.exposureFn = s.defaultExposure
	}
	s.fatigueFn = cfg.FatigueFn
	if s.fatigueFn == nil {
		s.fatigueFn = s.defaultFatigue
	}
	return s, nil
}

// defaultExposure is the cooldown function of recency and frequency:
// 0 while within the cooldown window or at the daily cap, then the product
// of a recency ramp and daily/weekly frequency discounts, rising toward 1
// as exposure decays.
func (s *Scorer) defaultExposure(exp Exposure) float64 {
	if exp.HoursSinceLast < 0 {
		// Never attempted.
		return 1
	}
	if exp.HoursSinceLast < s.cooldownHours {
		return 0
	}
	if exp.Last24h >= s.dailyCap {
		return 0
	}
	recency := 1 - math.Exp2(-(exp.HoursSinceLast-s.cooldownHours)/s.exposureHalf)
	daily := 1 / (1 + float64(max(exp.Last24h, 0)))
	weekly := 1 / (1 + float64(max(exp.Last7d, 0))/7)
	return recency * daily * weekly
}

// defaultFatigue is exp(-decay·position), clamped to the floor.
func (s *Scorer) defaultFatigue(position int) float64 {
	if position < 0 {
		position = 0
	}
	return math.Max(s.fatigueFloor, math.Exp(-s.fatigueDecay*float64(position)))
}

// FatigueAt returns the session-position discount callers stamp onto
// Candidate.FatigueScalar.
func (s *Scorer) FatigueAt(position int) float64 {
	return s.fatigueFn(position)
}

// Score ranks the candidates against the given objective states, highest
// score first with a deterministic item-ID tie-break. states maps
// objective ID to ability state; objectives without state score from the
// flat prior (θ̂=0).
//
// Score = information × blueprint × exposure × fatigue. A candidate in
// exposure cooldown has multiplier 0, Eligible=false, and always Score 0.
func (s *Scorer) Score(states map[string]ObjectiveState, candidates []Candidate) []ScoreResult {
	results := make([]ScoreResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, s.scoreOne(states, c))
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ItemID < results[j].ItemID
	})
	return results
}

func (s *Scorer) scoreOne(states map[string]ObjectiveState, c Candidate) ScoreResult {
	// Information against the best-informed objective the item targets.
	info := 0.0
	primary := ""
	for i, objID := range c.ObjectiveIDs {
		theta := 0.0
		if st, ok := states[objID]; ok {
			theta = st.Theta
		}
		if fi := FisherInformation(theta, c.Difficulty); i == 0 || fi > info {
			info = fi
			primary = objID
		}
	}

	bm := c.BlueprintMultiplier
	if bm == 0 {
		bm = 1
	}
	if bm < 0 {
		bm = 0
	}

	em := s.exposureFn(c.Exposure)
	em = math.Max(0, math.Min(em, 1))

	fs := c.FatigueScalar
	if fs <= 0 {
		fs = 1
	}
	fs = math.Max(s.fatigueFloor, math.Min(fs, 1))

	res := ScoreResult{
		ItemID:              c.ItemID,
		ObjectiveID:         primary,
		Information:         info,
		BlueprintMultiplier: bm,
		ExposureMultiplier:  em,
		FatigueScalar:       fs,
		Eligible:            em > 0,
	}
	if res.Eligible {
		res.Score = info * bm * em * fs
	}
	return res
}

// Next returns the greedy max-score eligible candidate, or
// ErrEmptyCandidatePool when every candidate is in cooldown. The error is
// a normal outcome: the caller decides the fallback.
func (s *Scorer) Next(states map[string]ObjectiveState, candidates []Candidate) (ScoreResult, error) {
	for _, res := range s.Score(states, candidates) {
		if res.Eligible {
			return res, nil
		}
	}
	return ScoreResult{}, ErrEmptyCandidatePool
}
