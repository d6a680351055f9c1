package adept

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Default prior for a freshly created objective: a flat ability estimate
// with high uncertainty.
const (
	DefaultPriorSE = 0.8
	DefaultSEFloor = 0.15
)

// recentSECap bounds the ring of recent standard errors kept on an
// ObjectiveState. Only the last two drive the convergence check; the rest
// are diagnostic.
const recentSECap = 8

// ObjectiveState is the per-(learner, objective) ability estimate.
//
// Theta is the latent ability on the same scale as item difficulty; SE is
// the uncertainty of that estimate. States are created lazily on a
// learner's first attempt at an objective and never deleted. The struct is
// a value: Estimator methods return updated copies and never mutate their
// input.
type ObjectiveState struct {
	ObjectiveID         string       `json:"objective_id"`
	Theta               float64      `json:"theta"`
	SE                  float64      `json:"se"`
	ItemsAttempted      int          `json:"items_attempted"`
	RecentSEs           []float64    `json:"recent_ses"`            // bounded, newest last.
	LastProbeDifficulty *float64     `json:"last_probe_difficulty"` // nil until first probe.
	AvgDifficulty       float64      `json:"avg_difficulty"`        // running mean of probe difficulties.
	Mastery             MasteryState `json:"mastery"`
}

// NewObjectiveState creates a fresh state for the given objective with the
// flat prior (θ=0, SE=DefaultPriorSE) in the Probing stage.
func NewObjectiveState(objectiveID string) ObjectiveState {
	return ObjectiveState{
		ObjectiveID: objectiveID,
		SE:          DefaultPriorSE,
		Mastery:     Probing,
	}
}

// clone returns a deep copy of the state.
func (s ObjectiveState) clone() ObjectiveState {
	out := s
	out.RecentSEs = append([]float64(nil), s.RecentSEs...)
	if s.LastProbeDifficulty != nil {
		v := *s.LastProbeDifficulty
		out.LastProbeDifficulty = &v
	}
	return out
}

// EstimatorConfig configures an Estimator.
// Zero values produce sensible defaults; see field comments.
type EstimatorConfig struct {
	PriorSE float64 `json:"prior_se" yaml:"prior_se"` // zero → 0.8
	SEFloor float64 `json:"se_floor" yaml:"se_floor"` // zero → 0.15
	MaxStep float64 `json:"max_step" yaml:"max_step"` // zero → 0.5; bound on a single θ̂ move
	Gain    float64 `json:"gain" yaml:"gain"`         // zero → 1.0; scales the learning rate

	// Logger receives the data-quality signal when an update is discarded
	// for numeric instability. Nil → no-op logger.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Estimator maintains per-objective ability estimates under a
// one-parameter logistic (Rasch) response model.
type Estimator struct {
	priorSE float64
	seFloor float64
	maxStep float64
	gain    float64
	logger  *zap.Logger
}

// NewEstimator creates an Estimator from the given config.
// Zero-value fields are filled with defaults; invalid values return an error.
func NewEstimator(cfg EstimatorConfig) (*Estimator, error) {
	prior := cfg.PriorSE
	if prior == 0 {
		prior = DefaultPriorSE
	}
	floor := cfg.SEFloor
	if floor == 0 {
		floor = DefaultSEFloor
	}
	maxStep := cfg.MaxStep
	if maxStep == 0 {
		maxStep = 0.5
	}
	gain := cfg.Gain
	if gain == 0 {
		gain = 1.0
	}

	if prior < 0 || !isFinite(prior) {
		return nil, fmt.Errorf("%w: prior SE %f must be positive", ErrInvalidConfig, prior)
	}
	if floor < 0 || floor > prior || !isFinite(floor) {
		return nil, fmt.Errorf("%w: SE floor %f must be in (0, prior SE]", ErrInvalidConfig, floor)
	}
	if maxStep < 0 || !isFinite(maxStep) {
		return nil, fmt.Errorf("%w: max step %f must be positive", ErrInvalidConfig, maxStep)
	}
	if gain < 0 || !isFinite(gain) {
		return nil, fmt.Errorf("%w: gain %f must be positive", ErrInvalidConfig, gain)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Estimator{
		priorSE: prior,
		seFloor: floor,
		maxStep: maxStep,
		gain:    gain,
		logger:  logger,
	}, nil
}

// NewState creates a fresh objective state using the estimator's prior.
func (e *Estimator) NewState(objectiveID string) ObjectiveState {
	return ObjectiveState{
		ObjectiveID: objectiveID,
		SE:          e.priorSE,
		Mastery:     Probing,
	}
}

// raschProbability returns P(correct | θ, b) = 1 / (1 + e^-(θ-b)).
func raschProbability(theta, difficulty float64) float64 {
	return 1.0 / (1.0 + math.Exp(-(theta - difficulty)))
}

// FisherInformation returns I(θ, b) = P·(1-P) under the Rasch model.
// It peaks at 0.25 when difficulty equals ability.
func FisherInformation(theta, difficulty float64) float64 {
	p := raschProbability(theta, difficulty)
	return p * (1 - p)
}

// Update applies one attempt outcome to the state and returns the updated
// copy. The input state is never mutated.
//
// difficulty is the item's calibrated difficulty on the θ scale. Pass NaN
// for an uncalibrated item: the objective's running average difficulty is
// used instead (0 before any probe).
//
// θ̂ moves by a bounded step proportional to (outcome − P)/I, scaled by a
// learning rate that shrinks with the accumulated information (SE² acts as
// the posterior variance). SE shrinks as SE/√(1+I), floored, and never
// grows from an update.
//
// Non-finite inputs, or a non-finite update result (for example from a
// zero-information item), discard the update: the input state is returned
// unchanged alongside ErrNumericInstability.
func (e *Estimator) Update(state ObjectiveState, correct bool, difficulty float64) (ObjectiveState, error) {
	if !isFinite(state.Theta) || !isFinite(state.SE) || state.SE <= 0 {
		return state, fmt.Errorf("%w: objective %q has θ̂=%f SE=%f",
			ErrNumericInstability, state.ObjectiveID, state.Theta, state.SE)
	}

	b := difficulty
	if math.IsNaN(b) {
		b = state.AvgDifficulty
	}
	if !isFinite(b) {
		return state, fmt.Errorf("%w: objective %q item difficulty %f",
			ErrNumericInstability, state.ObjectiveID, difficulty)
	}

	p := raschProbability(state.Theta, b)
	info := p * (1 - p)

	outcome := 0.0
	if correct {
		outcome = 1.0
	}

	// Learning rate shrinks as uncertainty shrinks: lr = gain·SE².
	lr := e.gain * state.SE * state.SE
	step := lr * (outcome - p) / info
	step = math.Max(-e.maxStep, math.Min(step, e.maxStep))

	theta := state.Theta + step
	se := state.SE / math.Sqrt(1+info)
	if se < e.seFloor {
		se = e.seFloor
	}
	if se > state.SE {
		se = state.SE
	}

	if !isFinite(theta) || !isFinite(se) || se <= 0 {
		e.logger.Warn("discarding numerically unstable ability update",
			zap.String("objective_id", state.ObjectiveID),
			zap.Float64("item_difficulty", b),
			zap.Float64("information", info),
			zap.Bool("correct", correct))
		return state, fmt.Errorf("%w: objective %q update produced θ̂=%f SE=%f",
			ErrNumericInstability, state.ObjectiveID, theta, se)
	}

	out := state.clone()
	out.Theta = theta
	out.SE = se
	out.ItemsAttempted++
	out.RecentSEs = pushBounded(out.RecentSEs, se, recentSECap)
	out.LastProbeDifficulty = &b
	out.AvgDifficulty += (b - out.AvgDifficulty) / float64(out.ItemsAttempted)
	return out, nil
}

// InflateSE is the explicit SE-growth signal from the forgetting model:
// when a mastered objective's retrievability has decayed, the caller
// inflates the ability uncertainty, which re-opens the mastery stop rule
// (see Evaluate). SE grows toward the prior in proportion to the lost
// retrievability and never beyond it. This is the only sanctioned path by
// which SE increases.
func (e *Estimator) InflateSE(state ObjectiveState, retrievability float64) ObjectiveState {
	r := math.Max(0, math.Min(retrievability, 1))
	se := state.SE + (e.priorSE-state.SE)*(1-r)
	if se > e.priorSE {
		se = e.priorSE
	}
	if se < state.SE {
		se = state.SE
	}

	out := state.clone()
	out.SE = se
	out.RecentSEs = pushBounded(out.RecentSEs, se, recentSECap)
	return out
}

// MasteryProbability returns P(true ability > cutoff) = Φ((θ̂−cutoff)/se),
// the standard normal CDF of the standardized margin. se must be positive;
// a non-positive se degenerates to a 0/0.5/1 step at the cutoff.
func MasteryProbability(theta, se, cutoff float64) float64 {
	if se <= 0 {
		switch {
		case theta > cutoff:
			return 1
		case theta < cutoff:
			return 0
		default:
			return 0.5
		}
	}
	return normalCDF((theta - cutoff) / se)
}

// normalCDF is Φ(x) for the standard normal distribution.
func normalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// pushBounded appends v to ring, dropping the oldest entries beyond capacity.
func pushBounded(ring []float64, v float64, capacity int) []float64 {
	ring = append(ring, v)
	if len(ring) > capacity {
		ring = ring[len(ring)-capacity:]
	}
	return ring
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
