package adept

import (
	"errors"
	"math"
	"testing"
)

func mustEstimator(t *testing.T, cfg EstimatorConfig) *Estimator {
	t.Helper()
	e, err := NewEstimator(cfg)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	return e
}

// --- NewEstimator ---

func TestNewEstimatorDefault(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	if e.priorSE != DefaultPriorSE {
		t.Errorf("priorSE = %v, want %v", e.priorSE, DefaultPriorSE)
	}
	if e.seFloor != DefaultSEFloor {
		t.Errorf("seFloor = %v, want %v", e.seFloor, DefaultSEFloor)
	}
}

func TestNewEstimatorInvalid(t *testing.T) {
	cases := []EstimatorConfig{
		{PriorSE: -1},
		{SEFloor: -0.1},
		{PriorSE: 0.2, SEFloor: 0.5}, // floor above prior
		{MaxStep: -0.5},
		{Gain: -1},
		{PriorSE: math.NaN()},
	}
	for _, cfg := range cases {
		if _, err := NewEstimator(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewEstimator(%+v) err = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

// --- Update ---

// Fresh state, matched item, correct answer: θ̂ rises above 0 and SE
// shrinks below the prior.
func TestUpdateCorrectAtPrior(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")

	next, err := e.Update(state, true, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if next.Theta <= 0 {
		t.Errorf("θ̂ = %.4f, want > 0 after a correct answer", next.Theta)
	}
	if next.SE >= 0.8 {
		t.Errorf("SE = %.4f, want < 0.8 after an informative attempt", next.SE)
	}
	if next.ItemsAttempted != 1 {
		t.Errorf("ItemsAttempted = %d, want 1", next.ItemsAttempted)
	}
	if next.LastProbeDifficulty == nil || *next.LastProbeDifficulty != 0 {
		t.Errorf("LastProbeDifficulty = %v, want 0", next.LastProbeDifficulty)
	}
}

func TestUpdateIncorrectMovesDown(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	next, err := e.Update(NewObjectiveState("obj"), false, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if next.Theta >= 0 {
		t.Errorf("θ̂ = %.4f, want < 0 after an incorrect answer", next.Theta)
	}
}

// SE never increases across any attempt sequence.
func TestUpdateSENonIncreasing(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")

	outcomes := []bool{true, false, true, true, false, false, true, false, true, true}
	difficulties := []float64{0, 0.5, -0.5, 1.0, -1.0, 0.2, 0.8, -0.3, 0.1, 0.6}

	for i := range outcomes {
		next, err := e.Update(state, outcomes[i], difficulties[i])
		if err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
		if next.SE > state.SE {
			t.Fatalf("attempt %d: SE grew from %.4f to %.4f", i, state.SE, next.SE)
		}
		state = next
	}
}

func TestUpdateSEFloor(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	for i := 0; i < 200; i++ {
		var err error
		state, err = e.Update(state, i%2 == 0, state.Theta) // always maximally informative
		if err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}
	if state.SE < DefaultSEFloor-epsilon {
		t.Errorf("SE = %.4f fell below the floor %.2f", state.SE, DefaultSEFloor)
	}
}

func TestUpdateBoundedStep(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{MaxStep: 0.5})
	// A very easy item answered wrong: raw step would be huge, must clamp.
	next, err := e.Update(NewObjectiveState("obj"), false, -3.0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if math.Abs(next.Theta) > 0.5+epsilon {
		t.Errorf("θ̂ moved %.4f, beyond the 0.5 step bound", next.Theta)
	}
}

func TestUpdateMissingDifficultyFallsBack(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")

	// Two calibrated probes at difficulty 1.0 establish the running average.
	var err error
	for i := 0; i < 2; i++ {
		state, err = e.Update(state, true, 1.0)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	assertFloat(t, "AvgDifficulty", state.AvgDifficulty, 1.0)

	// NaN marks an uncalibrated item → average difficulty is used.
	next, err := e.Update(state, true, math.NaN())
	if err != nil {
		t.Fatalf("Update with NaN difficulty: %v", err)
	}
	if next.LastProbeDifficulty == nil {
		t.Fatal("LastProbeDifficulty not recorded")
	}
	assertFloat(t, "fallback difficulty", *next.LastProbeDifficulty, 1.0)
}

func TestUpdateNonFiniteRejected(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")

	for _, b := range []float64{math.Inf(1), math.Inf(-1)} {
		got, err := e.Update(state, true, b)
		if !errors.Is(err, ErrNumericInstability) {
			t.Errorf("Update(difficulty=%v) err = %v, want ErrNumericInstability", b, err)
		}
		if got.Theta != state.Theta || got.SE != state.SE || got.ItemsAttempted != state.ItemsAttempted {
			t.Errorf("state changed on rejected update")
		}
	}

	corrupt := state
	corrupt.Theta = math.NaN()
	if _, err := e.Update(corrupt, true, 0); !errors.Is(err, ErrNumericInstability) {
		t.Errorf("Update on NaN θ̂ err = %v, want ErrNumericInstability", err)
	}
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	state.RecentSEs = []float64{0.8}

	if _, err := e.Update(state, true, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(state.RecentSEs) != 1 || state.Theta != 0 || state.ItemsAttempted != 0 {
		t.Error("input state mutated by Update")
	}
}

func TestUpdateRecentSEsBounded(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	var err error
	for i := 0; i < recentSECap*3; i++ {
		state, err = e.Update(state, true, state.Theta)
		if err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}
	if len(state.RecentSEs) != recentSECap {
		t.Errorf("RecentSEs length = %d, want %d", len(state.RecentSEs), recentSECap)
	}
}

// --- MasteryProbability ---

func TestMasteryProbabilityAtCutoff(t *testing.T) {
	assertFloat(t, "Φ(0)", MasteryProbability(0, 0.8, 0), 0.5)
}

func TestMasteryProbabilityMonotoneInTheta(t *testing.T) {
	prev := 0.0
	for _, theta := range []float64{-1, -0.5, 0, 0.5, 1, 2} {
		p := MasteryProbability(theta, 0.3, 0)
		if p <= prev && theta > -1 {
			t.Errorf("P(θ̂=%.1f) = %.4f not increasing", theta, p)
		}
		prev = p
	}
}

func TestMasteryProbabilityMonotoneInSE(t *testing.T) {
	// θ̂ above the cutoff: certainty grows as SE shrinks.
	prev := 0.0
	for _, se := range []float64{0.8, 0.5, 0.3, 0.2, 0.15} {
		p := MasteryProbability(0.5, se, 0)
		if p <= prev {
			t.Errorf("P(se=%.2f) = %.4f not increasing as SE shrinks", se, p)
		}
		prev = p
	}
}

func TestMasteryProbabilityDegenerateSE(t *testing.T) {
	if got := MasteryProbability(1, 0, 0); got != 1 {
		t.Errorf("P(θ̂>cutoff, se=0) = %v, want 1", got)
	}
	if got := MasteryProbability(-1, 0, 0); got != 0 {
		t.Errorf("P(θ̂<cutoff, se=0) = %v, want 0", got)
	}
	if got := MasteryProbability(0, 0, 0); got != 0.5 {
		t.Errorf("P(θ̂=cutoff, se=0) = %v, want 0.5", got)
	}
}

// --- FisherInformation ---

func TestFisherInformationPeaksAtAbility(t *testing.T) {
	matched := FisherInformation(0.5, 0.5)
	assertFloat(t, "I(θ, θ)", matched, 0.25)
	for _, b := range []float64{-1, 0, 1, 2} {
		if b == 0.5 {
			continue
		}
		if got := FisherInformation(0.5, b); got >= matched {
			t.Errorf("I(0.5, %.1f) = %.4f, should be below the matched peak", b, got)
		}
	}
}

// --- InflateSE ---

func TestInflateSEGrowsTowardPrior(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	state.SE = 0.18

	inflated := e.InflateSE(state, 0.5)
	if inflated.SE <= 0.18 {
		t.Errorf("SE = %.4f, want growth above 0.18", inflated.SE)
	}
	if inflated.SE > DefaultPriorSE {
		t.Errorf("SE = %.4f, must not exceed the prior %.2f", inflated.SE, DefaultPriorSE)
	}
}

func TestInflateSEFullDecayReachesPrior(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	state.SE = 0.18
	assertFloat(t, "SE at R=0", e.InflateSE(state, 0).SE, DefaultPriorSE)
}

func TestInflateSENoDecayNoChange(t *testing.T) {
	e := mustEstimator(t, EstimatorConfig{})
	state := NewObjectiveState("obj")
	state.SE = 0.18
	assertFloat(t, "SE at R=1", e.InflateSE(state, 1).SE, 0.18)
}
