package adept

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
)

// MasteryState represents the stop-rule stage of an objective.
type MasteryState int

const (
	Probing  MasteryState = iota + 1 // Still serving probes.
	Mastered                         // Stop rule satisfied; no new probes.
)

var (
	masteryNames = [...]string{Probing: "Probing", Mastered: "Mastered"}
	masteryByName = map[string]MasteryState{
		"Probing":  Probing,
		"Mastered": Mastered,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = MasteryState(0)
	_ encoding.TextMarshaler   = MasteryState(0)
	_ encoding.TextUnmarshaler = (*MasteryState)(nil)
)

// IsValid reports whether m is a valid mastery state.
func (m MasteryState) IsValid() bool {
	return m == Probing || m == Mastered
}

// String returns "Probing" or "Mastered"; "MasteryState(n)" for invalid values.
func (m MasteryState) String() string {
	if m.IsValid() {
		return masteryNames[m]
	}
	return fmt.Sprintf("MasteryState(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m MasteryState) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("adept: invalid mastery state: %d", int(m))
	}
	return []byte(masteryNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MasteryState) UnmarshalText(text []byte) error {
	v, ok := masteryByName[string(text)]
	if !ok {
		return fmt.Errorf("adept: invalid mastery state: %q", text)
	}
	*m = v
	return nil
}

// MarshalJSON implements json.Marshaler. MasteryState serializes as a JSON string.
func (m MasteryState) MarshalJSON() ([]byte, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (m *MasteryState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("adept: invalid mastery state: %s", data)
	}
	return m.UnmarshalText([]byte(s))
}

// MasteryConfig holds the stop-rule thresholds.
// Zero values produce the documented defaults.
type MasteryConfig struct {
	MinItems         int     `json:"min_items" yaml:"min_items"`                   // zero → 12
	SEThreshold      float64 `json:"se_threshold" yaml:"se_threshold"`             // zero → 0.20
	DeltaSEThreshold float64 `json:"delta_se_threshold" yaml:"delta_se_threshold"` // zero → 0.02
	MasteryProb      float64 `json:"mastery_prob" yaml:"mastery_prob"`             // zero → 0.85
	ProbeWindow      float64 `json:"probe_window" yaml:"probe_window"`             // zero → 0.3
	Cutoff           float64 `json:"cutoff" yaml:"cutoff"`                         // θ cutoff; zero is a real value
}

func (c MasteryConfig) withDefaults() MasteryConfig {
	if c.MinItems == 0 {
		c.MinItems = 12
	}
	if c.SEThreshold == 0 {
		c.SEThreshold = 0.20
	}
	if c.DeltaSEThreshold == 0 {
		c.DeltaSEThreshold = 0.02
	}
	if c.MasteryProb == 0 {
		c.MasteryProb = 0.85
	}
	if c.ProbeWindow == 0 {
		c.ProbeWindow = 0.3
	}
	return c
}

// Evaluate runs the mastery stop rule against the state and returns the
// resulting stage. It is a pure function with no side effects; callers
// assign the result to ObjectiveState.Mastery after every Update.
//
// Probing → Mastered requires all of:
//   - ItemsAttempted ≥ MinItems
//   - SE ≤ SEThreshold
//   - MasteryProbability(θ̂, SE, Cutoff) ≥ MasteryProb
//   - the delta between the last two recorded SEs ≤ DeltaSEThreshold
//     (convergence, not a lucky streak)
//   - the most recent probe's difficulty within ProbeWindow of θ̂
//     (the confirming evidence was informative, not trivially easy)
//
// A Mastered objective returns to Probing only when its SE has been pushed
// back above SEThreshold by the explicit forgetting signal
// (Estimator.InflateSE), never from mastery alone.
func Evaluate(state ObjectiveState, cfg MasteryConfig) MasteryState {
	cfg = cfg.withDefaults()

	if state.Mastery == Mastered {
		if state.SE > cfg.SEThreshold {
			return Probing
		}
		return Mastered
	}

	if state.ItemsAttempted < cfg.MinItems {
		return Probing
	}
	if state.SE > cfg.SEThreshold {
		return Probing
	}
	if MasteryProbability(state.Theta, state.SE, cfg.Cutoff) < cfg.MasteryProb {
		return Probing
	}
	n := len(state.RecentSEs)
	if n < 2 || math.Abs(state.RecentSEs[n-2]-state.RecentSEs[n-1]) > cfg.DeltaSEThreshold {
		return Probing
	}
	if state.LastProbeDifficulty == nil ||
		math.Abs(*state.LastProbeDifficulty-state.Theta) > cfg.ProbeWindow {
		return Probing
	}
	return Mastered
}
