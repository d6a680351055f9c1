package adept

import (
	"encoding/json"
	"testing"
)

func TestReviewLogJSONRoundTrip(t *testing.T) {
	pre := 3.0
	duration := int64(41000)
	log := ReviewLog{
		CardID:         7,
		Rating:         Good,
		Timestamp:      t0,
		PreState:       Review,
		PostState:      Review,
		PreStability:   &pre,
		PostStability:  5.8,
		PostDifficulty: 4.9,
		DurationMs:     &duration,
	}

	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back ReviewLog
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if back.CardID != log.CardID || back.Rating != log.Rating || !back.Timestamp.Equal(log.Timestamp) {
		t.Errorf("round trip changed the log: %+v", back)
	}
	if back.PreStability == nil || *back.PreStability != 3.0 {
		t.Errorf("pre stability = %v, want 3.0", back.PreStability)
	}
	if back.PreDifficulty != nil {
		t.Error("nil pre-difficulty should survive the round trip")
	}
	if back.DurationMs == nil || *back.DurationMs != 41000 {
		t.Errorf("duration = %v, want 41000", back.DurationMs)
	}
}

// First-review logs carry nil pre-state numbers and omit the duration.
func TestReviewLogFirstReviewShape(t *testing.T) {
	s := mustScheduler(t, SchedulerConfig{DisableFuzzing: true})
	_, log := mustReview(t, s, NewCard(9, "unit", t0), Good, t0)

	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["pre_stability"] != nil {
		t.Errorf("pre_stability = %v, want null", decoded["pre_stability"])
	}
	if _, present := decoded["duration_ms"]; present {
		t.Error("duration_ms should be omitted when unset")
	}
}
