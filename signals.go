package adept

// Signals is the structured bundle handed to the explanation/UI
// collaborator alongside a recommendation. Everything a rendered
// justification needs is here; nothing has to be re-derived.
type Signals struct {
	ItemID              string  `json:"item_id"`
	ObjectiveID         string  `json:"objective_id"`
	Information         float64 `json:"information"`
	BlueprintMultiplier float64 `json:"blueprint_multiplier"`
	ExposureMultiplier  float64 `json:"exposure_multiplier"`
	FatigueScalar       float64 `json:"fatigue_scalar"`
	Score               float64 `json:"score"`
	Theta               float64 `json:"theta"`
	SE                  float64 `json:"se"`
	MasteryProbability  float64 `json:"mastery_probability"`
	Overdue             bool    `json:"overdue"`
}

// BuildSignals assembles the explanation bundle for one scored
// recommendation. cutoff is the mastery θ cutoff (MasteryConfig.Cutoff);
// overdue reports whether the item's owning unit is past due for
// retention review.
func BuildSignals(state ObjectiveState, res ScoreResult, cutoff float64, overdue bool) Signals {
	return Signals{
		ItemID:              res.ItemID,
		ObjectiveID:         res.ObjectiveID,
		Information:         res.Information,
		BlueprintMultiplier: res.BlueprintMultiplier,
		ExposureMultiplier:  res.ExposureMultiplier,
		FatigueScalar:       res.FatigueScalar,
		Score:               res.Score,
		Theta:               state.Theta,
		SE:                  state.SE,
		MasteryProbability:  MasteryProbability(state.Theta, state.SE, cutoff),
		Overdue:             overdue,
	}
}
