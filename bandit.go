package adept

import (
	"math"
	"math/rand"
	"sort"
)

// Arm is one per-objective bandit arm used by the stochastic selection
// policy. Arms expose the same numeric signals the explanation layer needs:
// the ability posterior mean, an urgency term derived from time since the
// objective was last practiced, and the blueprint multiplier.
type Arm struct {
	ObjectiveID string      `json:"objective_id"`
	Posterior   float64     `json:"posterior"` // θ̂ of the objective.
	Urgency     float64     `json:"urgency"`   // in [0, 1], grows with time since practice.
	Blueprint   float64     `json:"blueprint"`
	Weight      float64     `json:"weight"` // sampling weight before softmax.
	Best        ScoreResult `json:"best"`   // highest-scoring eligible candidate of the arm.
}

// Arms groups the eligible candidates into per-objective arms, ordered by
// objective ID. Objectives whose every candidate is in cooldown contribute
// no arm.
func (s *Scorer) Arms(states map[string]ObjectiveState, candidates []Candidate) []Arm {
	byObjective := make(map[string]Arm)
	for _, c := range candidates {
		res := s.scoreOne(states, c)
		if !res.Eligible {
			continue
		}

		arm, ok := byObjective[res.ObjectiveID]
		if !ok {
			theta := 0.0
			if st, exists := states[res.ObjectiveID]; exists {
				theta = st.Theta
			}
			arm = Arm{
				ObjectiveID: res.ObjectiveID,
				Posterior:   theta,
				Blueprint:   res.BlueprintMultiplier,
				Urgency:     1, // never practiced → maximally urgent.
				Best:        res,
			}
		}

		if res.Score > arm.Best.Score ||
			(res.Score == arm.Best.Score && res.ItemID < arm.Best.ItemID) {
			arm.Best = res
			arm.Blueprint = res.BlueprintMultiplier
		}

		if h := c.Exposure.HoursSinceLast; h >= 0 {
			u := 1 - math.Exp2(-h/s.urgencyHalf)
			if !ok || u < arm.Urgency {
				arm.Urgency = u
			}
		}
		byObjective[res.ObjectiveID] = arm
	}

	arms := make([]Arm, 0, len(byObjective))
	for _, arm := range byObjective {
		arm.Weight = arm.Best.Score * (1 + arm.Urgency)
		arms = append(arms, arm)
	}
	sort.Slice(arms, func(i, j int) bool { return arms[i].ObjectiveID < arms[j].ObjectiveID })
	return arms
}

// NextStochastic samples an arm with probability proportional to a softmax
// of the arm weights (bandit-style exploration across near-tied
// objectives) and returns that arm's best candidate. Arms in cooldown are
// never sampled. A nil rng degrades to the greedy policy so the selection
// stays deterministic by default; tests inject a seeded source.
func (s *Scorer) NextStochastic(states map[string]ObjectiveState, candidates []Candidate, rng *rand.Rand) (ScoreResult, error) {
	if rng == nil {
		return s.Next(states, candidates)
	}

	arms := s.Arms(states, candidates)
	if len(arms) == 0 {
		return ScoreResult{}, ErrEmptyCandidatePool
	}

	probs := softmaxWeights(arms, s.temperature)
	pick := rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if pick < cum {
			return arms[i].Best, nil
		}
	}
	// Floating point residue: fall through to the last arm.
	return arms[len(arms)-1].Best, nil
}

// softmaxWeights converts arm weights into sampling probabilities,
// max-subtracted for numerical stability.
func softmaxWeights(arms []Arm, temperature float64) []float64 {
	maxW := math.Inf(-1)
	for _, a := range arms {
		if a.Weight > maxW {
			maxW = a.Weight
		}
	}

	probs := make([]float64, len(arms))
	var sum float64
	for i, a := range arms {
		probs[i] = math.Exp((a.Weight - maxW) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
