package adept

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func banditCandidates() []Candidate {
	return []Candidate{
		{ItemID: "a1", ObjectiveIDs: []string{"alg"}, Exposure: Exposure{HoursSinceLast: -1}},
		{ItemID: "a2", ObjectiveIDs: []string{"alg"}, Difficulty: 0.4, Exposure: Exposure{HoursSinceLast: 30}},
		{ItemID: "g1", ObjectiveIDs: []string{"geo"}, Exposure: Exposure{HoursSinceLast: 72}},
	}
}

func TestArms(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	arms := s.Arms(nil, banditCandidates())
	require.Len(t, arms, 2)

	// Ordered by objective ID, each arm carrying its best candidate.
	assert.Equal(t, "alg", arms[0].ObjectiveID)
	assert.Equal(t, "geo", arms[1].ObjectiveID)
	assert.Equal(t, "a1", arms[0].Best.ItemID)
	assert.Equal(t, "g1", arms[1].Best.ItemID)

	for _, arm := range arms {
		assert.GreaterOrEqual(t, arm.Urgency, 0.0)
		assert.LessOrEqual(t, arm.Urgency, 1.0)
		assert.Equal(t, arm.Best.Score*(1+arm.Urgency), arm.Weight)
	}
	// alg was practiced 30h ago; geo 72h ago, so geo is more urgent.
	assert.Less(t, arms[0].Urgency, arms[1].Urgency)
}

// Objectives whose every candidate is in cooldown contribute no arm.
func TestArmsSkipCooldown(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	candidates := []Candidate{
		{ItemID: "a1", ObjectiveIDs: []string{"alg"}, Exposure: Exposure{HoursSinceLast: -1}},
		{ItemID: "g1", ObjectiveIDs: []string{"geo"}, Exposure: Exposure{HoursSinceLast: 0.5}},
	}
	arms := s.Arms(nil, candidates)
	require.Len(t, arms, 1)
	assert.Equal(t, "alg", arms[0].ObjectiveID)
}

func TestSoftmaxWeights(t *testing.T) {
	arms := []Arm{{Weight: 0.2}, {Weight: 0.25}, {Weight: 0.1}}
	probs := softmaxWeights(arms, 1.0)
	require.Len(t, probs, 3)

	var sum float64
	for _, p := range probs {
		assert.Greater(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	// Heavier arm, higher probability.
	assert.Greater(t, probs[1], probs[0])
	assert.Greater(t, probs[0], probs[2])
}

// Lower temperature concentrates the distribution on the best arm.
func TestSoftmaxTemperature(t *testing.T) {
	arms := []Arm{{Weight: 0.2}, {Weight: 0.25}}
	sharp := softmaxWeights(arms, 0.01)
	flat := softmaxWeights(arms, 10)
	assert.Greater(t, sharp[1], flat[1])
	assert.InDelta(t, 1.0, sharp[1], 1e-2)
}

func TestNextStochasticNilRNGIsGreedy(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	candidates := banditCandidates()

	res, err := s.NextStochastic(nil, candidates, nil)
	require.NoError(t, err)
	greedy, err := s.Next(nil, candidates)
	require.NoError(t, err)
	if diff := cmp.Diff(greedy, res); diff != "" {
		t.Errorf("nil-rng selection differs from greedy (-greedy +got):\n%s", diff)
	}
}

// A seeded source makes the stochastic policy reproducible.
func TestNextStochasticDeterministicUnderSeed(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	candidates := banditCandidates()

	var first []string
	for i := 0; i < 20; i++ {
		rng := rand.New(rand.NewSource(7))
		var picks []string
		for j := 0; j < 10; j++ {
			res, err := s.NextStochastic(nil, candidates, rng)
			require.NoError(t, err)
			picks = append(picks, res.ItemID)
		}
		if first == nil {
			first = picks
			continue
		}
		assert.Equal(t, first, picks)
	}
}

// Over many draws every eligible arm is visited; cooled-down items never are.
func TestNextStochasticExploresEligibleArms(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	candidates := append(banditCandidates(), Candidate{
		ItemID:       "cooled",
		ObjectiveIDs: []string{"stat"},
		Exposure:     Exposure{HoursSinceLast: 0.2},
	})

	rng := rand.New(rand.NewSource(11))
	seen := make(map[string]int)
	for i := 0; i < 500; i++ {
		res, err := s.NextStochastic(nil, candidates, rng)
		require.NoError(t, err)
		seen[res.ItemID]++
	}
	assert.Positive(t, seen["a1"])
	assert.Positive(t, seen["g1"])
	assert.Zero(t, seen["cooled"])
}

func TestNextStochasticEmptyPool(t *testing.T) {
	s := mustScorer(t, ScorerConfig{})
	rng := rand.New(rand.NewSource(1))
	_, err := s.NextStochastic(nil, nil, rng)
	assert.ErrorIs(t, err, ErrEmptyCandidatePool)
}
