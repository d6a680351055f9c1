package adept

import (
	"testing"
	"time"
)

func BenchmarkUpdate(b *testing.B) {
	e, err := NewEstimator(EstimatorConfig{})
	if err != nil {
		b.Fatal(err)
	}
	state := e.NewState("alg")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var err error
		state, err = e.Update(state, i%3 != 0, 0.2)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkScore(b *testing.B) {
	s, err := NewScorer(ScorerConfig{})
	if err != nil {
		b.Fatal(err)
	}
	states := map[string]ObjectiveState{"alg": NewObjectiveState("alg")}
	candidates := make([]Candidate, 200)
	for i := range candidates {
		candidates[i] = Candidate{
			ItemID:       string(rune('a' + i%26)),
			ObjectiveIDs: []string{"alg"},
			Difficulty:   float64(i%10) / 5,
			Exposure:     Exposure{HoursSinceLast: float64(i % 100)},
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Score(states, candidates)
	}
}

func BenchmarkReview(b *testing.B) {
	s, err := NewScheduler(SchedulerConfig{DisableFuzzing: true})
	if err != nil {
		b.Fatal(err)
	}
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	card, _, err := s.Review(NewCard(1, "unit", now), Good, now)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.Review(card, Good, card.Due); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildQueue(b *testing.B) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	cards := make([]Card, 1000)
	for i := range cards {
		cards[i] = NewCard(int64(i), "unit", now.Add(time.Duration(i-500)*time.Hour))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildQueue(cards, now, 30, nil)
	}
}
