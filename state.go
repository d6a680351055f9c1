package adept

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// CardState represents the spaced-repetition stage of a memory card.
type CardState int

const (
	New        CardState = iota + 1 // Never reviewed.
	Learning                        // In initial learning, short intervals.
	Review                          // Entered the long-term review cycle.
	Relearning                      // Lapsed from Review, relearning.
)

var (
	cardStateNames = [...]string{New: "New", Learning: "Learning", Review: "Review", Relearning: "Relearning"}
	cardStateByName = map[string]CardState{
		"New":        New,
		"Learning":   Learning,
		"Review":     Review,
		"Relearning": Relearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = CardState(0)
	_ json.Marshaler           = CardState(0)
	_ json.Unmarshaler         = (*CardState)(nil)
	_ encoding.TextMarshaler   = CardState(0)
	_ encoding.TextUnmarshaler = (*CardState)(nil)
)

// IsValid reports whether s is a valid card state (New through Relearning).
func (s CardState) IsValid() bool {
	return s >= New && s <= Relearning
}

// String returns the name of the state. For invalid values it returns
// "CardState(n)".
func (s CardState) String() string {
	if s.IsValid() {
		return cardStateNames[s]
	}
	return fmt.Sprintf("CardState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CardState) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("adept: invalid card state: %d", int(s))
	}
	return []byte(cardStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardState) UnmarshalText(text []byte) error {
	v, ok := cardStateByName[string(text)]
	if !ok {
		return fmt.Errorf("adept: invalid card state: %q", text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. CardState serializes as a JSON string.
func (s CardState) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *CardState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("adept: invalid card state: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}
