package adept

import (
	"errors"
	"testing"
)

func TestValidateWeights(t *testing.T) {
	if err := ValidateWeights(DefaultWeights); err != nil {
		t.Errorf("DefaultWeights should validate: %v", err)
	}
	if err := ValidateWeights(WeightLowerBounds); err != nil {
		t.Errorf("lower bounds should validate: %v", err)
	}
	if err := ValidateWeights(WeightUpperBounds); err != nil {
		t.Errorf("upper bounds should validate: %v", err)
	}

	for i := 0; i < NumWeights; i++ {
		w := DefaultWeights
		w[i] = WeightUpperBounds[i] + 0.01
		if err := ValidateWeights(w); !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("w[%d] above bound: error = %v, want ErrInvalidWeights", i, err)
		}
		w[i] = WeightLowerBounds[i] - 0.01
		if err := ValidateWeights(w); !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("w[%d] below bound: error = %v, want ErrInvalidWeights", i, err)
		}
	}
}

func TestClampWeights(t *testing.T) {
	w := Weights{-1, 99, 0.5, 0.5, 1.4, 0.3, 0.6, 0.05}
	clamped := ClampWeights(w)

	if clamped[0] != WeightLowerBounds[0] {
		t.Errorf("w[0] = %f, want clamped to %f", clamped[0], WeightLowerBounds[0])
	}
	if clamped[1] != WeightUpperBounds[1] {
		t.Errorf("w[1] = %f, want clamped to %f", clamped[1], WeightUpperBounds[1])
	}
	if clamped[2] != 0.5 {
		t.Errorf("w[2] = %f, in-bounds value must pass through", clamped[2])
	}
	if err := ValidateWeights(clamped); err != nil {
		t.Errorf("clamped weights should validate: %v", err)
	}
	// Value semantics: the input array is untouched.
	if w[0] != -1 {
		t.Error("ClampWeights mutated its input")
	}
}
