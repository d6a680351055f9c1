package adept

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// attemptValidate is the validator instance for attempt events.
// Initialized in init() with the custom timestamp validator.
var attemptValidate *validator.Validate

func init() {
	attemptValidate = validator.New()

	// time.Time zero values slip past "required"; reject them explicitly.
	if err := attemptValidate.RegisterValidation("nonzerotime", validateNonZeroTime); err != nil {
		panic(fmt.Sprintf("adept: register nonzerotime validator: %v", err))
	}
}

func validateNonZeroTime(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && !t.IsZero()
}

// Attempt is a validated attempt event from the event-tracking
// collaborator. The core reads only these fields and is agnostic to how
// events are persisted or audited.
type Attempt struct {
	LearnerID    string    `json:"learner_id" validate:"required"`
	ItemID       string    `json:"item_id" validate:"required"`
	ObjectiveIDs []string  `json:"objective_ids" validate:"required,min=1,dive,required"`
	Correct      bool      `json:"correct"`
	Timestamp    time.Time `json:"timestamp" validate:"nonzerotime"`
	DurationMs   int64     `json:"duration_ms" validate:"gte=0"`
}

// Validate checks the attempt's shape at the boundary, before any state is
// touched. A failure is a permanent rejection of this one event.
func (a Attempt) Validate() error {
	if err := attemptValidate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttempt, err)
	}
	return nil
}

// ApplyAttempt validates the attempt and folds it into every targeted
// objective: ability update followed by the mastery stop rule. It returns
// a new map; the input map and its states are never mutated. Objectives
// without existing state are created lazily from the estimator's prior.
//
// The event is applied atomically: if validation fails or any objective's
// update is numerically unstable, the original states are returned
// untouched alongside the error.
func (e *Estimator) ApplyAttempt(states map[string]ObjectiveState, att Attempt, difficulty float64, mc MasteryConfig) (map[string]ObjectiveState, error) {
	if err := att.Validate(); err != nil {
		return states, err
	}

	updated := make([]ObjectiveState, 0, len(att.ObjectiveIDs))
	for _, objID := range att.ObjectiveIDs {
		state, ok := states[objID]
		if !ok {
			state = e.NewState(objID)
		}
		next, err := e.Update(state, att.Correct, difficulty)
		if err != nil {
			return states, err
		}
		next.Mastery = Evaluate(next, mc)
		updated = append(updated, next)
	}

	out := make(map[string]ObjectiveState, len(states)+len(updated))
	for id, s := range states {
		out[id] = s
	}
	for _, s := range updated {
		out[s.ObjectiveID] = s
	}
	return out, nil
}
