package adept

import "errors"

// Sentinel errors for the adept package.
// Use errors.Is to check: errors.Is(err, adept.ErrInvalidAttempt)
var (
	// ErrInvalidAttempt marks a malformed attempt event (missing objective
	// ids, out-of-range rating, negative duration). The event is rejected
	// before any mutation; rejection is permanent for that event.
	ErrInvalidAttempt = errors.New("adept: invalid attempt")

	// ErrNumericInstability marks an update that produced NaN or Infinity
	// (for example a zero-information item). The update is discarded and
	// the prior state retained; the event is a data-quality signal, not a
	// state corruption.
	ErrNumericInstability = errors.New("adept: numeric instability")

	// ErrEmptyCandidatePool is returned when every candidate is in
	// exposure cooldown. The caller decides the fallback.
	ErrEmptyCandidatePool = errors.New("adept: no eligible candidates")

	ErrInvalidRating  = errors.New("adept: invalid rating")
	ErrInvalidConfig  = errors.New("adept: invalid configuration")
	ErrInvalidWeights = errors.New("adept: retention weights out of bounds")
	ErrCardIDMismatch = errors.New("adept: card ID mismatch in review log")
)
