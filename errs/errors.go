package errs

import "errors"

// Sentinel errors for the service layer. Callers wrap these with %w and
// handlers translate them into HTTP status codes with errors.Is.
var (
	// ErrValidation covers bad input: non-positive prices, unknown
	// difficulties, invalid battle outcomes, malformed upstream responses.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers lookups by unknown id or name. Soft-deleted meals
	// surface as not found too; only the message differs.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate meal names and duplicate combatants.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyDeleted covers repeat soft deletes and stat updates against
	// a deleted meal.
	ErrAlreadyDeleted = errors.New("already deleted")

	// ErrCapacity is returned when a third combatant is prepped.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrUnauthorized covers failed logins and bad tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable covers timeouts and transport failures against
	// the external random service.
	ErrServiceUnavailable = errors.New("service unavailable")
)
