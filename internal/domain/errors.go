package domain

import "errors"

// ErrValidation is the root of every input error produced by this package.
// Check it with errors.Is to tell bad input apart from storage failures:
//
//	if errors.Is(err, domain.ErrValidation) {
//	    // report the message to the user, do not retry
//	}
var ErrValidation = errors.New("validation failed")

var (
	// ErrInvalidBuilding is returned when a building code or name is not recognised.
	ErrInvalidBuilding = validationKind("invalid building")

	// ErrInvalidLocation is returned when location text or fields are malformed.
	ErrInvalidLocation = validationKind("invalid location")

	// ErrInvalidKind is returned when an equipment kind is not recognised.
	ErrInvalidKind = validationKind("invalid equipment kind")

	// ErrInvalidChairKind is returned when a chair kind is not recognised.
	ErrInvalidChairKind = validationKind("invalid chair kind")

	// ErrInvalidEquipment is returned when a record is missing its kind attribute,
	// carries another kind's attribute, or has an out-of-range value.
	ErrInvalidEquipment = validationKind("invalid equipment")
)

type validationError struct {
	msg string
}

func validationKind(msg string) error {
	return &validationError{msg: msg}
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }
