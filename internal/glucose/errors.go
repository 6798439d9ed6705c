package glucose

import "errors"

// ValidationError rejects a submission or rule row that fails an invariant.
// The offending input has no effect on session state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
