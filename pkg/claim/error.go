package claim

import (
	"errors"
	"fmt"
)

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("claim validation failed")

// ValidationError reports a claim that cannot be routed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	if e.Field == "" {
		return fmt.Sprintf("invalid claim: %s", e.Reason)
	}
	return fmt.Sprintf("invalid claim: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is a claim validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
