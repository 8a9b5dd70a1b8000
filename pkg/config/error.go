package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a setting that cannot be used.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ErrConfiguration.Error()
	}
	if e.Reason != "" {
		return fmt.Sprintf("invalid configuration: %s=%q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: unrecognized %s %q", e.Field, e.Value)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
