package config

import (
	"strings"
)

// OptimizationLevel controls how eagerly the router rewrites claims.
type OptimizationLevel string

const (
	OptimizationNormal     OptimizationLevel = "normal"
	OptimizationAggressive OptimizationLevel = "aggressive"
)

// ParseOptimizationLevel maps a user-supplied level onto a known value.
// An empty string selects the normal level.
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	switch OptimizationLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", OptimizationNormal:
		return OptimizationNormal, nil
	case OptimizationAggressive:
		return OptimizationAggressive, nil
	default:
		return "", &ConfigurationError{Field: "optimization_level", Value: s}
	}
}

// EngineConfig holds the settings the claim router is built with.
type EngineConfig struct {
	AdvancedOptimization bool              `yaml:"advanced_optimization"`
	OptimizationLevel    OptimizationLevel `yaml:"optimization_level"`
}

// DefaultEngineConfig enables optimization at the normal level.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AdvancedOptimization: true,
		OptimizationLevel:    OptimizationNormal,
	}
}

// Validate normalizes the optimization level, failing on unknown values.
func (c *EngineConfig) Validate() error {
	level, err := ParseOptimizationLevel(string(c.OptimizationLevel))
	if err != nil {
		return err
	}
	c.OptimizationLevel = level
	return nil
}
