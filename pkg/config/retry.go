package config

// RetryConfig defines retry and backoff behavior for narrative calls.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty"`
}

// Target specifies an adapter and model combination.
type Target struct {
	Adapter string `yaml:"adapter"`
	Model   string `yaml:"model"`
}

// DefaultRetryConfig retries twice, backing off from 200ms up to 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 2, BaseBackoffMs: 200, MaxBackoffMs: 2000}
}

func applyRetryDefaults(cfg *RetryConfig) {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoffMs <= 0 {
		cfg.BaseBackoffMs = 200
	}
	if cfg.MaxBackoffMs <= 0 {
		cfg.MaxBackoffMs = 2000
	}
	if cfg.MaxBackoffMs < cfg.BaseBackoffMs {
		cfg.MaxBackoffMs = cfg.BaseBackoffMs
	}
}
