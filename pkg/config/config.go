package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Engine          EngineConfig
	Narrative       NarrativeConfig
	Models          *ModelAliases
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	ConfigDir       string
}

// FileConfig represents the structure of ~/.claimroute/config.yaml
type FileConfig struct {
	Engine    EngineConfig      `yaml:"engine"`
	Narrative NarrativeConfig   `yaml:"narrative"`
	Aliases   map[string]string `yaml:"aliases,omitempty"`
}

// Load reads ~/.claimroute/config.yaml, if present, and applies environment overrides.
// API keys are only ever taken from the environment.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	fileConfig := defaultFileConfig()
	if _, err := os.Stat(path); err == nil {
		fileConfig, err = loadFileConfig(path)
		if err != nil {
			return nil, err
		}
	}

	return build(fileConfig, configDir)
}

// LoadFile loads configuration from an explicit path. The file must exist.
func LoadFile(path string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig, err := loadFileConfig(path)
	if err != nil {
		return nil, err
	}
	return build(fileConfig, configDir)
}

// Default returns the built-in configuration without touching disk or env.
func Default() *Config {
	return &Config{
		Engine:    DefaultEngineConfig(),
		Narrative: DefaultNarrativeConfig(),
		Models:    DefaultAliases(),
	}
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

func build(fileConfig *FileConfig, configDir string) (*Config, error) {
	cfg := &Config{
		Engine:          fileConfig.Engine,
		Narrative:       fileConfig.Narrative,
		Models:          DefaultAliases(),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		ConfigDir:       configDir,
	}
	cfg.Models.Merge(fileConfig.Aliases)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the router or drafter cannot use.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return c.Models.ValidateNarrative(&c.Narrative)
}

func defaultFileConfig() *FileConfig {
	return &FileConfig{
		Engine:    DefaultEngineConfig(),
		Narrative: DefaultNarrativeConfig(),
	}
}

// loadFileConfig reads a config file on top of the defaults, so absent keys keep their default values.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := defaultFileConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Field: "file", Value: path, Reason: err.Error()}
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("CLAIMROUTE_ADVANCED_OPTIMIZATION"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return &ConfigurationError{Field: "CLAIMROUTE_ADVANCED_OPTIMIZATION", Value: val, Reason: "expected a boolean"}
		}
		cfg.Engine.AdvancedOptimization = enabled
	}
	if val := os.Getenv("CLAIMROUTE_OPTIMIZATION_LEVEL"); val != "" {
		cfg.Engine.OptimizationLevel = OptimizationLevel(val)
	}
	return nil
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".claimroute")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
