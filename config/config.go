// Package config provides YAML-based configuration loading for simmesh.
// Malformed values fail fast at load time, never mid-session.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level simulation configuration, loaded from config.yaml.
type Config struct {
	// TickInterval is the period of the cooperative tick loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// ScanIntervalTicks is the coarse scan cadence: idle agents scan once
	// every this many ticks.
	ScanIntervalTicks int `yaml:"scan_interval_ticks"`
	// DetectionRadius is the partner detection radius in world units.
	DetectionRadius float64 `yaml:"detection_radius"`
	// PostConversationCooldown gates re-eligibility after a session ends.
	PostConversationCooldown time.Duration `yaml:"post_conversation_cooldown"`
	// HistoryWindow bounds how many trailing turns enter each prompt.
	HistoryWindow int `yaml:"history_window"`
	// MaxTurnsPerSession, when positive, forces sessions to wrap up once
	// reached. Zero means uncapped.
	MaxTurnsPerSession int `yaml:"max_turns_per_session"`
	// MinTurnDelay and MaxTurnDelay bound the randomized thinking pause
	// before each generated turn.
	MinTurnDelay time.Duration `yaml:"min_turn_delay"`
	MaxTurnDelay time.Duration `yaml:"max_turn_delay"`
	// ClosingGrace is how long a farewell stays visible before closure.
	ClosingGrace time.Duration `yaml:"closing_grace"`
	// ReplyTimeout bounds a turn against a hung generator. Zero disables
	// the watchdog and reproduces the legacy stall behavior.
	ReplyTimeout time.Duration `yaml:"reply_timeout"`

	Generator GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig selects and parameterizes the dialogue generator backend.
type GeneratorConfig struct {
	// Provider is one of "gemini", "openai", "anthropic" or "mock".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model id.
	Model string `yaml:"model"`
	// BaseURL overrides the provider endpoint (gemini only).
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Default returns the baseline configuration mirroring the simulation's
// original tuning.
func Default() *Config {
	return &Config{
		TickInterval:             50 * time.Millisecond,
		ScanIntervalTicks:        30,
		DetectionRadius:          4.0,
		PostConversationCooldown: 5 * time.Second,
		HistoryWindow:            6,
		MinTurnDelay:             time.Second,
		MaxTurnDelay:             2500 * time.Millisecond,
		ClosingGrace:             time.Second,
		Generator: GeneratorConfig{
			Provider:  "gemini",
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Omitted fields keep
// their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive")
	}
	if c.ScanIntervalTicks <= 0 {
		return fmt.Errorf("config: scan_interval_ticks must be positive")
	}
	if c.DetectionRadius <= 0 {
		return fmt.Errorf("config: detection_radius must be positive")
	}
	if c.PostConversationCooldown < 0 {
		return fmt.Errorf("config: post_conversation_cooldown must not be negative")
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("config: history_window must be positive")
	}
	if c.MaxTurnsPerSession < 0 {
		return fmt.Errorf("config: max_turns_per_session must not be negative")
	}
	if c.MinTurnDelay < 0 || c.MaxTurnDelay < 0 {
		return fmt.Errorf("config: turn delays must not be negative")
	}
	if c.MaxTurnDelay < c.MinTurnDelay {
		return fmt.Errorf("config: max_turn_delay must not be below min_turn_delay")
	}
	if c.ClosingGrace < 0 {
		return fmt.Errorf("config: closing_grace must not be negative")
	}
	if c.ReplyTimeout < 0 {
		return fmt.Errorf("config: reply_timeout must not be negative")
	}
	switch c.Generator.Provider {
	case "gemini", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("config: unknown generator provider %q", c.Generator.Provider)
	}
	return nil
}

// APIKey resolves the generator API key from the configured environment
// variable. Empty when unset.
func (g GeneratorConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}
