package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-arena/internal/agent"
)

// Config is the complete arena server configuration.
type Config struct {
	Server  ServerSettings  `hcl:"server,block"`
	Games   GameSettings    `hcl:"games,block"`
	LLM     LLMSettings     `hcl:"llm,block"`
	History HistorySettings `hcl:"history,block"`
	Presets []PresetConfig  `hcl:"preset,block"`
}

// ServerSettings contains the HTTP listener configuration.
type ServerSettings struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings carries table defaults and process-wide limits.
type GameSettings struct {
	MaxConcurrent      int   `hcl:"max_concurrent,optional"`
	EndGraceSeconds    int   `hcl:"end_grace_seconds,optional"`
	DefaultBuyin       int   `hcl:"default_buyin,optional"`
	DefaultSmallBlind  int   `hcl:"default_small_blind,optional"`
	DefaultBigBlind    int   `hcl:"default_big_blind,optional"`
	DefaultMaxHands    int   `hcl:"default_max_hands,optional"`
	TurnTimeoutSeconds int   `hcl:"turn_timeout_seconds,optional"`
	DefaultSeed        int64 `hcl:"default_seed,optional"`
}

// LLMSettings configures the completion gateway for model seats.
type LLMSettings struct {
	BaseURL        string `hcl:"base_url,optional"`
	APIKeyEnv      string `hcl:"api_key_env,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
}

// HistorySettings configures hand persistence. An empty Dir or DSN
// disables that sink; the in-memory tail always serves the API.
type HistorySettings struct {
	MemoryHands          int    `hcl:"memory_hands,optional"`
	Dir                  string `hcl:"dir,optional"`
	PostgresDSN          string `hcl:"postgres_dsn,optional"`
	FlushIntervalSeconds int    `hcl:"flush_interval_seconds,optional"`
}

// PresetConfig is a named table lineup selectable at game creation.
type PresetConfig struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Buyin       int          `hcl:"buyin,optional"`
	SmallBlind  int          `hcl:"small_blind,optional"`
	BigBlind    int          `hcl:"big_blind,optional"`
	MaxHands    int          `hcl:"max_hands,optional"`
	DebugMode   bool         `hcl:"debug_mode,optional"`
	AutoStart   bool         `hcl:"auto_start,optional"`
	Seats       []SeatConfig `hcl:"seat,block"`
}

// SeatConfig is one seat inside a preset block.
type SeatConfig struct {
	Kind        string `hcl:"kind"`
	Name        string `hcl:"name,optional"`
	Rule        string `hcl:"rule,optional"`
	Model       string `hcl:"model,optional"`
	Personality string `hcl:"personality,optional"`
}

// Spec converts the block to the session layer's seat spec.
func (s SeatConfig) Spec() agent.SeatSpec {
	return agent.SeatSpec{
		Kind:        agent.Kind(s.Kind),
		Rule:        s.Rule,
		Model:       s.Model,
		Personality: s.Personality,
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Host:     "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Games: GameSettings{
			MaxConcurrent:      100,
			EndGraceSeconds:    60,
			DefaultBuyin:       1000,
			DefaultSmallBlind:  10,
			DefaultBigBlind:    20,
			DefaultMaxHands:    50,
			TurnTimeoutSeconds: 30,
		},
		LLM: LLMSettings{
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 30,
		},
		History: HistorySettings{
			MemoryHands:          100,
			FlushIntervalSeconds: 10,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to the
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %s", filename, diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Games.MaxConcurrent == 0 {
		c.Games.MaxConcurrent = def.Games.MaxConcurrent
	}
	if c.Games.EndGraceSeconds == 0 {
		c.Games.EndGraceSeconds = def.Games.EndGraceSeconds
	}
	if c.Games.DefaultBuyin == 0 {
		c.Games.DefaultBuyin = def.Games.DefaultBuyin
	}
	if c.Games.DefaultSmallBlind == 0 {
		c.Games.DefaultSmallBlind = def.Games.DefaultSmallBlind
	}
	if c.Games.DefaultBigBlind == 0 {
		c.Games.DefaultBigBlind = def.Games.DefaultBigBlind
	}
	if c.Games.DefaultMaxHands == 0 {
		c.Games.DefaultMaxHands = def.Games.DefaultMaxHands
	}
	if c.Games.TurnTimeoutSeconds == 0 {
		c.Games.TurnTimeoutSeconds = def.Games.TurnTimeoutSeconds
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = def.LLM.BaseURL
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = def.LLM.TimeoutSeconds
	}
	if c.History.MemoryHands == 0 {
		c.History.MemoryHands = def.History.MemoryHands
	}
	if c.History.FlushIntervalSeconds == 0 {
		c.History.FlushIntervalSeconds = def.History.FlushIntervalSeconds
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Games.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be positive, got %d", c.Games.MaxConcurrent)
	}
	seen := make(map[string]bool)
	for _, p := range c.Presets {
		if seen[p.Name] {
			return fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		for i, seat := range p.Seats {
			if err := seat.Spec().Validate(); err != nil {
				return fmt.Errorf("preset %q seat %d: %w", p.Name, i, err)
			}
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TurnTimeout returns the human decision clock as a duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Games.TurnTimeoutSeconds) * time.Second
}

// LLMTimeout returns the model decision budget as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
