// Package config provides application-wide configuration.
// Values resolve in three layers: built-in defaults, an optional YAML file,
// then environment variable overrides. Every field has a safe default so the
// binary runs locally without any setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for Plume.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	LLM      LLM      `yaml:"llm"`
	Suggest  Suggest  `yaml:"suggest"`
}

// Server configures the HTTP listener.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Database configures the SQLite store.
type Database struct {
	Path string `yaml:"path"`
}

// LLM configures the suggestion provider.
type LLM struct {
	Provider      string `yaml:"provider"`        // default: "ollama"
	OllamaBaseURL string `yaml:"ollama_base_url"` // default: "http://localhost:11434"
	ChatModel     string `yaml:"chat_model"`      // default: "llama3.2:3b"
}

// Suggest configures the suggestion refresh coordinator timings.
// All values are milliseconds.
type Suggest struct {
	DebounceDelayMS   int `yaml:"debounce_delay_ms"`   // quiet period after the last edit
	CooldownMS        int `yaml:"cooldown_ms"`         // spacing after a successful request
	FailureCooldownMS int `yaml:"failure_cooldown_ms"` // spacing after a failed request
}

const (
	envServerHost    = "PLUME_HOST"
	envServerPort    = "PLUME_PORT"
	envDatabasePath  = "PLUME_DB_PATH"
	envLLMProvider   = "LLM_PROVIDER"
	envOllamaBaseURL = "OLLAMA_BASE_URL"
	envOllamaModel   = "OLLAMA_CHAT_MODEL"
	envDebounceDelay = "PLUME_DEBOUNCE_DELAY_MS"
	envCooldown      = "PLUME_COOLDOWN_MS"
	envFailCooldown  = "PLUME_FAILURE_COOLDOWN_MS"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   Server{Host: "0.0.0.0", Port: 8080},
		Database: Database{Path: "plume.db"},
		LLM: LLM{
			Provider:      "ollama",
			OllamaBaseURL: "http://localhost:11434",
			ChatModel:     "llama3.2:3b",
		},
		Suggest: Suggest{
			DebounceDelayMS:   3000,
			CooldownMS:        5000,
			FailureCooldownMS: 10000,
		},
	}
}

// Load resolves the configuration. path may be empty (no config file); a
// non-empty path that does not exist is an error so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides file/default values from the environment.
func applyEnv(cfg *Config) {
	cfg.Server.Host = envOr(envServerHost, cfg.Server.Host)
	cfg.Server.Port = envIntOr(envServerPort, cfg.Server.Port)
	cfg.Database.Path = envOr(envDatabasePath, cfg.Database.Path)
	cfg.LLM.Provider = envOr(envLLMProvider, cfg.LLM.Provider)
	cfg.LLM.OllamaBaseURL = envOr(envOllamaBaseURL, cfg.LLM.OllamaBaseURL)
	cfg.LLM.ChatModel = envOr(envOllamaModel, cfg.LLM.ChatModel)
	cfg.Suggest.DebounceDelayMS = envIntOr(envDebounceDelay, cfg.Suggest.DebounceDelayMS)
	cfg.Suggest.CooldownMS = envIntOr(envCooldown, cfg.Suggest.CooldownMS)
	cfg.Suggest.FailureCooldownMS = envIntOr(envFailCooldown, cfg.Suggest.FailureCooldownMS)
}

// DebounceDelay returns the debounce window as a Duration.
func (s Suggest) DebounceDelay() time.Duration {
	return time.Duration(s.DebounceDelayMS) * time.Millisecond
}

// Cooldown returns the post-success cooldown as a Duration.
func (s Suggest) Cooldown() time.Duration {
	return time.Duration(s.CooldownMS) * time.Millisecond
}

// FailureCooldown returns the post-failure cooldown as a Duration.
func (s Suggest) FailureCooldown() time.Duration {
	return time.Duration(s.FailureCooldownMS) * time.Millisecond
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns the integer value of key, or fallback if unset or invalid.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
