package core

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the process configuration, loaded from a TOML file. It declares
// the listen port, the default consensus policy, the local fallback
// generator, and a static agent roster registered at startup.
type Config struct {
	Server    ServerConfig   `toml:"server"`
	Consensus ConsensusTOML  `toml:"consensus"`
	Fallback  FallbackConfig `toml:"fallback"`
	Agents    []AgentTOML    `toml:"agents"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Port int `toml:"port"`
}

// ConsensusTOML is the file form of the default consensus policy.
// Durations are integer seconds.
type ConsensusTOML struct {
	Strategy       string  `toml:"strategy"`
	Threshold      float64 `toml:"threshold"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// FallbackConfig configures the local fallback generator.
type FallbackConfig struct {
	OllamaURL string `toml:"ollama_url"`
	Model     string `toml:"model"`
}

// AgentTOML is the file form of an agent registration.
type AgentTOML struct {
	AgentID           string  `toml:"agent_id"`
	Name              string  `toml:"name"`
	Role              string  `toml:"role"`
	PrimaryEndpoint   string  `toml:"primary_endpoint"`
	PrimaryCredential string  `toml:"primary_credential"`
	BackupEndpoint    string  `toml:"backup_endpoint"`
	BackupCredential  string  `toml:"backup_credential"`
	Weight            float64 `toml:"weight"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	for i, agent := range cfg.Agents {
		if agent.PrimaryEndpoint == "" {
			return nil, fmt.Errorf("config %s: agents[%d] (%s) has no primary_endpoint", path, i, agent.Name)
		}
	}
	return &cfg, nil
}

// DefaultPolicy converts the file consensus section to a ConsensusConfig,
// filling in package defaults for anything unset.
func (c *Config) DefaultPolicy() ConsensusConfig {
	policy := DefaultConsensusConfig()
	if c.Consensus.Strategy != "" {
		policy.Strategy = ConsensusStrategy(c.Consensus.Strategy)
	}
	if c.Consensus.Threshold > 0 {
		policy.Threshold = c.Consensus.Threshold
	}
	if c.Consensus.TimeoutSeconds > 0 {
		policy.Timeout = time.Duration(c.Consensus.TimeoutSeconds) * time.Second
	}
	return policy
}

// AgentConfig converts a roster entry to a registry record.
func (a AgentTOML) AgentConfig() AgentConfig {
	return AgentConfig{
		AgentID:           a.AgentID,
		Name:              a.Name,
		Role:              a.Role,
		PrimaryEndpoint:   a.PrimaryEndpoint,
		PrimaryCredential: a.PrimaryCredential,
		BackupEndpoint:    a.BackupEndpoint,
		BackupCredential:  a.BackupCredential,
		Weight:            a.Weight,
		Timeout:           time.Duration(a.TimeoutSeconds) * time.Second,
	}
}
