package core

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Registry holds per-agent configuration. It is read-only during task
// execution; registration and removal take the write lock.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]AgentConfig
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]AgentConfig),
	}
}

// Register adds an agent and returns its ID, generating one when the config
// does not carry an ID. Weight and timeout defaults are applied here so that
// every stored record is complete.
func (r *Registry) Register(cfg AgentConfig) (string, error) {
	if cfg.Weight < 0 {
		return "", fmt.Errorf("agent %q: %w", cfg.Name, ErrInvalidWeight)
	}
	if cfg.Weight == 0 {
		cfg.Weight = DefaultAgentWeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultAgentTimeout
	}
	if cfg.AgentID == "" {
		cfg.AgentID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[cfg.AgentID]; exists {
		return "", fmt.Errorf("agent %s already registered", cfg.AgentID)
	}
	r.agents[cfg.AgentID] = cfg
	log.Printf("[Registry] Registered agent %s (%s, role=%s, weight=%.2f)",
		cfg.AgentID, cfg.Name, cfg.Role, cfg.Weight)
	return cfg.AgentID, nil
}

// Get returns the configuration for an agent.
func (r *Registry) Get(agentID string) (AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, exists := r.agents[agentID]
	if !exists {
		return AgentConfig{}, fmt.Errorf("agent %s: %w", agentID, ErrAgentNotFound)
	}
	return cfg, nil
}

// Remove deletes an agent from the registry.
func (r *Registry) Remove(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, agentID)
	log.Printf("[Registry] Unregistered agent %s", agentID)
}

// List returns all registered agents.
func (r *Registry) List() []AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AgentConfig, 0, len(r.agents))
	for _, cfg := range r.agents {
		out = append(out, cfg)
	}
	return out
}

// Weight returns the voting weight for an agent, defaulting to 1.0 when the
// agent record is missing. Used by the consensus engine, which must tolerate
// responses from agents removed mid-flight.
func (r *Registry) Weight(agentID string) float64 {
	cfg, err := r.Get(agentID)
	if err != nil {
		return DefaultAgentWeight
	}
	return cfg.Weight
}
