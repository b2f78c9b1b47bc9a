package core

import (
	"fmt"
	"sync"
	"time"
)

// Agent health states derived from recent dispatch outcomes.
const (
	HealthHealthy  = "healthy"  // last answer came from a remote endpoint
	HealthDegraded = "degraded" // last answer needed the local fallback
	HealthOffline  = "offline"  // several consecutive full-chain failures
)

// offlineAfterFailures is how many consecutive no-response outcomes mark an
// agent offline.
const offlineAfterFailures = 3

// AgentHealth is the observed reachability of one agent.
type AgentHealth struct {
	AgentID             string       `json:"agent_id"`
	Status              string       `json:"status"`
	LastTier            ResponseTier `json:"last_tier,omitempty"`
	LastSeen            time.Time    `json:"last_seen"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
}

// HealthTracker records per-agent dispatch outcomes. It is advisory only:
// the dispatcher reports outcomes here but never consults it, so a flapping
// agent still gets its full fallback chain on every task.
type HealthTracker struct {
	mu     sync.RWMutex
	agents map[string]*AgentHealth
}

// NewHealthTracker creates an empty tracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		agents: make(map[string]*AgentHealth),
	}
}

// RecordSuccess notes that an agent produced a response via the given tier.
// A local-fallback answer counts as degraded, not healthy: the agent itself
// never responded.
func (h *HealthTracker) RecordSuccess(agentID string, tier ResponseTier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.entry(agentID)
	entry.LastTier = tier
	entry.LastSeen = time.Now()
	entry.ConsecutiveFailures = 0
	if tier == TierLocalFallback {
		entry.Status = HealthDegraded
	} else {
		entry.Status = HealthHealthy
	}
}

// RecordFailure notes that an agent produced no response at all for a task.
func (h *HealthTracker) RecordFailure(agentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.entry(agentID)
	entry.ConsecutiveFailures++
	if entry.ConsecutiveFailures >= offlineAfterFailures {
		entry.Status = HealthOffline
	} else {
		entry.Status = HealthDegraded
	}
}

func (h *HealthTracker) entry(agentID string) *AgentHealth {
	entry, exists := h.agents[agentID]
	if !exists {
		entry = &AgentHealth{AgentID: agentID}
		h.agents[agentID] = entry
	}
	return entry
}

// Get returns the recorded health for one agent.
func (h *HealthTracker) Get(agentID string) (AgentHealth, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, exists := h.agents[agentID]
	if !exists {
		return AgentHealth{}, fmt.Errorf("no dispatch history for agent %s", agentID)
	}
	return *entry, nil
}

// Snapshot returns the health of every agent seen so far.
func (h *HealthTracker) Snapshot() []AgentHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]AgentHealth, 0, len(h.agents))
	for _, entry := range h.agents {
		out = append(out, *entry)
	}
	return out
}
