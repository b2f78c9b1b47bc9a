package core

import (
	"sync"
	"time"
)

// AgentConfig describes the identity and reachability of one agent.
// An agent is a remote text-generation endpoint; it may be a plain HTTP
// service or an SDK-backed provider (see llm-client endpoint schemes).
type AgentConfig struct {
	AgentID           string        `json:"agent_id"`
	Name              string        `json:"name"`
	Role              string        `json:"role"` // free-form tag, e.g. "code_reviewer"
	PrimaryEndpoint   string        `json:"primary_endpoint"`
	PrimaryCredential string        `json:"primary_credential,omitempty"`
	BackupEndpoint    string        `json:"backup_endpoint,omitempty"`
	BackupCredential  string        `json:"backup_credential,omitempty"`
	Weight            float64       `json:"weight"`  // used only by weighted voting
	Timeout           time.Duration `json:"timeout"` // per-endpoint call budget
}

// ConsensusStrategy selects how collected responses are turned into one answer.
type ConsensusStrategy string

const (
	MajorityVote    ConsensusStrategy = "majority_vote"
	WeightedVote    ConsensusStrategy = "weighted_vote"
	Unanimous       ConsensusStrategy = "unanimous"
	PrimaryWithVeto ConsensusStrategy = "primary_with_veto"
)

// ConsensusConfig is the per-task consensus policy.
type ConsensusConfig struct {
	Strategy  ConsensusStrategy `json:"strategy"`
	Threshold float64           `json:"threshold"` // required agreement fraction, [0,1]
	Timeout   time.Duration     `json:"timeout"`   // task-level deadline for collecting responses
}

// Defaults applied when a task is created without an explicit policy.
const (
	DefaultThreshold    = 0.5
	DefaultTaskTimeout  = 30 * time.Second
	DefaultAgentTimeout = 10 * time.Second
	DefaultAgentWeight  = 1.0
)

// DefaultConsensusConfig returns the policy used when the caller supplies none.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{
		Strategy:  MajorityVote,
		Threshold: DefaultThreshold,
		Timeout:   DefaultTaskTimeout,
	}
}

// TaskStatus tracks a task through its lifecycle. Transitions only move
// forward; every status other than Created, Running and Partial is terminal.
type TaskStatus string

const (
	TaskCreated     TaskStatus = "created"
	TaskRunning     TaskStatus = "running"
	TaskCompleted   TaskStatus = "completed"
	TaskNoConsensus TaskStatus = "no_consensus"
	TaskPartial     TaskStatus = "partial" // deadline hit with a non-empty response subset
	TaskFailed      TaskStatus = "failed"  // deadline hit with zero responses
)

// Terminal reports whether a task in this status can no longer change.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskNoConsensus, TaskFailed:
		return true
	}
	return false
}

// ResponseTier records which attempt of the fallback chain produced a response.
type ResponseTier string

const (
	TierPrimary       ResponseTier = "primary"
	TierBackup        ResponseTier = "backup"
	TierLocalFallback ResponseTier = "local-fallback"
)

// AgentResponse is one agent's answer to a task. Created once, never mutated.
type AgentResponse struct {
	AgentID    string       `json:"agent_id"`
	Content    string       `json:"content"`
	ReceivedAt time.Time    `json:"received_at"`
	Via        ResponseTier `json:"via"`
}

// Task is one unit of work distributed to a set of agents.
//
// The embedded mutex is the single mutual-exclusion point for the response
// map during the running phase: concurrent per-agent completions append
// through AddResponse, and the consensus engine reads a snapshot only after
// the dispatcher's fan-in barrier. Arrival order is carried alongside the
// map so that tie-breaks are reproducible.
type Task struct {
	TaskID      string           `json:"task_id"`
	Description string           `json:"description"`
	Context     map[string]any   `json:"context"`
	AgentIDs    []string         `json:"agent_ids"`
	Consensus   ConsensusConfig  `json:"consensus_config"`
	Status      TaskStatus       `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Result      *ConsensusResult `json:"result,omitempty"`

	mu        sync.Mutex
	responses map[string]AgentResponse
	arrival   []string // agent IDs in completion order
}

// AddResponse records one agent's answer, preserving arrival order.
// Duplicate completions for the same agent are ignored.
func (t *Task) AddResponse(resp AgentResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.responses == nil {
		t.responses = make(map[string]AgentResponse)
	}
	if _, dup := t.responses[resp.AgentID]; dup {
		return
	}
	t.responses[resp.AgentID] = resp
	t.arrival = append(t.arrival, resp.AgentID)
}

// Responses returns the collected responses in arrival order.
func (t *Task) Responses() []AgentResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AgentResponse, 0, len(t.arrival))
	for _, id := range t.arrival {
		out = append(out, t.responses[id])
	}
	return out
}

// ResponseCount returns how many agents have answered so far.
func (t *Task) ResponseCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.responses)
}

// ConsensusResult is the consensus engine's output for one task evaluation.
type ConsensusResult struct {
	Success       bool     `json:"success"`
	ConsensusText string   `json:"consensus,omitempty"`
	Confidence    float64  `json:"confidence"`
	Supporters    []string `json:"supporters,omitempty"`
	Dissenters    []string `json:"dissenters,omitempty"`
	Method        string   `json:"method"`
	Message       string   `json:"message"`
	PrimaryAgent  string   `json:"primary_agent,omitempty"` // set by primary-with-veto

	// Diagnostics populated on rejection so a human can see the
	// disagreement, not just "failed".
	Responses          map[string]string  `json:"responses,omitempty"`
	VoteDistribution   map[string]int     `json:"vote_distribution,omitempty"`
	WeightDistribution map[string]float64 `json:"weight_distribution,omitempty"`
}
