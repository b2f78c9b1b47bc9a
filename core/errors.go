package core

import "errors"

// Sentinel errors for configuration problems. These are the only errors the
// orchestrator surfaces to callers; per-agent transport failures are absorbed
// by the dispatcher's fallback chain and never cross a stage boundary.
var (
	ErrAgentNotFound    = errors.New("agent not registered")
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidWeight    = errors.New("agent weight must be non-negative")
	ErrInvalidThreshold = errors.New("consensus threshold must be in [0,1]")
	ErrNoAgents         = errors.New("task requires at least one agent")
)
