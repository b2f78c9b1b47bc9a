package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Orchestrator owns the task table and is the only component that moves a
// task between lifecycle states. One instance is constructed by the process
// entry point and handed to whatever exposes it over the network.
type Orchestrator struct {
	registry   *Registry
	dispatcher *Dispatcher
	engine     *Engine
	health     *HealthTracker

	mu    sync.RWMutex
	tasks map[string]*Task
}

// OrchestratorConfig wires an orchestrator to its collaborators.
type OrchestratorConfig struct {
	Registry *Registry
	Caller   AgentCaller
	Fallback FallbackGenerator
	Equality EqualityFn // nil selects literal text equality
}

// NewOrchestrator builds the full pipeline: dispatcher, consensus engine and
// synthesis fallback over a shared registry.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	synthesizer := NewSynthesizer(cfg.Fallback)
	health := NewHealthTracker()
	return &Orchestrator{
		registry:   registry,
		dispatcher: NewDispatcher(registry, cfg.Caller, cfg.Fallback, health),
		engine:     NewEngine(registry, synthesizer, cfg.Equality),
		health:     health,
		tasks:      make(map[string]*Task),
	}
}

// Registry exposes the agent registry for registration calls.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Health exposes the agent health tracker.
func (o *Orchestrator) Health() *HealthTracker {
	return o.health
}

// CreateTask validates and stores a new task, returning its ID. Unknown
// agents and malformed thresholds are rejected here so a bad task is never
// partially executed.
func (o *Orchestrator) CreateTask(description string, taskContext map[string]any, agentIDs []string, consensus *ConsensusConfig) (string, error) {
	if len(agentIDs) == 0 {
		return "", ErrNoAgents
	}
	for _, agentID := range agentIDs {
		if _, err := o.registry.Get(agentID); err != nil {
			return "", err
		}
	}

	cfg := DefaultConsensusConfig()
	if consensus != nil {
		cfg = *consensus
		if cfg.Threshold < 0 || cfg.Threshold > 1 {
			return "", fmt.Errorf("threshold %.2f: %w", cfg.Threshold, ErrInvalidThreshold)
		}
		if cfg.Threshold == 0 {
			cfg.Threshold = DefaultThreshold
		}
		if cfg.Strategy == "" {
			cfg.Strategy = MajorityVote
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultTaskTimeout
		}
	}

	task := &Task{
		TaskID:      uuid.NewString(),
		Description: description,
		Context:     taskContext,
		AgentIDs:    append([]string(nil), agentIDs...),
		Consensus:   cfg,
		Status:      TaskCreated,
		CreatedAt:   time.Now(),
	}

	o.mu.Lock()
	o.tasks[task.TaskID] = task
	o.mu.Unlock()

	log.Printf("[Orchestrator] Created task %s for %d agents (strategy=%s)",
		task.TaskID, len(agentIDs), cfg.Strategy)
	return task.TaskID, nil
}

// GetTask returns a task by ID.
func (o *Orchestrator) GetTask(taskID string) (*Task, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	task, exists := o.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return task, nil
}

// TaskState returns a consistent view of a task's status and result, safe to
// call while the task is executing.
func (o *Orchestrator) TaskState(taskID string) (TaskStatus, *ConsensusResult, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	task, exists := o.tasks[taskID]
	if !exists {
		return "", nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return task.Status, task.Result, nil
}

// ExecuteTask runs a created task to a terminal state and returns its
// consensus result. Agent-level failures never surface as errors; the result
// value describes what was attempted and why it did or did not succeed.
// Calling ExecuteTask on an already-terminal task returns the stored result
// without re-dispatching.
func (o *Orchestrator) ExecuteTask(ctx context.Context, taskID string) (ConsensusResult, error) {
	task, err := o.GetTask(taskID)
	if err != nil {
		return ConsensusResult{}, err
	}

	o.mu.Lock()
	if task.Status.Terminal() {
		o.mu.Unlock()
		if task.Result != nil {
			return *task.Result, nil
		}
		return ConsensusResult{
			Success: false,
			Method:  string(task.Consensus.Strategy),
			Message: "All agents failed to respond",
		}, nil
	}
	if task.Status == TaskRunning {
		o.mu.Unlock()
		return ConsensusResult{}, fmt.Errorf("task %s is already running", taskID)
	}
	task.Status = TaskRunning
	o.mu.Unlock()

	status := o.dispatcher.Dispatch(ctx, task)

	o.mu.Lock()
	task.Status = status
	o.mu.Unlock()

	if status == TaskFailed {
		log.Printf("[Orchestrator] Task %s failed: no agents responded", taskID)
		return ConsensusResult{
			Success: false,
			Method:  string(task.Consensus.Strategy),
			Message: "All agents failed to respond",
		}, nil
	}

	result := o.engine.Evaluate(ctx, task)

	o.mu.Lock()
	task.Result = &result
	if result.Success {
		task.Status = TaskCompleted
	} else {
		task.Status = TaskNoConsensus
	}
	o.mu.Unlock()

	log.Printf("[Orchestrator] Task %s finished: status=%s method=%s confidence=%.2f",
		taskID, task.Status, result.Method, result.Confidence)
	return result, nil
}
