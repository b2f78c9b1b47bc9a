package core

import (
	"context"
	"log"
	"time"
)

// AgentCaller reaches one remote agent endpoint. Implementations live in the
// llm-client package; the dispatcher only sees this capability.
type AgentCaller interface {
	Call(ctx context.Context, endpoint, credential, prompt string, taskContext map[string]any) (string, error)
}

// FallbackGenerator produces a local best-effort answer when every remote
// tier has failed. Contract: never returns an error; any internal failure
// degrades to a templated string.
type FallbackGenerator interface {
	Generate(ctx context.Context, prompt, role string) string
}

// Dispatcher fans a task out to its assigned agents concurrently and
// populates the task's response set. It owns the task record for the
// duration of the running phase.
type Dispatcher struct {
	registry *Registry
	caller   AgentCaller
	fallback FallbackGenerator
	health   *HealthTracker
}

// NewDispatcher wires a dispatcher to its registry and transport capabilities.
func NewDispatcher(registry *Registry, caller AgentCaller, fallback FallbackGenerator, health *HealthTracker) *Dispatcher {
	if health == nil {
		health = NewHealthTracker()
	}
	return &Dispatcher{
		registry: registry,
		caller:   caller,
		fallback: fallback,
		health:   health,
	}
}

// Dispatch runs the per-agent fallback chains concurrently and waits for all
// of them, but not longer than the task's consensus timeout. It returns the
// resulting task status: TaskRunning when every agent resolved in time,
// TaskPartial when the deadline cut the fan-out short with at least one
// response, and TaskFailed when nothing arrived at all.
//
// Per-agent failures never escape this method; the three-tier chain
// guarantees each agent slot resolves to some response or is simply absent.
func (d *Dispatcher) Dispatch(ctx context.Context, task *Task) TaskStatus {
	timeout := task.Consensus.Timeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	remaining := make(chan struct{}, len(task.AgentIDs))
	for _, agentID := range task.AgentIDs {
		go func(agentID string) {
			defer func() { remaining <- struct{}{} }()
			d.callAgent(taskCtx, task, agentID)
		}(agentID)
	}
	go func() {
		for range task.AgentIDs {
			<-remaining
		}
		close(done)
	}()

	select {
	case <-done:
		log.Printf("[Dispatcher] Task %s: all %d agents resolved", task.TaskID, len(task.AgentIDs))
		return TaskRunning
	case <-taskCtx.Done():
		got := task.ResponseCount()
		if got == 0 {
			log.Printf("[Dispatcher] Task %s: deadline elapsed with no responses", task.TaskID)
			return TaskFailed
		}
		log.Printf("[Dispatcher] Task %s: deadline elapsed with %d/%d responses",
			task.TaskID, got, len(task.AgentIDs))
		return TaskPartial
	}
}

// callAgent runs the three-tier fallback chain for one agent and appends the
// outcome to the task. The local-fallback tier never fails, so the only way
// an agent slot stays empty is task-level cancellation mid-chain.
func (d *Dispatcher) callAgent(ctx context.Context, task *Task, agentID string) {
	agent, err := d.registry.Get(agentID)
	if err != nil {
		// Agents are validated at task creation; this only happens if one
		// was removed between creation and execution.
		log.Printf("[Dispatcher] Task %s: %v", task.TaskID, err)
		return
	}

	attempts := []Attempt{{
		Tier:    TierPrimary,
		Timeout: agent.Timeout,
		Call: func(ctx context.Context) (string, error) {
			return d.caller.Call(ctx, agent.PrimaryEndpoint, agent.PrimaryCredential, task.Description, task.Context)
		},
	}}
	if agent.BackupEndpoint != "" {
		attempts = append(attempts, Attempt{
			Tier:    TierBackup,
			Timeout: agent.Timeout,
			Call: func(ctx context.Context) (string, error) {
				return d.caller.Call(ctx, agent.BackupEndpoint, agent.BackupCredential, task.Description, task.Context)
			},
		})
	}

	content, tier, err := tryAttempts(ctx, agentID, attempts)
	if err != nil {
		if ctx.Err() != nil {
			// Task deadline fired mid-chain; record nothing rather than a
			// partial local answer the caller never asked to wait for.
			d.health.RecordFailure(agentID)
			return
		}
		log.Printf("[Dispatcher] Agent %s: all endpoints failed, using local fallback", agentID)
		content = d.fallback.Generate(ctx, task.Description, agent.Role)
		tier = TierLocalFallback
	}

	d.health.RecordSuccess(agentID, tier)
	task.AddResponse(AgentResponse{
		AgentID:    agentID,
		Content:    content,
		ReceivedAt: time.Now(),
		Via:        tier,
	})
}
