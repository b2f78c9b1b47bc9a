package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// stubCaller routes calls through a test-provided function.
type stubCaller struct {
	calls int64
	fn    func(ctx context.Context, endpoint, credential, prompt string, taskContext map[string]any) (string, error)
}

func (c *stubCaller) Call(ctx context.Context, endpoint, credential, prompt string, taskContext map[string]any) (string, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.fn(ctx, endpoint, credential, prompt, taskContext)
}

func newDispatchTask(agentIDs []string, timeout time.Duration) *Task {
	return &Task{
		TaskID:      "t1",
		Description: "do the thing",
		AgentIDs:    agentIDs,
		Consensus: ConsensusConfig{
			Strategy:  MajorityVote,
			Threshold: 0.5,
			Timeout:   timeout,
		},
		Status: TaskRunning,
	}
}

func TestDispatch_PrimaryTier(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register(AgentConfig{AgentID: "A", PrimaryEndpoint: "https://primary.test"}); err != nil {
		t.Fatal(err)
	}
	caller := &stubCaller{fn: func(ctx context.Context, endpoint, _, _ string, _ map[string]any) (string, error) {
		return "answer", nil
	}}
	d := NewDispatcher(registry, caller, &stubGenerator{text: "local"}, nil)

	task := newDispatchTask([]string{"A"}, time.Second)
	status := d.Dispatch(context.Background(), task)
	if status != TaskRunning {
		t.Fatalf("status = %s, want running (all agents resolved)", status)
	}
	responses := task.Responses()
	if len(responses) != 1 || responses[0].Via != TierPrimary || responses[0].Content != "answer" {
		t.Fatalf("responses = %+v", responses)
	}
}

func TestDispatch_BackupTier(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register(AgentConfig{
		AgentID:         "A",
		PrimaryEndpoint: "https://primary.test",
		BackupEndpoint:  "https://backup.test",
	}); err != nil {
		t.Fatal(err)
	}
	caller := &stubCaller{fn: func(ctx context.Context, endpoint, _, _ string, _ map[string]any) (string, error) {
		if endpoint == "https://backup.test" {
			return "from backup", nil
		}
		return "", errors.New("primary down")
	}}
	d := NewDispatcher(registry, caller, &stubGenerator{text: "local"}, nil)

	task := newDispatchTask([]string{"A"}, time.Second)
	d.Dispatch(context.Background(), task)
	responses := task.Responses()
	if len(responses) != 1 || responses[0].Via != TierBackup {
		t.Fatalf("responses = %+v, want one via backup", responses)
	}
}

func TestDispatch_LocalFallbackTier(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register(AgentConfig{
		AgentID:         "A",
		Role:            "code_reviewer",
		PrimaryEndpoint: "https://primary.test",
		BackupEndpoint:  "https://backup.test",
	}); err != nil {
		t.Fatal(err)
	}
	caller := &stubCaller{fn: func(ctx context.Context, _, _, _ string, _ map[string]any) (string, error) {
		return "", errors.New("unreachable")
	}}
	health := NewHealthTracker()
	d := NewDispatcher(registry, caller, &stubGenerator{text: "templated local answer"}, health)

	task := newDispatchTask([]string{"A"}, time.Second)
	d.Dispatch(context.Background(), task)
	responses := task.Responses()
	if len(responses) != 1 {
		t.Fatalf("expected one response, got %d", len(responses))
	}
	if responses[0].Via != TierLocalFallback {
		t.Fatalf("via = %s, want local-fallback", responses[0].Via)
	}
	if responses[0].Content == "" {
		t.Fatal("local fallback must always produce text")
	}
	if atomic.LoadInt64(&caller.calls) != 2 {
		t.Fatalf("caller invoked %d times, want primary+backup", caller.calls)
	}
	if h, err := health.Get("A"); err != nil || h.Status != HealthDegraded {
		t.Fatalf("health = %+v (%v), want degraded", h, err)
	}
}

func TestDispatch_DeadlineWithPartialResponses(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"fast", "slow"} {
		if _, err := registry.Register(AgentConfig{
			AgentID:         id,
			PrimaryEndpoint: "https://" + id + ".test",
			Timeout:         time.Second,
		}); err != nil {
			t.Fatal(err)
		}
	}
	caller := &stubCaller{fn: func(ctx context.Context, endpoint, _, _ string, _ map[string]any) (string, error) {
		if endpoint == "https://fast.test" {
			return "quick answer", nil
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	d := NewDispatcher(registry, caller, &stubGenerator{text: "local"}, nil)

	task := newDispatchTask([]string{"fast", "slow"}, 50*time.Millisecond)
	status := d.Dispatch(context.Background(), task)
	if status != TaskPartial {
		t.Fatalf("status = %s, want partial", status)
	}
	responses := task.Responses()
	if len(responses) != 1 || responses[0].AgentID != "fast" {
		t.Fatalf("responses = %+v, want only the fast agent", responses)
	}
}

func TestDispatch_DeadlineWithNoResponses(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register(AgentConfig{
		AgentID:         "A",
		PrimaryEndpoint: "https://a.test",
		Timeout:         time.Second,
	}); err != nil {
		t.Fatal(err)
	}
	caller := &stubCaller{fn: func(ctx context.Context, _, _, _ string, _ map[string]any) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	d := NewDispatcher(registry, caller, &stubGenerator{text: "local"}, nil)

	task := newDispatchTask([]string{"A"}, 50*time.Millisecond)
	status := d.Dispatch(context.Background(), task)
	if status != TaskFailed {
		t.Fatalf("status = %s, want failed", status)
	}
	if task.ResponseCount() != 0 {
		t.Fatalf("expected no responses, got %d", task.ResponseCount())
	}
}

func TestTryAttempts_StopsAtFirstSuccess(t *testing.T) {
	var secondCalled bool
	attempts := []Attempt{
		{
			Tier:    TierPrimary,
			Timeout: time.Second,
			Call:    func(ctx context.Context) (string, error) { return "first", nil },
		},
		{
			Tier:    TierBackup,
			Timeout: time.Second,
			Call: func(ctx context.Context) (string, error) {
				secondCalled = true
				return "second", nil
			},
		},
	}
	content, tier, err := tryAttempts(context.Background(), "A", attempts)
	if err != nil || content != "first" || tier != TierPrimary {
		t.Fatalf("got (%q, %s, %v)", content, tier, err)
	}
	if secondCalled {
		t.Fatal("backup attempt should not run after primary success")
	}
}

func TestTryAttempts_PerAttemptTimeout(t *testing.T) {
	attempts := []Attempt{{
		Tier:    TierPrimary,
		Timeout: 20 * time.Millisecond,
		Call: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}}
	start := time.Now()
	_, _, err := tryAttempts(context.Background(), "A", attempts)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("attempt not bounded by its timeout, took %v", elapsed)
	}
}
