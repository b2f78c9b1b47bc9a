package core

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Attempt is one step of an ordered fallback chain: a named call bounded by
// its own timeout. The dispatcher builds a chain per agent (primary endpoint,
// optional backup endpoint) and runs it through tryAttempts.
type Attempt struct {
	Tier    ResponseTier
	Timeout time.Duration
	Call    func(ctx context.Context) (string, error)
}

// tryAttempts runs each attempt in order until one succeeds, returning the
// content and the tier that produced it. Each attempt gets its own deadline
// derived from the parent context, so a cancelled task cuts the whole chain
// short. Failures are logged and swallowed; only the last error is returned
// when every attempt fails.
func tryAttempts(ctx context.Context, agentID string, attempts []Attempt) (string, ResponseTier, error) {
	var lastErr error
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, a.Timeout)
		content, err := a.Call(attemptCtx)
		cancel()
		if err == nil {
			return content, a.Tier, nil
		}
		lastErr = err
		log.Printf("[Dispatcher] Agent %s %s attempt failed: %v", agentID, a.Tier, err)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no attempts configured")
	}
	return "", "", lastErr
}
