package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Synthesizer merges divergent responses into one answer when voting fails.
// It leans on the local fallback generator under the "synthesizer" role.
type Synthesizer struct {
	generator FallbackGenerator
}

// NewSynthesizer creates a synthesizer backed by the given generator.
func NewSynthesizer(generator FallbackGenerator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// synthesisConfidence is strictly lower than any direct-vote success; a
// merged answer is a best effort, not agreement.
const synthesisConfidence = 0.7

// minSynthesisLength is a cheap validity guard, not a semantic check.
const minSynthesisLength = 10

// Merge builds a synthesis prompt from the raw responses and asks the
// generator to reconcile them. The second return value reports whether the
// merged answer passed validation; on false the caller should fall back to
// its original rejection.
func (s *Synthesizer) Merge(ctx context.Context, responses []AgentResponse) (ConsensusResult, bool) {
	var b strings.Builder
	b.WriteString("You are a synthesis agent tasked with merging multiple responses into a single coherent solution. ")
	b.WriteString("Below are the responses from different agents. ")
	b.WriteString("Create a solution that incorporates the best parts of each response and resolves any conflicts:\n\n")
	for i, resp := range responses {
		fmt.Fprintf(&b, "Agent %d:\n%s\n\n", i+1, resp.Content)
	}
	b.WriteString("Synthesized solution:")

	merged := s.generator.Generate(ctx, b.String(), "synthesizer")
	if len(merged) <= minSynthesisLength {
		log.Printf("[Synthesis] Merged response failed length guard (%d chars)", len(merged))
		return ConsensusResult{
			Success: false,
			Method:  "synthesis_failed",
			Message: "Could not merge divergent responses",
		}, false
	}

	return ConsensusResult{
		Success:       true,
		ConsensusText: merged,
		Confidence:    synthesisConfidence,
		Method:        "synthesis",
		Message:       "Successfully merged different perspectives",
	}, true
}
