package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// EqualityFn decides whether two response texts count as the same answer.
// The default is literal string equality; a semantic-similarity
// implementation can be substituted without touching the voting logic.
type EqualityFn func(a, b string) bool

// ExactMatch is the default grouping function: literal text equality.
func ExactMatch(a, b string) bool { return a == b }

// Engine maps collected responses and a consensus policy to a result.
// When the chosen strategy rejects, it escalates to the synthesizer before
// giving up.
type Engine struct {
	registry    *Registry
	synthesizer *Synthesizer
	equals      EqualityFn
}

// NewEngine creates a consensus engine. A nil equality function selects
// ExactMatch.
func NewEngine(registry *Registry, synthesizer *Synthesizer, equals EqualityFn) *Engine {
	if equals == nil {
		equals = ExactMatch
	}
	return &Engine{
		registry:    registry,
		synthesizer: synthesizer,
		equals:      equals,
	}
}

// voteGroup is one cluster of agreeing responses. Groups are kept in a slice,
// first-seen order, so that "largest group wins" tie-breaks follow response
// arrival rather than map iteration.
type voteGroup struct {
	content string
	voters  []string
	weight  float64
}

// groupResponses clusters responses by the engine's equality function,
// preserving first-seen order. Responses must already be in arrival order.
func (e *Engine) groupResponses(responses []AgentResponse) []*voteGroup {
	var groups []*voteGroup
	for _, resp := range responses {
		var matched *voteGroup
		for _, g := range groups {
			if e.equals(g.content, resp.Content) {
				matched = g
				break
			}
		}
		if matched == nil {
			matched = &voteGroup{content: resp.Content}
			groups = append(groups, matched)
		}
		matched.voters = append(matched.voters, resp.AgentID)
		matched.weight += e.registry.Weight(resp.AgentID)
	}
	return groups
}

// Evaluate applies the configured strategy to the responses. Responses must
// be in arrival order. On strategy rejection it attempts synthesis and
// returns that result when synthesis succeeds; otherwise the rejection with
// full diagnostics comes back.
func (e *Engine) Evaluate(ctx context.Context, task *Task) ConsensusResult {
	responses := task.Responses()
	if len(responses) == 0 {
		return ConsensusResult{
			Success: false,
			Method:  string(task.Consensus.Strategy),
			Message: "No responses received",
		}
	}

	var result ConsensusResult
	switch task.Consensus.Strategy {
	case Unanimous:
		result = e.unanimous(responses)
	case WeightedVote:
		result = e.weightedVote(responses, task.Consensus.Threshold)
	case PrimaryWithVeto:
		result = e.primaryWithVeto(responses)
	default:
		result = e.majorityVote(responses, task.Consensus.Threshold)
	}

	if result.Success {
		return result
	}

	log.Printf("[Consensus] Task %s: %s rejected (%s), attempting synthesis",
		task.TaskID, task.Consensus.Strategy, result.Message)
	if merged, ok := e.synthesizer.Merge(ctx, responses); ok {
		return merged
	}
	return result
}

func (e *Engine) majorityVote(responses []AgentResponse, threshold float64) ConsensusResult {
	groups := e.groupResponses(responses)

	top := groups[0]
	for _, g := range groups[1:] {
		if len(g.voters) > len(top.voters) {
			top = g
		}
	}

	ratio := float64(len(top.voters)) / float64(len(responses))
	if ratio >= threshold {
		return ConsensusResult{
			Success:       true,
			ConsensusText: top.content,
			Confidence:    ratio,
			Supporters:    top.voters,
			Dissenters:    dissentersOf(responses, top.voters),
			Method:        string(MajorityVote),
			Message:       fmt.Sprintf("Majority agreement (%.1f%%)", ratio*100),
		}
	}

	votes := make(map[string]int, len(groups))
	for _, g := range groups {
		votes[g.content] = len(g.voters)
	}
	return ConsensusResult{
		Success:          false,
		Method:           string(MajorityVote),
		Message:          fmt.Sprintf("No majority agreement (highest: %.1f%%)", ratio*100),
		Responses:        rawResponses(responses),
		VoteDistribution: votes,
	}
}

func (e *Engine) weightedVote(responses []AgentResponse, threshold float64) ConsensusResult {
	groups := e.groupResponses(responses)

	var totalWeight float64
	for _, g := range groups {
		totalWeight += g.weight
	}

	top := groups[0]
	for _, g := range groups[1:] {
		if g.weight > top.weight {
			top = g
		}
	}

	share := top.weight / totalWeight
	if share >= threshold {
		return ConsensusResult{
			Success:       true,
			ConsensusText: top.content,
			Confidence:    share,
			Supporters:    top.voters,
			Dissenters:    dissentersOf(responses, top.voters),
			Method:        string(WeightedVote),
			Message:       fmt.Sprintf("Weighted agreement (%.1f%%)", share*100),
		}
	}

	shares := make(map[string]float64, len(groups))
	for _, g := range groups {
		shares[g.content] = g.weight / totalWeight
	}
	return ConsensusResult{
		Success:            false,
		Method:             string(WeightedVote),
		Message:            fmt.Sprintf("No weighted agreement (highest: %.1f%%)", share*100),
		Responses:          rawResponses(responses),
		WeightDistribution: shares,
	}
}

func (e *Engine) unanimous(responses []AgentResponse) ConsensusResult {
	first := responses[0].Content
	supporters := make([]string, 0, len(responses))
	for _, resp := range responses {
		if !e.equals(resp.Content, first) {
			return ConsensusResult{
				Success:   false,
				Method:    string(Unanimous),
				Message:   "No unanimous agreement",
				Responses: rawResponses(responses),
			}
		}
		supporters = append(supporters, resp.AgentID)
	}
	return ConsensusResult{
		Success:       true,
		ConsensusText: first,
		Confidence:    1.0,
		Supporters:    supporters,
		Method:        string(Unanimous),
		Message:       "Unanimous agreement",
	}
}

// primaryVetoConfidence is deliberately below 1.0: a single-source decision
// that went unchallenged is not the same as measured agreement.
const primaryVetoConfidence = 0.8

func (e *Engine) primaryWithVeto(responses []AgentResponse) ConsensusResult {
	primary := responses[0]
	primaryWeight := e.registry.Weight(primary.AgentID)
	for _, resp := range responses[1:] {
		if w := e.registry.Weight(resp.AgentID); w > primaryWeight {
			primary = resp
			primaryWeight = w
		}
	}

	var vetoes []string
	for _, resp := range responses {
		if resp.AgentID == primary.AgentID {
			continue
		}
		if containsVeto(resp.Content) {
			vetoes = append(vetoes, resp.AgentID)
		}
	}

	if len(vetoes) == 0 {
		return ConsensusResult{
			Success:       true,
			ConsensusText: primary.Content,
			Confidence:    primaryVetoConfidence,
			Supporters:    []string{primary.AgentID},
			PrimaryAgent:  primary.AgentID,
			Method:        string(PrimaryWithVeto),
			Message:       "Primary decision accepted with no vetoes",
		}
	}
	return ConsensusResult{
		Success:      false,
		Dissenters:   vetoes,
		PrimaryAgent: primary.AgentID,
		Method:       string(PrimaryWithVeto),
		Message:      fmt.Sprintf("Primary decision vetoed by %d agents", len(vetoes)),
		Responses:    rawResponses(responses),
	}
}

// containsVeto is the explicit-disagreement heuristic: a case-insensitive
// scan for "disagree" or "veto".
func containsVeto(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "disagree") || strings.Contains(lower, "veto")
}

func dissentersOf(responses []AgentResponse, supporters []string) []string {
	in := make(map[string]bool, len(supporters))
	for _, id := range supporters {
		in[id] = true
	}
	var out []string
	for _, resp := range responses {
		if !in[resp.AgentID] {
			out = append(out, resp.AgentID)
		}
	}
	return out
}

func rawResponses(responses []AgentResponse) map[string]string {
	out := make(map[string]string, len(responses))
	for _, resp := range responses {
		out[resp.AgentID] = resp.Content
	}
	return out
}
