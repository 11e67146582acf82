package persona

import (
	"context"
	"regexp"
	"strings"

	"github.com/chattersys/chatter/internal/llmprovider"
	"github.com/chattersys/chatter/internal/memory"
	"github.com/chattersys/chatter/internal/protocol"
)

// ExtractCounters tracks the auto-extract path's outcomes. Mirrors the
// original implementation's counter shape exactly, including the
// double-counting quirk preserved by  Open Question 1.
type ExtractCounters struct {
	Accepted int64
	Rejected int64
}

// heuristicPatterns are simple "I like X" / "my favorite X is Y" style
// extractors used before falling back to an LLM pass.
var heuristicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi (?:like|love) ([a-z0-9 ]{2,40})\b`),
	regexp.MustCompile(`(?i)\bmy favorite ([a-z0-9 ]{2,20}) is ([a-z0-9 ]{2,40})\b`),
}

// Extractor extracts candidate memory items from human-authored content,
// gates them through the policy engine and redaction, and upserts accepted
// items.
type Extractor struct {
	Store    memory.Store
	Policy   memory.PolicyConfig
	Patterns []memory.RedactionPattern
	Provider llmprovider.Provider // optional: nil disables the LLM fallback path
}

// ExtractAndStore runs the heuristic path, then (if nothing was accepted and
// a Provider is configured) an LLM fallback path, against msg for the given
// persona's scope_key. It returns the counters observed during this call.
//
// The final branch below exactly reproduces the original implementation's
// double-count: when neither path accepted anything and the rejected count
// did not change across the call, it increments Rejected once more. This is
// preserved rather than fixed (Open Question 1).
func (e *Extractor) ExtractAndStore(ctx context.Context, msg protocol.ChatMessage, scopeKey string) ExtractCounters {
	var counters ExtractCounters
	rejectedBefore := counters.Rejected

	accepted := e.runHeuristic(msg, scopeKey, &counters)
	if !accepted && e.Provider != nil {
		accepted = e.runLLMFallback(ctx, msg, scopeKey, &counters)
	}

	if !accepted && rejectedBefore == counters.Rejected {
		counters.Rejected++
	}
	return counters
}

func (e *Extractor) runHeuristic(msg protocol.ChatMessage, scopeKey string, counters *ExtractCounters) bool {
	anyAccepted := false
	for _, re := range heuristicPatterns {
		m := re.FindStringSubmatch(msg.Content)
		if m == nil {
			continue
		}
		subject := "preference"
		value := strings.TrimSpace(m[len(m)-1])
		if e.storeCandidate(msg, scopeKey, "preference", subject, value, 0.6, counters) {
			anyAccepted = true
		}
	}
	return anyAccepted
}

func (e *Extractor) runLLMFallback(ctx context.Context, msg protocol.ChatMessage, scopeKey string, counters *ExtractCounters) bool {
	resp, err := e.Provider.Complete(ctx, llmprovider.Request{
		Purpose:    "memory_extract",
		UserPrompt: "Extract one short fact from: " + msg.Content,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		counters.Rejected++
		return false
	}
	return e.storeCandidate(msg, scopeKey, "fact", "observed", resp.Text, 0.5, counters)
}

func (e *Extractor) storeCandidate(msg protocol.ChatMessage, scopeKey, category, subject, value string, confidence float64, counters *ExtractCounters) bool {
	redacted := memory.Redact(value, e.Patterns)
	if redacted.Emptied {
		counters.Rejected++
		return false
	}

	item := memory.Item{
		TS:         msg.TS,
		Scope:      memory.ScopePersonaUser,
		ScopeKey:   scopeKey,
		Category:   category,
		Subject:    subject,
		Value:      redacted.Value,
		Confidence: confidence,
		Source:     memory.Source{Kind: "chat_extract", MessageID: msg.ID, UserID: msg.UserID, Origin: string(msg.Origin)},
		Redactions: redacted.Notes,
	}

	finalItem, decision := memory.Apply(e.Policy, item)
	if !decision.Accept {
		counters.Rejected++
		return false
	}
	if err := e.Store.Upsert(scopeKey, finalItem); err != nil {
		counters.Rejected++
		return false
	}
	counters.Accepted++
	return true
}
