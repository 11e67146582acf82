package moderation

import "github.com/chattersys/chatter/internal/protocol"

// Result is the outcome of applying a pattern list to sanitized content.
type Result struct {
	Content string
	Action  protocol.ModerationAction
	Reasons []string
}

// Apply substitutes every pattern match in content and records the ordered,
// distinct list of matching kinds. Action is "allow" when nothing matched,
// "redact" otherwise: "block" is never produced. Content that redacts down
// to empty is a drop, decided by the gateway's ingest consumer, not by this
// package.
func Apply(content string, patterns []Pattern) Result {
	out := content
	seen := make(map[Kind]bool, len(patterns))
	var reasons []string

	for _, p := range patterns {
		if !p.Regex.MatchString(out) {
			continue
		}
		out = p.Regex.ReplaceAllString(out, p.Replacement)
		if !seen[p.Kind] {
			seen[p.Kind] = true
			reasons = append(reasons, string(p.Kind))
		}
	}

	action := protocol.ModerationAllow
	if len(reasons) > 0 {
		action = protocol.ModerationRedact
	}
	return Result{Content: out, Action: action, Reasons: reasons}
}
