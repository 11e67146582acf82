package memory

import (
	"sort"
	"strings"
	"sync"
)

// Local is an in-process indexed store scored by substring presence of
// normalized query tokens.
type Local struct {
	mu    sync.Mutex
	byKey map[string][]Item
}

// NewLocal constructs an empty local store.
func NewLocal() *Local {
	return &Local{byKey: make(map[string][]Item)}
}

// Upsert appends item under scopeKey. Items are treated as append-only;
// re-upserting the same id does not deduplicate.
func (l *Local) Upsert(scopeKey string, item Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byKey[scopeKey] = append(l.byKey[scopeKey], item)
	return nil
}

// Search scores items under scopeKey by normalized query-token presence:
// subject matches weigh 3, value 2, category 1. Results are ordered score
// desc, then timestamp desc, then id.
func (l *Local) Search(scopeKey, query string, limit int) ([]Item, error) {
	l.mu.Lock()
	items := append([]Item(nil), l.byKey[scopeKey]...)
	l.mu.Unlock()

	tokens := normalizeTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	type scoredItem struct {
		item  Item
		score int
	}
	scored := make([]scoredItem, 0, len(items))
	for _, it := range items {
		s := scoreItem(it, tokens)
		if s > 0 {
			scored = append(scored, scoredItem{item: it, score: s})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if !scored[i].item.TS.Equal(scored[j].item.TS) {
			return scored[i].item.TS.After(scored[j].item.TS)
		}
		return scored[i].item.ID < scored[j].item.ID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]Item, len(scored))
	for i, s := range scored {
		out[i] = s.item
	}
	return out, nil
}

// Describe implements Store.
func (l *Local) Describe() Description {
	return Description{Name: "local", Kind: "indexed"}
}

func normalizeTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

func scoreItem(item Item, tokens []string) int {
	subject := strings.ToLower(item.Subject)
	value := strings.ToLower(item.Value)
	category := strings.ToLower(item.Category)

	score := 0
	for _, t := range tokens {
		if strings.Contains(subject, t) {
			score += 3
		}
		if strings.Contains(value, t) {
			score += 2
		}
		if strings.Contains(category, t) {
			score += 1
		}
	}
	return score
}
