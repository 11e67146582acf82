package memory

// PolicyConfig gates each write by scope, category, and confidence.
type PolicyConfig struct {
	Enabled        bool
	AllowedScopes  map[Scope]bool
	AllowCategory  map[string]bool
	DenyCategory   map[string]bool
	MinConfidence  float64
	DefaultTTLDays int
	MaxTTLDays     int
}

// Decision is the policy engine's verdict plus the reason for a rejection.
type Decision struct {
	Accept bool
	Reason string
}

// Apply gates item against cfg, returning the (possibly TTL-adjusted) item
// and the decision. The caller is responsible for redaction before calling
// Apply with the final value (redaction emptiness is a separate rejection
// path — see Redact).
func Apply(cfg PolicyConfig, item Item) (Item, Decision) {
	if !cfg.Enabled {
		return item, Decision{Reason: "disabled"}
	}
	if !cfg.AllowedScopes[item.Scope] {
		return item, Decision{Reason: "scope_not_allowed"}
	}
	if len(cfg.AllowCategory) > 0 && !cfg.AllowCategory[item.Category] {
		return item, Decision{Reason: "category_not_allowed"}
	}
	if cfg.DenyCategory[item.Category] {
		return item, Decision{Reason: "category_denied"}
	}
	if item.Confidence < cfg.MinConfidence {
		return item, Decision{Reason: "low_confidence"}
	}

	if item.TTLDays <= 0 {
		item.TTLDays = cfg.DefaultTTLDays
	}
	if cfg.MaxTTLDays > 0 && item.TTLDays > cfg.MaxTTLDays {
		item.TTLDays = cfg.MaxTTLDays
	}

	return item, Decision{Accept: true, Reason: "accepted"}
}
