// Package persona implements the chat-reactive and auto-commentary decision
// engines, following a rule-based ordered gate-chain dispatch idiom: each
// gate either short-circuits with a reason or falls through to the next.
package persona

// Safety carries the persona's reply-length ceiling.
type Safety struct {
	MaxChars int `json:"max_chars"`
}

// Anchor is the persona's optional voice material.
type Anchor struct {
	Bio          string   `json:"bio,omitempty"`
	VoiceRules   []string `json:"voice_rules,omitempty"`
	Catchphrases []string `json:"catchphrases,omitempty"`
}

// Presentation carries cosmetic fields surfaced on bot-origin messages.
type Presentation struct {
	Badges []string       `json:"badges,omitempty"`
	Style  map[string]any `json:"style,omitempty"`
}

// Config is one persona's immutable, process-start configuration.
type Config struct {
	PersonaID    string       `json:"persona_id"`
	DisplayName  string       `json:"display_name"`
	Safety       Safety       `json:"safety"`
	Anchor       Anchor       `json:"anchor,omitempty"`
	Presentation Presentation `json:"presentation,omitempty"`

	HypeThreshold       float64  `json:"hype_threshold"`
	TriggerTags         []string `json:"trigger_tags,omitempty"`
	TriggerOnEntities    bool    `json:"trigger_on_entities"`
}

// Timing carries the chat-reactive engine's budgets and cooldowns.
type Timing struct {
	MaxReactAgeS          int64   `json:"max_react_age_s"`
	SoftCooldownMS        int64   `json:"soft_cooldown_ms"`
	HardCooldownMS        int64   `json:"hard_cooldown_ms"`
	BotBudgetWindowMS     int64   `json:"bot_budget_window_ms"`
	MaxBotMsgsPer10s      int     `json:"max_bot_msgs_per_10s"`
	PBase                 float64 `json:"p_base"`
	PMentionBonus         float64 `json:"p_mention_bonus"`
	PHypeBonus            float64 `json:"p_hype_bonus"`
	PRatePenaltyPerMsg    float64 `json:"p_rate_penalty_per_msg"`
	MomentumWindowMS      int64   `json:"momentum_window_ms"`
	MomentumMaxCount      int     `json:"momentum_max_count"`
	MomentumMinIntervalMS int64   `json:"momentum_min_interval_ms"`
	RoomRateLimitMS       int64   `json:"room_rate_limit_ms"`
	DedupeWindowMS        int64   `json:"dedupe_window_ms"`
	MaxMessagesPerObs     int     `json:"max_messages_per_observation"`
	SummaryDedupeEnabled  bool    `json:"summary_dedupe_enabled"`
	SummaryDedupeTTLMS    int64   `json:"summary_dedupe_ttl_ms"`
	AvoidRepeatLastN      int     `json:"avoid_repeat_last_n"`
}

// EmotePolicy restricts which emotes auto-append may choose from.
type EmotePolicy struct {
	AllowedEmotes []string `json:"allowed_emotes,omitempty"`
}

// RoomConfig is one room's immutable, process-start configuration.
type RoomConfig struct {
	RoomID          string      `json:"room_id"`
	EnabledPersonas []string    `json:"enabled_personas"`
	Timing          Timing      `json:"timing"`
	EmotePolicy     EmotePolicy `json:"emote_policy,omitempty"`
}
