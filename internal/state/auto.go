package state

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// AutoCommentaryState holds the cross-cutting bookkeeping for the
// auto-commentary engine: per-persona last-spoke times,
// a TTL'd dedupe map keyed by {obs_id, persona_id}, per-observation publish
// counters, a summary-dedupe set, and a short recent-persona list for
// diversity selection.
type AutoCommentaryState struct {
	mu sync.Mutex

	personaLastSpokeMS map[string]int64
	dedupe             map[string]int64 // "obsID:personaID" -> expiry ms
	obsCounters        map[string]*obsCounter
	summarySeen        map[string]int64 // sha256 hex -> expiry ms
	recentPersonas     *list.List       // front = most recent
	avoidRepeatLastN   int
}

type obsCounter struct {
	count     int
	expiresAt int64
}

// NewAutoCommentaryState constructs state that keeps avoidRepeatLastN
// recently-spoken persona ids for the diversity filter.
func NewAutoCommentaryState(avoidRepeatLastN int) *AutoCommentaryState {
	return &AutoCommentaryState{
		personaLastSpokeMS: make(map[string]int64),
		dedupe:             make(map[string]int64),
		obsCounters:        make(map[string]*obsCounter),
		summarySeen:        make(map[string]int64),
		recentPersonas:     list.New(),
		avoidRepeatLastN:   avoidRepeatLastN,
	}
}

// PersonaLastSpokeMS returns the last time personaID published auto-commentary.
func (s *AutoCommentaryState) PersonaLastSpokeMS(personaID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.personaLastSpokeMS[personaID]
}

// RecordEmit updates per-persona last-spoke time and the diversity
// short-list; the per-observation counter is bumped separately by
// IncrementObservationCount. Called only after a successful
// append, mirroring the chat-reactive engine's "on emit" sequencing.
func (s *AutoCommentaryState) RecordEmit(obsID, personaID string, nowMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personaLastSpokeMS[personaID] = nowMS

	for e := s.recentPersonas.Front(); e != nil; e = e.Next() {
		if e.Value.(string) == personaID {
			s.recentPersonas.Remove(e)
			break
		}
	}
	s.recentPersonas.PushFront(personaID)
	for s.recentPersonas.Len() > s.avoidRepeatLastN {
		s.recentPersonas.Remove(s.recentPersonas.Back())
	}
}

// RecentPersonas returns the short list of recently-spoken persona ids,
// most recent first.
func (s *AutoCommentaryState) RecentPersonas() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, s.recentPersonas.Len())
	for e := s.recentPersonas.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(string))
	}
	return out
}

// DedupeSeenOrMark reports whether {obsID, personaID} was already marked
// within its TTL; if not, it marks it now.
func (s *AutoCommentaryState) DedupeSeenOrMark(obsID, personaID string, nowMS, ttlMS int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepDedupeLocked(nowMS)
	key := obsID + ":" + personaID
	if exp, ok := s.dedupe[key]; ok && exp > nowMS {
		return true
	}
	s.dedupe[key] = nowMS + ttlMS
	return false
}

func (s *AutoCommentaryState) sweepDedupeLocked(nowMS int64) {
	for k, exp := range s.dedupe {
		if exp <= nowMS {
			delete(s.dedupe, k)
		}
	}
}

// ObservationCount returns the current publish count for obsID within the
// dedupe window; an expired counter reads as 0.
func (s *AutoCommentaryState) ObservationCount(obsID string, nowMS int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.obsCounters[obsID]
	if !ok || c.expiresAt <= nowMS {
		return 0
	}
	return c.count
}

// IncrementObservationCount bumps the per-observation counter, (re)starting
// its TTL window on first touch.
func (s *AutoCommentaryState) IncrementObservationCount(obsID string, nowMS, windowMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.obsCounters[obsID]
	if !ok || c.expiresAt <= nowMS {
		c = &obsCounter{expiresAt: nowMS + windowMS}
		s.obsCounters[obsID] = c
	}
	c.count++
}

// NormalizedSummaryHash returns the sha256 hex digest of a normalized summary.
func NormalizedSummaryHash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SummarySeenOrMark reports whether the normalized summary's hash was
// already seen within ttlMS; if not, it records it now.
func (s *AutoCommentaryState) SummarySeenOrMark(normalizedSummary string, nowMS, ttlMS int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.summarySeen {
		if exp <= nowMS {
			delete(s.summarySeen, k)
		}
	}
	hash := NormalizedSummaryHash(normalizedSummary)
	if exp, ok := s.summarySeen[hash]; ok && exp > nowMS {
		return true
	}
	s.summarySeen[hash] = nowMS + ttlMS
	return false
}
