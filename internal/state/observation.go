package state

import (
	"sync"

	"github.com/chattersys/chatter/internal/protocol"
)

// obsEntry is a buffered observation keyed by its bus entry id, tagged with
// the ingest timestamp used for pruning.
type obsEntry struct {
	busID string
	tsMS  int64
	obs   protocol.StreamObservation
}

// ObservationBuffer is the per-room set of recently seen observations,
// pruned by age and by cardinality.
type ObservationBuffer struct {
	mu        sync.Mutex
	maxAgeMS  int64
	maxCount  int
	entries   []obsEntry
}

// NewObservationBuffer constructs a buffer pruned to maxAgeMS age and
// maxCount cardinality.
func NewObservationBuffer(maxAgeMS int64, maxCount int) *ObservationBuffer {
	return &ObservationBuffer{maxAgeMS: maxAgeMS, maxCount: maxCount}
}

// Add records an observation and prunes stale/overflow entries.
func (b *ObservationBuffer) Add(busID string, tsMS int64, obs protocol.StreamObservation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, obsEntry{busID: busID, tsMS: tsMS, obs: obs})
	b.pruneLocked(tsMS)
}

func (b *ObservationBuffer) pruneLocked(nowMS int64) {
	cutoff := nowMS - b.maxAgeMS
	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.tsMS >= cutoff {
			kept = append(kept, e)
		}
	}
	b.entries = kept
	if len(b.entries) > b.maxCount {
		b.entries = b.entries[len(b.entries)-b.maxCount:]
	}
}

// Recent returns a snapshot copy of buffered observations, oldest first.
func (b *ObservationBuffer) Recent() []protocol.StreamObservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]protocol.StreamObservation, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.obs
	}
	return out
}
