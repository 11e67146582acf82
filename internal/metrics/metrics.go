// Package metrics is the plain atomic-counter side of  two
// parallel observability paths: best-effort OTel export (internal/observability)
// for tracing/metrics, and a simple JSON /stats + /healthz surface here for
// operators who just want counters over HTTP.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
)

// Counter is a named atomic counter.
type Counter struct {
	v int64
}

func (c *Counter) Add(n int64) { atomic.AddInt64(&c.v, n) }
func (c *Counter) Inc()        { c.Add(1) }
func (c *Counter) Load() int64 { return atomic.LoadInt64(&c.v) }

// MarshalJSON lets a struct of named Counter fields serialize directly as a
// JSON object of plain integers, for the /stats handlers.
func (c *Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Load())
}

// Registry is a process-local set of named counters, safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	counters map[string]*Counter
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter)}
}

// Counter returns the named counter, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[name]
	if !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

// Snapshot returns a copy of all counter values for JSON serialization.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counters))
	for k, c := range r.counters {
		out[k] = c.Load()
	}
	return out
}

// HealthzHandler always reports ok while the process is up, in the
// gateway/worker response shape.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// PerceiverHealthzHandler is the perceiver's differently-shaped healthz
// response.
func PerceiverHealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// StatsHandler serves the registry's counters as a JSON object.
func (r *Registry) StatsHandler(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(r.Snapshot())
}

// JSONHandler serves v (typically a per-service counters/config struct) as
// JSON, for services whose /stats document isn't a flat Registry snapshot.
func JSONHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}
