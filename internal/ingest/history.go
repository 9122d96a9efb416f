package ingest

import "sync"

const defaultHistorySize = 20

// History is a concurrency-safe, bounded list of run results, oldest first.
type History struct {
	mu sync.RWMutex

	results []Result
	max     int
}

// NewHistory creates a History keeping at most max results.
// If max is <= 0, a default of 20 is used.
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &History{max: max}
}

// Add appends a result and enforces retention by count.
func (h *History) Add(r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, r)
	if len(h.results) > h.max {
		over := len(h.results) - h.max
		h.results = h.results[over:]
	}
}

// Recent returns a copy of the retained results, oldest first.
func (h *History) Recent() []Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Result, len(h.results))
	copy(out, h.results)
	return out
}

// Last returns the most recent result.
func (h *History) Last() (Result, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return Result{}, false
	}
	return h.results[len(h.results)-1], true
}
