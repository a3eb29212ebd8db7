package engine

import (
	"sync"

	"github.com/dagflow-sched/dagflow/contracts"
)

// History is the append-only record of engine runs. Reads return copies so
// callers can never observe a record mid-mutation.
type History struct {
	mu      sync.RWMutex
	records []contracts.ExecutionRecord
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

func (h *History) append(record contracts.ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
}

// Records returns a copy of all records in append order.
func (h *History) Records() []contracts.ExecutionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]contracts.ExecutionRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Last returns the most recent record, if any.
func (h *History) Last() (contracts.ExecutionRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return contracts.ExecutionRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// Len returns the number of recorded runs.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
