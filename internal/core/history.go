package core

import (
	"context"
	"sync"
	"time"
)

// RunRecord is one completed comparison, kept for the history view.
type RunRecord struct {
	ID          string    `json:"id"`
	File1       string    `json:"file1"`
	File2       string    `json:"file2"`
	Sheet       string    `json:"sheet"`
	Differences int       `json:"differences"`
	ClientIP    string    `json:"client_ip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryStore persists comparison runs.
type HistoryStore interface {
	Record(ctx context.Context, run RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}

// DefaultHistoryCapacity bounds MemoryHistory.
const DefaultHistoryCapacity = 200

// MemoryHistory keeps the most recent runs in process memory.
type MemoryHistory struct {
	mu       sync.Mutex
	runs     []RunRecord
	capacity int
}

// NewMemoryHistory keeps at most capacity runs, oldest dropped first.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &MemoryHistory{capacity: capacity}
}

// Record appends run, evicting the oldest entry when full.
func (h *MemoryHistory) Record(_ context.Context, run RunRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, run)
	if over := len(h.runs) - h.capacity; over > 0 {
		h.runs = append(h.runs[:0:0], h.runs[over:]...)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.runs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]RunRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, h.runs[i])
	}
	return out, nil
}
