package engine

import (
	"sync"
	"time"

	"clipsync/go-backend/pkg/models"
)

const defaultHistoryLimit = 1000

// History is a capped ring of sync events for the UI. It holds metadata
// only; clipboard plaintext is never stored here.
type History struct {
	mu     sync.Mutex
	limit  int
	events []models.SyncEvent
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Add(event models.SyncEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	if len(h.events) > h.limit {
		h.events = append([]models.SyncEvent(nil), h.events[len(h.events)-h.limit:]...)
	}
}

// Recent returns up to limit events, newest first.
func (h *History) Recent(limit int) []models.SyncEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.events) {
		limit = len(h.events)
	}
	out := make([]models.SyncEvent, 0, limit)
	for i := len(h.events) - 1; i >= len(h.events)-limit; i-- {
		out = append(out, h.events[i])
	}
	return out
}
