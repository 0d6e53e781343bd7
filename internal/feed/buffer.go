package feed

import (
	"sync"

	"github.com/Alias1177/AviatorPredictor/models"
)

// Buffer keeps the most recent outcomes in ascending timestamp order.
// It is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	items    []models.Outcome
	seen     map[string]struct{}
}

// NewBuffer creates a buffer holding at most capacity outcomes
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		items:    make([]models.Outcome, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

// Push appends outcomes that are newer than the current tail and not yet
// seen. It returns the outcomes actually added.
func (b *Buffer) Push(outcomes ...models.Outcome) []models.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	var added []models.Outcome
	for _, o := range outcomes {
		if _, dup := b.seen[o.ID]; dup && o.ID != "" {
			continue
		}
		if n := len(b.items); n > 0 && o.Timestamp < b.items[n-1].Timestamp {
			continue
		}

		b.items = append(b.items, o)
		if o.ID != "" {
			b.seen[o.ID] = struct{}{}
		}
		added = append(added, o)
	}

	if over := len(b.items) - b.capacity; over > 0 {
		for _, old := range b.items[:over] {
			delete(b.seen, old.ID)
		}
		b.items = append(b.items[:0], b.items[over:]...)
	}

	return added
}

// Snapshot returns a copy of the buffered outcomes, oldest first
func (b *Buffer) Snapshot() []models.Outcome {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Outcome, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of buffered outcomes
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}
