package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSlotEmpty is returned by [Slot.Read] when no snapshot is stored.
var ErrSlotEmpty = errors.New("session slot empty")

// Slot is the single logical key-value location holding one client
// context's serialized snapshot. Read/write/delete only; no query
// capability is required of implementations.
//
// Concurrent writers race with last-write-wins semantics. There is no
// cross-context locking; that mirrors how multiple tabs sharing one
// storage location behave.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// MemorySlot is an in-process Slot suitable for tests and single-
// process deployments.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read returns the stored bytes or [ErrSlotEmpty].
func (s *MemorySlot) Read(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Write stores data, overwriting unconditionally. The TTL is ignored:
// expiry for memory slots is enforced lazily by the store on read.
func (s *MemorySlot) Write(_ context.Context, data []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

// Delete empties the slot. Deleting an empty slot is a no-op.
func (s *MemorySlot) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil
	return nil
}
