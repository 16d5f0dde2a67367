package session

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SlotFactory resolves the storage slot for one client context.
// Calls with the same contextID must address the same logical
// location; distinct contextIDs must never collide. The empty
// contextID is valid and names the default slot.
type SlotFactory func(contextID string) Slot

// FixedSlotFactory routes every client context to the single given
// slot. Only suitable when the process serves one client context,
// such as a desktop tool or a test.
func FixedSlotFactory(slot Slot) SlotFactory {
	return func(string) Slot {
		return slot
	}
}

// NewMemorySlotFactory returns a factory backed by an in-process map
// of [MemorySlot] values, one per client context.
func NewMemorySlotFactory() SlotFactory {
	var mu sync.Mutex
	slots := make(map[string]*MemorySlot)

	return func(contextID string) Slot {
		mu.Lock()
		defer mu.Unlock()

		slot, ok := slots[contextID]
		if !ok {
			slot = NewMemorySlot()
			slots[contextID] = slot
		}
		return slot
	}
}

// NewRedisSlotFactory returns a factory producing [RedisSlot] values
// keyed per client context under the given prefix. The empty
// contextID maps to a stable default key rather than a random one so
// repeated calls keep addressing the same slot.
func NewRedisSlotFactory(client redis.UniversalClient, prefix string, opts ...RedisSlotOption) SlotFactory {
	return func(contextID string) Slot {
		if contextID == "" {
			contextID = "default"
		}
		return NewRedisSlot(client, prefix, contextID, opts...)
	}
}
