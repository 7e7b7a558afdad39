// Package keyboard fans key presses out to scoped listeners.
package keyboard

import (
	"sync"
)

// Bus delivers every published key to all current subscribers. Slow
// subscribers drop keys rather than block the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan string
	nextID uint64
	buffer int
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		subs:   make(map[uint64]chan string),
		buffer: buffer,
	}
}

// Subscribe registers a listener. The returned release func removes it and
// closes the channel; calling it more than once is safe.
func (b *Bus) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan string, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, release
}

// Publish returns the number of subscribers that received the key.
func (b *Bus) Publish(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- key:
			delivered++
		default:
		}
	}
	return delivered
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
