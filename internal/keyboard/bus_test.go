package keyboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(4)

	a, releaseA := bus.Subscribe()
	b, releaseB := bus.Subscribe()
	defer releaseA()
	defer releaseB()

	assert.Equal(t, 2, bus.Publish("v"))
	assert.Equal(t, "v", <-a)
	assert.Equal(t, "v", <-b)
}

func TestReleaseClosesAndUnsubscribes(t *testing.T) {
	bus := NewBus(1)

	ch, release := bus.Subscribe()
	assert.Equal(t, 1, bus.Subscribers())

	release()
	release()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Subscribers())
	assert.Equal(t, 0, bus.Publish("v"))
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	_, release := bus.Subscribe()
	defer release()

	assert.Equal(t, 1, bus.Publish("a"))
	assert.Equal(t, 0, bus.Publish("b"))
}

func TestConcurrentSubscribeRelease(t *testing.T) {
	bus := NewBus(8)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, release := bus.Subscribe()
			release()
		}()
		go func() {
			defer wg.Done()
			bus.Publish("v")
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.Subscribers())
}
