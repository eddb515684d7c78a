package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestHub_PublishReachesOwnerOnly(t *testing.T) {
	h := NewHub()
	mine, cancelMine := h.Subscribe(1)
	defer cancelMine()
	theirs, cancelTheirs := h.Subscribe(2)
	defer cancelTheirs()

	h.Publish(1)

	assert.True(t, received(mine))
	assert.False(t, received(theirs))
}

func TestHub_SignalsCoalesce(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Publish(1)
	}

	assert.True(t, received(ch))
	assert.False(t, received(ch), "pending signals collapse into one")
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1)
	_, cancel2 := h.Subscribe(1)
	assert.Equal(t, 2, h.Subscribers(1))

	cancel()
	cancel()
	assert.Equal(t, 1, h.Subscribers(1))

	cancel2()
	assert.Equal(t, 0, h.Subscribers(1))
	h.Publish(1)
}

func TestHub_ConcurrentUse(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancel := h.Subscribe(1)
			cancel()
		}()
		go func() {
			defer wg.Done()
			h.Publish(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers(1))
}
