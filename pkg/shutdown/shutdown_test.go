package shutdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastClosesSubscriberChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, done := b.Subscribe()
	defer done()

	b.Broadcast()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was never closed")
	}
}

func TestAwaitBlocksUntilSubscribersDone(t *testing.T) {
	b := NewBroadcaster()
	_, done := b.Subscribe()

	awaited := make(chan struct{})
	go func() {
		b.Await()
		close(awaited)
	}()

	select {
	case <-awaited:
		t.Fatal("Await returned before subscriber called done")
	case <-time.After(50 * time.Millisecond):
	}

	done()

	select {
	case <-awaited:
	case <-time.After(time.Second):
		t.Fatal("Await did not return after subscriber called done")
	}
}

func TestSubscribeAfterBroadcastClosesImmediately(t *testing.T) {
	b := NewBroadcaster()
	b.Broadcast()

	ch, done := b.Subscribe()
	defer done()

	_, open := <-ch
	assert.False(t, open)
}
