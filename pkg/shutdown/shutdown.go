// Package shutdown implements the daemon's two-phase teardown: broadcast a
// notification to every subscriber (in auraed, every running executable),
// wait for subscribers to drop off, then let the caller run
// free_all/stop_all on the cell registry.
package shutdown

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Broadcaster lets long-lived tasks subscribe to a single shutdown
// notification and lets the caller wait for every subscriber to
// acknowledge before tearing down cell state.
type Broadcaster struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	subs   map[chan struct{}]struct{}
	closed bool
}

// NewBroadcaster returns a Broadcaster ready to accept subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a subscriber's interest in the shutdown signal.
// The returned channel is closed exactly once, when Broadcast runs. done
// must be called once the subscriber has torn itself down, so Await can
// observe every subscriber having dropped off.
func (b *Broadcaster) Subscribe() (ch <-chan struct{}, done func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := make(chan struct{})
	if b.closed {
		close(c)
		return c, func() {}
	}

	b.subs[c] = struct{}{}
	b.wg.Add(1)

	var once sync.Once
	return c, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, c)
			b.mu.Unlock()
			b.wg.Done()
		})
	}
}

// Broadcast closes every subscriber's channel. It does not itself wait
// for them to unsubscribe; call Await for that.
func (b *Broadcaster) Broadcast() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.mu.Unlock()

	logrus.Infof("shutdown: broadcasting to %d subscriber(s)", len(subs))
	for c := range subs {
		close(c)
	}
}

// Await blocks until every subscriber present at the time Broadcast was
// called has called its done func.
func (b *Broadcaster) Await() {
	b.wg.Wait()
}
