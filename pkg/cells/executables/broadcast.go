package executables

import "sync"

// Hub fans a single executable's stdout/stderr lines out to any number of
// subscribers, keyed by channel name ("<name>::stdout" / "<name>::stderr").
// It mirrors the way RPC stream consumers attach to a running executable's
// output without coupling the line pumps to any particular subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[string][]chan string
}

// NewHub returns an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan string)}
}

// Subscribe registers a new listener on channel and returns it. The
// returned channel is buffered so a slow subscriber cannot stall the
// line pump; Publish drops lines for subscribers whose buffer is full.
func (h *Hub) Subscribe(channel string) <-chan string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan string, 64)
	h.subs[channel] = append(h.subs[channel], ch)
	return ch
}

// Publish fans line out to every current subscriber of channel.
func (h *Hub) Publish(channel, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[channel] {
		select {
		case ch <- line:
		default:
		}
	}
}

// Close closes and drops every subscriber of channel. Called once the
// owning executable's pump for that stream has exited.
func (h *Hub) Close(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[channel] {
		close(ch)
	}
	delete(h.subs, channel)
}
