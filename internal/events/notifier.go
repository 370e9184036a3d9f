package events

import (
	"log"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the subscriber channel buffer used when a caller
// passes a non-positive size.
const DefaultBufferSize = 256

// Notifier broadcasts task events to subscribers keyed by execution ID.
// Publish is non-blocking: a full subscriber channel drops the event for
// that subscriber rather than stalling the mutation that emitted it.
type Notifier struct {
	mu           sync.RWMutex
	subs         map[string][]chan TaskEvent
	allSubs      []chan TaskEvent
	closed       bool
	droppedCount atomic.Uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string][]chan TaskEvent),
	}
}

// Subscribe creates a subscription to events for one execution.
// bufSize determines the channel buffer size (DefaultBufferSize if <= 0).
func (n *Notifier) Subscribe(executionID string, bufSize int) <-chan TaskEvent {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ch := make(chan TaskEvent, bufSize)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		close(ch)
		return ch
	}

	n.subs[executionID] = append(n.subs[executionID], ch)
	return ch
}

// SubscribeAll creates a subscription to events for every execution.
func (n *Notifier) SubscribeAll(bufSize int) <-chan TaskEvent {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ch := make(chan TaskEvent, bufSize)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		close(ch)
		return ch
	}

	n.allSubs = append(n.allSubs, ch)
	return ch
}

// Publish delivers an event to every subscriber of its execution and to
// all-execution subscribers. Never blocks, never returns an error.
func (n *Notifier) Publish(event TaskEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}

	for _, ch := range n.subs[event.ExecutionID] {
		n.send(ch, event)
	}
	for _, ch := range n.allSubs {
		n.send(ch, event)
	}
}

func (n *Notifier) send(ch chan TaskEvent, event TaskEvent) {
	select {
	case ch <- event:
	default:
		count := n.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[events] WARNING: subscriber channel full, dropped event (total dropped: %d): type=%s task=%s", count, event.Type, event.TaskID)
		}
	}
}

// DroppedCount returns the total number of events dropped so far.
func (n *Notifier) DroppedCount() uint64 {
	return n.droppedCount.Load()
}

// Close closes all subscriber channels. Safe to call multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true

	for _, channels := range n.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range n.allSubs {
		close(ch)
	}
}
