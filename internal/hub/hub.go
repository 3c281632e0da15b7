// Package hub parses raw tailed lines and fans the resulting events
// out to every live subscriber (websocket clients, the alert monitor,
// the stats collector).
package hub

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/parser"
)

const subscriberBuffer = 1024

// Hub receives raw lines, parses them, and broadcasts LogEvent values
// to all subscribers.
type Hub struct {
	parser      parser.Parser
	input       <-chan model.RawLine
	mu          sync.RWMutex
	subscribers []chan model.LogEvent
	dropped     int64
}

// New creates a Hub that reads from the input channel and parses with
// the given parser.
func New(input <-chan model.RawLine, p parser.Parser) *Hub {
	return &Hub{
		parser: p,
		input:  input,
	}
}

// Subscribe returns a buffered channel that will receive parsed
// events. Every subscriber gets a copy of every event.
func (h *Hub) Subscribe() <-chan model.LogEvent {
	ch := make(chan model.LogEvent, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Dropped returns the total number of events dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	return atomic.LoadInt64(&h.dropped)
}

// Start reads, parses and broadcasts until the context is cancelled or
// the input channel closes.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(h.parser.Parse(raw.Text, raw.Source))
		}
	}
}

// broadcast sends an event to all subscribers. A full subscriber
// channel drops the event for that subscriber only.
func (h *Hub) broadcast(event model.LogEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			n := atomic.AddInt64(&h.dropped, 1)
			log.Printf("hub: dropped event for slow consumer (total dropped: %d)", n)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
