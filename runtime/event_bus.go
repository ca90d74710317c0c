package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/billforge/panel/plugin"
)

// eventBus implements plugin.EventBus with a buffered channel and
// backpressure. Delivery counts are tracked per topic so the host can
// report which lifecycle topics actually see traffic.
type eventBus struct {
	subscribers map[string][]subscriberEntry
	delivered   map[string]uint64
	mu          sync.RWMutex
	ch          chan eventEnvelope
	wg          sync.WaitGroup
	closed      atomic.Bool
	logger      *zap.Logger
	nextID      atomic.Uint64
	done        chan struct{} // signals the pump goroutine to stop
}

type eventEnvelope struct {
	ctx   context.Context
	event plugin.Event
}

type subscriberEntry struct {
	id      uint64
	handler plugin.EventHandler
}

// subscription implements plugin.Subscription.
type subscription struct {
	bus   *eventBus
	topic string
	id    uint64
}

func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	subs := s.bus.subscribers[s.topic]
	for i, entry := range subs {
		if entry.id == s.id {
			s.bus.subscribers[s.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// NewEventBus creates a new EventBus with the given buffer size.
func NewEventBus(bufferSize int, logger *zap.Logger) *eventBus {
	bus := &eventBus{
		subscribers: make(map[string][]subscriberEntry),
		delivered:   make(map[string]uint64),
		ch:          make(chan eventEnvelope, bufferSize),
		logger:      logger,
		done:        make(chan struct{}),
	}

	go bus.pump()
	return bus
}

// pump moves envelopes from the buffer to subscribers until closed, then
// drains whatever is left.
func (b *eventBus) pump() {
	for {
		select {
		case env, ok := <-b.ch:
			if !ok {
				return
			}
			b.fanOut(env)
		case <-b.done:
			for {
				select {
				case env, ok := <-b.ch:
					if !ok {
						return
					}
					b.fanOut(env)
				default:
					return
				}
			}
		}
	}
}

func (b *eventBus) fanOut(env eventEnvelope) {
	b.mu.Lock()
	subs := append([]subscriberEntry{}, b.subscribers[env.event.Name]...)
	b.delivered[env.event.Name] += uint64(len(subs))
	b.mu.Unlock()

	for _, entry := range subs {
		b.wg.Add(1)
		go func(h plugin.EventHandler) {
			defer b.wg.Done()
			if err := h(env.ctx, env.event); err != nil {
				b.logger.Warn("event handler error",
					zap.String("event", env.event.Name),
					zap.String("source", env.event.Source),
					zap.Error(err))
			}
		}(entry.handler)
	}
}

// Publish sends an event. Blocks until buffer has space or ctx expires.
func (b *eventBus) Publish(ctx context.Context, event plugin.Event) error {
	if b.closed.Load() {
		return plugin.ErrBusClosed
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	env := eventEnvelope{ctx: ctx, event: event}

	select {
	case b.ch <- env:
		return nil
	default:
		// Buffer full -- block with backpressure
		select {
		case b.ch <- env:
			return nil
		case <-ctx.Done():
			return plugin.ErrPublishTimeout
		}
	}
}

// Subscribe registers a handler for a topic.
func (b *eventBus) Subscribe(topic string, handler plugin.EventHandler) plugin.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID.Add(1)
	b.subscribers[topic] = append(b.subscribers[topic], subscriberEntry{
		id:      id,
		handler: handler,
	})

	return &subscription{bus: b, topic: topic, id: id}
}

// Delivered returns how many handler deliveries each topic has seen.
func (b *eventBus) Delivered() map[string]uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]uint64, len(b.delivered))
	for topic, n := range b.delivered {
		out[topic] = n
	}
	return out
}

// Close stops accepting new events, drains pending, and waits for in-flight handlers.
func (b *eventBus) Close() error {
	if b.closed.Swap(true) {
		return nil // already closed
	}

	close(b.done) // drain and stop the pump
	b.wg.Wait()   // wait for in-flight handlers
	return nil
}
