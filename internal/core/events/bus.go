// Package events is the in-process channel for side effects of committed
// leave transitions: audit entries, in-app notifications and email.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/pkg/logger"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

type Handler func(ctx context.Context, event Event) error

// Publisher is what the leave workflow depends on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	inflight    sync.WaitGroup
	logger      *slog.Logger
}

func NewEventBus(lg *slog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]Handler),
		logger:      lg,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	n := len(eb.subscribers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("subscribed", "event_type", eventType, "subscribers", n)
}

func (eb *EventBus) subscribersOf(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.subscribers[eventType]
}

// Publish fans the event out to one goroutine per subscriber and returns at
// once. Subscribers keep the request's values (trace id) but not its
// cancellation, since they run after the response is written.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	subs := eb.subscribersOf(event.EventType())
	if len(subs) == 0 {
		return nil
	}

	detached := context.WithoutCancel(ctx)
	eb.logFor(detached).Info("publishing event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"subscribers", len(subs))

	eb.inflight.Add(len(subs))
	for _, h := range subs {
		go func(h Handler) {
			defer eb.inflight.Done()
			eb.deliver(detached, h, event)
		}(h)
	}
	return nil
}

// PublishSync runs subscribers in order on the caller's goroutine and stops at
// the first failure. Used by the CLI and tests.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range eb.subscribersOf(event.EventType()) {
		if err := h(ctx, event); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

func (eb *EventBus) deliver(ctx context.Context, h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logFor(ctx).Error("event subscriber panicked",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"panic", r)
		}
	}()
	if err := h(ctx, event); err != nil {
		eb.logFor(ctx).Error("event subscriber failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
}

func (eb *EventBus) logFor(ctx context.Context) *slog.Logger {
	if id := logger.TraceID(ctx); id != "" {
		return eb.logger.With("trace_id", id)
	}
	return eb.logger
}

// Drain waits for in-flight subscribers, or until ctx is done.
func (eb *EventBus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
