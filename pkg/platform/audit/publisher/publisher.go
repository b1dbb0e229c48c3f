// Package publisher emits audit events to a store, optionally through an
// async buffer so hot request paths never block on audit persistence.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "bisaathi/pkg/domain"
	audit "bisaathi/pkg/platform/audit"
)

// ErrBufferFull is returned when the async buffer cannot accept more events.
// Dropping an operational audit event is preferable to stalling a request.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher persists audit events. In sync mode Emit writes directly to the
// store; with an async buffer events are queued and drained by a background
// goroutine, and Close drains whatever is still queued.
type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger

	buffer chan audit.Event
	done   chan struct{}
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered asynchronous emission.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// WithSink forwards a copy of every event to an external sink, best effort.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		go p.drain()
	}
	return p
}

// Emit publishes an event, stamping the timestamp if unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		return p.write(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns the audited actions for one user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the drain goroutine after flushing buffered events.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.buffer {
		if err := p.write(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("audit event dropped", "action", event.Action, "error", err)
		}
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn("audit sink publish failed", "action", event.Action, "error", err)
		}
	}
	return p.store.Append(ctx, event)
}
