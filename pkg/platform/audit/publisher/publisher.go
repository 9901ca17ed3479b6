// Package publisher fans audit events out to a sink, optionally through an
// async buffer so emitting never blocks a request path.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "healthstack/pkg/platform/audit"
)

// Store is the sink the publisher writes to.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByIdentity(ctx context.Context, identity string) ([]audit.Event, error)
}

// Publisher emits audit events. In sync mode Emit appends directly; with an
// async buffer events are drained by a background worker and dropped (with a
// log line) when the buffer is full rather than blocking the caller.
type Publisher struct {
	store  Store
	logger *slog.Logger

	buffer  chan audit.Event
	done    chan struct{}
	drained sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// Option configures the publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher writing to store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.drained.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event. The timestamp is set when absent; the category is
// always derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
		return nil
	}
}

// List returns events recorded for one identity.
func (p *Publisher) List(ctx context.Context, identity string) ([]audit.Event, error) {
	return p.store.ListByIdentity(ctx, identity)
}

// Close drains any buffered events and stops the worker. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
	if p.buffer != nil {
		p.drained.Wait()
	}
}

func (p *Publisher) drain() {
	defer p.drained.Done()
	for {
		select {
		case event := <-p.buffer:
			p.append(event)
		case <-p.done:
			for {
				select {
				case event := <-p.buffer:
					p.append(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) append(event audit.Event) {
	if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
		p.logger.Error("audit append failed", "action", event.Action, "error", err.Error())
	}
}
