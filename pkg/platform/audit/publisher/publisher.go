// Package publisher delivers audit events to a store either synchronously or
// through a buffered channel drained by a background goroutine.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "lifeline/pkg/domain"
	audit "lifeline/pkg/platform/audit"
)

// Publisher emits audit events. In sync mode Emit writes straight through to
// the store; with an async buffer Emit enqueues and a worker goroutine
// persists in the background, draining on Close.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox  chan audit.Event
	wg     sync.WaitGroup
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given
// channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.inbox != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.inbox {
		// Audit persistence failures must not take down the emitting
		// operation; log and continue.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("audit event dropped",
				"action", event.Action,
				"error", err,
			)
		}
		cancel()
	}
}

// Emit records one audit event, stamping the time when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns events recorded for one user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains any buffered events and stops the background worker. Safe to
// call more than once.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}
