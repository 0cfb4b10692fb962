// Package poller runs a fetch on a fixed interval and hands the result to
// an apply func only when it differs from what was applied last, so the
// screen does not redraw for unchanged data.
package poller

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/instaintelli/cli/pkg/logger"
)

// DefaultInterval replaces a non-positive interval passed to New.
const DefaultInterval = 3 * time.Second

// Poller is a cancellable fixed-interval fetch loop tied to the lifetime
// of the view that owns it.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	apply    func(T)
	equal    func(a, b T) bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	last    T
	applied bool
}

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithEqual replaces the default reflect.DeepEqual comparison.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(p *Poller[T]) { p.equal = eq }
}

// WithName labels the poller in logs.
func WithName[T any](name string) Option[T] {
	return func(p *Poller[T]) { p.name = name }
}

// New builds a stopped poller.
func New[T any](interval time.Duration, fetch func(ctx context.Context) (T, error), apply func(T), opts ...Option[T]) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller[T]{
		name:     "poller",
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		equal:    func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start fetches immediately and then every interval until ctx is done or
// Stop is called. Starting a running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

// Stop ends the loop and waits for an in-progress tick to finish. It is
// safe to call on a stopped poller.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller[T]) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.release(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// release forgets a loop that ended on its own (parent ctx done) so the
// poller can be started again. Stop has already cleared its own loop.
func (p *Poller[T]) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return
	}
	p.cancel()
	p.cancel, p.done = nil, nil
}

func (p *Poller[T]) tick(ctx context.Context) {
	v, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Debug("Poll failed", "poller", p.name, "error", err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	if p.applied && p.equal(p.last, v) {
		return
	}
	p.last = v
	p.applied = true
	p.apply(v)
}
