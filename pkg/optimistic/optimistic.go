// Package optimistic applies a local state change before the backend
// confirms it and undoes the change when the backend refuses.
//
// A Runner allows at most one mutation per Key at a time; a second
// request for the same key is rejected without touching the network.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/logger"
)

var (
	// ErrInFlight is returned when the same mutation is already running.
	ErrInFlight = errors.New("mutation already in flight")
	// ErrNotAuthenticated is returned when no session exists.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Key identifies a mutation slot: one entity and one action kind. Both
// directions of a toggle share a key ("follow" covers unfollow too).
type Key struct {
	Entity string
	Action string
}

func (k Key) String() string {
	return k.Action + ":" + k.Entity
}

// Mutation describes one optimistic change.
//
// Apply runs before the network call, Commit performs it, Revert undoes
// Apply when Commit fails and OnSuccess runs after a successful Commit.
// Only Commit is required.
type Mutation struct {
	Apply     func()
	Commit    func(ctx context.Context) error
	Revert    func()
	OnSuccess func()
}

// Authenticator reports whether a session exists. session.Store satisfies it.
type Authenticator interface {
	IsAuthenticated() bool
}

// Runner executes mutations and tracks which keys are in flight.
type Runner struct {
	auth Authenticator
	nav  guard.Navigator

	mu       sync.Mutex
	inFlight map[Key]struct{}
}

// NewRunner returns a Runner. auth and nav may be nil; with a nil
// Authenticator every call is treated as authenticated.
func NewRunner(auth Authenticator, nav guard.Navigator) *Runner {
	return &Runner{
		auth:     auth,
		nav:      nav,
		inFlight: make(map[Key]struct{}),
	}
}

// RevertedError wraps the backend error of a rolled back mutation.
type RevertedError struct {
	Key Key
	Err error
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("%s reverted: %v", e.Key, e.Err)
}

func (e *RevertedError) Unwrap() error {
	return e.Err
}

// Run executes m under key.
func (r *Runner) Run(ctx context.Context, key Key, m Mutation) error {
	if r.auth != nil && !r.auth.IsAuthenticated() {
		if r.nav != nil {
			r.nav.Navigate(guard.LoginPath, false)
		}
		return ErrNotAuthenticated
	}
	if !r.acquire(key) {
		logger.Debug("Mutation rejected, already in flight", "key", key.String())
		return ErrInFlight
	}
	defer r.release(key)

	if m.Apply != nil {
		m.Apply()
	}

	if err := m.Commit(ctx); err != nil {
		if m.Revert != nil {
			m.Revert()
		}
		logger.Warn("Mutation failed, reverted", "key", key.String(), "error", err)
		return &RevertedError{Key: key, Err: err}
	}

	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	return nil
}

// InFlight reports whether key is currently running.
func (r *Runner) InFlight(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[key]
	return ok
}

func (r *Runner) acquire(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[key]; busy {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

func (r *Runner) release(key Key) {
	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
}
