package optimistic

import (
	"context"
	"sync"
)

// Toggle is a boolean with an attached counter, e.g. (is_following,
// followers_count) or (liked, like_count).
type Toggle struct {
	On    bool
	Count int
}

// Flipped returns the toggle with On inverted and Count moved by one.
// Count never drops below zero.
func (t Toggle) Flipped() Toggle {
	if t.On {
		count := t.Count - 1
		if count < 0 {
			count = 0
		}
		return Toggle{On: false, Count: count}
	}
	return Toggle{On: true, Count: t.Count + 1}
}

// State is a Toggle shared between goroutines.
type State struct {
	mu sync.Mutex
	v  Toggle
}

// NewState seeds a State.
func NewState(t Toggle) *State {
	return &State{v: t}
}

// Get returns the current value.
func (s *State) Get() Toggle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Set replaces the current value; used when authoritative data arrives.
func (s *State) Set(t Toggle) {
	s.mu.Lock()
	s.v = t
	s.mu.Unlock()
}

// Toggle flips s optimistically and commits the new desired value. commit
// receives true when turning on (follow, like) and false when turning
// off. On failure s returns to exactly its pre-mutation value.
func (r *Runner) Toggle(ctx context.Context, key Key, s *State, commit func(ctx context.Context, on bool) error, onSuccess func(Toggle)) error {
	var before, after Toggle
	return r.Run(ctx, key, Mutation{
		Apply: func() {
			s.mu.Lock()
			before = s.v
			after = before.Flipped()
			s.v = after
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error {
			return commit(ctx, after.On)
		},
		Revert: func() {
			s.Set(before)
		},
		OnSuccess: func() {
			if onSuccess != nil {
				onSuccess(s.Get())
			}
		},
	})
}
