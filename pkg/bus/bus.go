// Package bus is a typed, in-process publish/subscribe channel that lets
// independent views agree on shared state (follow edges, likes, profile
// edits) without a shared store.
//
// Delivery is synchronous and best effort: a subscriber registered after
// a publish never sees it, and there is no ordering across topics.
package bus

import (
	"sort"
	"sync"

	"github.com/instaintelli/cli/pkg/session"
)

// Event carries the new state of one subject (a user id or post id).
type Event[T any] struct {
	SubjectID string
	NewState  T
}

// Topic is a named channel carrying events of a single payload type.
type Topic[T any] struct {
	name string

	mu     sync.RWMutex
	subs   map[uint64]func(Event[T])
	nextID uint64
}

// NewTopic creates an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name, subs: make(map[uint64]func(Event[T]))}
}

// Name returns the topic name, e.g. "follow-updated".
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(Event[T])) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Publish delivers the event to every current subscriber in subscription
// order. Subscribers may unsubscribe from inside their callback.
func (t *Topic[T]) Publish(subjectID string, state T) {
	ev := Event[T]{SubjectID: subjectID, NewState: state}
	for _, fn := range t.snapshot() {
		fn(ev)
	}
}

// Subscribers returns the current subscriber count.
func (t *Topic[T]) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) snapshot() []func(Event[T]) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uint64, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(Event[T]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.subs[id])
	}
	return fns
}

// FollowState is the viewer's follow edge toward a user plus that user's
// follower count.
type FollowState struct {
	IsFollowing    bool
	FollowersCount int
}

// LikeState is the viewer's like on a post plus the post's like count.
type LikeState struct {
	Liked     bool
	LikeCount int
}

// Bus groups the application's topics.
type Bus struct {
	FollowUpdated  *Topic[FollowState]
	ProfileUpdated *Topic[session.UserSummary]
	LikeUpdated    *Topic[LikeState]
}

// New returns a bus with fresh topics.
func New() *Bus {
	return &Bus{
		FollowUpdated:  NewTopic[FollowState]("follow-updated"),
		ProfileUpdated: NewTopic[session.UserSummary]("profile-updated"),
		LikeUpdated:    NewTopic[LikeState]("like-updated"),
	}
}

// Default is the process-wide bus.
var Default = New()
