// Package session holds the signed-in user's tokens and cached profile.
//
// The Store is the single source of truth for "is a user logged in": a
// session is authenticated exactly when it carries an access token. All
// readers go through the Store, which is safe for concurrent use.
package session

import (
	"sort"
	"sync"
)

// UserSummary is a possibly stale snapshot of the signed-in user's profile.
type UserSummary struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	FollowersCount  int    `json:"followers_count,omitempty"`
	FollowingCount  int    `json:"following_count,omitempty"`
	PostsCount      int    `json:"posts_count,omitempty"`
	MFAEnabled      bool   `json:"mfa_enabled,omitempty"`
}

// Session is the client-held proof of authentication plus cached identity.
type Session struct {
	AccessToken  string      `json:"token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         UserSummary `json:"user"`
}

// Authenticated reports whether the session carries an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Listener is called after every change with the new session.
type Listener func(Session)

// Store is the injectable session accessor used by every component.
type Store interface {
	Set(accessToken, refreshToken string, user UserSummary) error
	Clear() error
	Token() string
	RefreshToken() string
	User() UserSummary
	UpdateUser(fn func(*UserSummary)) error
	IsAuthenticated() bool
	Snapshot() Session
	Subscribe(fn Listener) (unsubscribe func())
}

// state is the in-memory core shared by MemoryStore and FileStore.
// persist is called with the lock held and the new session.
type state struct {
	mu        sync.RWMutex
	current   Session
	listeners map[int]Listener
	nextID    int
	persist   func(Session) error
}

func (s *state) Set(accessToken, refreshToken string, user UserSummary) error {
	return s.write(Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

func (s *state) Clear() error {
	return s.write(Session{})
}

func (s *state) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

func (s *state) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

// User returns the cached profile, or the zero value when signed out.
func (s *state) User() UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User
}

// UpdateUser edits the cached profile. The user id is immutable for the
// lifetime of a session and is restored if fn changes it. It is a no-op
// when signed out.
func (s *state) UpdateUser(fn func(*UserSummary)) error {
	s.mu.Lock()
	if !s.current.Authenticated() {
		s.mu.Unlock()
		return nil
	}
	next := s.current
	id := next.User.UserID
	fn(&next.User)
	next.User.UserID = id
	listeners, err := s.writeLocked(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	notify(listeners, next)
	return nil
}

func (s *state) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated()
}

func (s *state) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *state) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *state) write(next Session) error {
	s.mu.Lock()
	listeners, err := s.writeLocked(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	notify(listeners, next)
	return nil
}

// writeLocked persists and installs next; caller holds mu. Listeners are
// returned so they can run after the lock is released.
func (s *state) writeLocked(next Session) ([]Listener, error) {
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return nil, err
		}
	}
	s.current = next
	return s.snapshotListeners(), nil
}

func notify(listeners []Listener, sess Session) {
	for _, fn := range listeners {
		fn(sess)
	}
}

// snapshotListeners returns listeners in subscription order; caller holds mu.
func (s *state) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

// MemoryStore keeps the session in memory only.
type MemoryStore struct {
	state
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}
