// Package guard decides whether a navigation target may be shown for the
// current session state. Decisions are pure functions of "does a session
// exist"; the guard never fetches anything.
package guard

import (
	"strings"
	"sync"
)

const (
	LoginPath         = "/login"
	FeedPath          = "/feed"
	OAuthCallbackPath = "/auth/callback"
)

// Policy is the admission rule attached to a route.
type Policy int

const (
	// Open routes render regardless of session state.
	Open Policy = iota
	// AuthOnly routes require a session.
	AuthOnly
	// PublicOnly routes (landing, login, register) are for signed-out users.
	PublicOnly
)

func (p Policy) String() string {
	switch p {
	case AuthOnly:
		return "auth-only"
	case PublicOnly:
		return "public-only"
	default:
		return "open"
	}
}

// ParsePolicy maps the annotation strings used on commands to a Policy.
func ParsePolicy(s string) Policy {
	switch s {
	case "auth-only":
		return AuthOnly
	case "public-only":
		return PublicOnly
	default:
		return Open
	}
}

// Decision is the outcome of a guard check. When Allow is false the
// caller navigates to RedirectTo, replacing history when Replace is set.
type Decision struct {
	Allow      bool
	RedirectTo string
	Replace    bool
}

// Decide applies a policy to the current authentication state.
func Decide(p Policy, authenticated bool) Decision {
	switch {
	case p == AuthOnly && !authenticated:
		return Decision{RedirectTo: LoginPath, Replace: true}
	case p == PublicOnly && authenticated:
		return Decision{RedirectTo: FeedPath, Replace: true}
	default:
		return Decision{Allow: true}
	}
}

// Navigator performs a navigation decided by the guard or the gateway.
type Navigator interface {
	Navigate(path string, replace bool)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, replace bool)

// Navigate calls f.
func (f NavigatorFunc) Navigate(path string, replace bool) {
	f(path, replace)
}

// Router maps paths to policies. A path registered with a trailing slash
// covers everything below it ("/profile/" matches "/profile/u1").
type Router struct {
	mu     sync.RWMutex
	routes map[string]Policy
}

// NewRouter returns an empty router; unknown paths are Open.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Policy)}
}

// Handle registers a policy for path.
func (r *Router) Handle(path string, p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = p
}

// Policy returns the policy for path: the exact entry, else the longest
// registered prefix ending in "/" (the root itself only matches exactly),
// else Open.
func (r *Router) Policy(path string) Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.routes[path]; ok {
		return p
	}
	best, policy := "", Open
	for prefix, p := range r.routes {
		if prefix != "/" && strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best, policy = prefix, p
		}
	}
	return policy
}

// Check decides a navigation to path.
func (r *Router) Check(path string, authenticated bool) Decision {
	return Decide(r.Policy(path), authenticated)
}

// DefaultRouter returns the application's route table.
func DefaultRouter() *Router {
	r := NewRouter()
	r.Handle("/", PublicOnly)
	r.Handle(LoginPath, PublicOnly)
	r.Handle("/register", PublicOnly)
	r.Handle(OAuthCallbackPath, Open)
	r.Handle(FeedPath, AuthOnly)
	r.Handle("/upload", AuthOnly)
	r.Handle("/profile", AuthOnly)
	r.Handle("/profile/", AuthOnly)
	r.Handle("/messages", AuthOnly)
	r.Handle("/messages/", AuthOnly)
	r.Handle("/search", AuthOnly)
	r.Handle("/chat", AuthOnly)
	r.Handle("/explore", AuthOnly)
	r.Handle("/analytics", AuthOnly)
	r.Handle("/settings/", AuthOnly)
	return r
}
