// Package service implements the application's use cases on top of the
// api wrappers: session transitions, optimistic social actions, profile
// edits and message polling.
package service

import (
	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/session"
)

// ErrSessionEnded stops a long-running watch whose session was cleared,
// usually by a 401 seen by one of its polls.
var ErrSessionEnded = errors.NewCLIError(errors.ErrorTypeSessionExpired, "Your session has ended", nil).
	WithSuggestion("Sign in again with: instaintelli auth login")

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  session.Store
	Nav    guard.Navigator
	Runner *optimistic.Runner
	Bus    *bus.Bus
}

// NewDeps wires a Runner bound to store and nav, and the default bus.
func NewDeps(store session.Store, nav guard.Navigator) Deps {
	return Deps{
		Store:  store,
		Nav:    nav,
		Runner: optimistic.NewRunner(store, nav),
		Bus:    bus.Default,
	}
}

func (d Deps) navigate(path string, replace bool) {
	if d.Nav != nil {
		d.Nav.Navigate(path, replace)
	}
}
