package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/session"
	"github.com/stretchr/testify/require"
)

// fixture is a fake backend plus the collaborators every service needs.
type fixture struct {
	t     *testing.T
	store *session.MemoryStore
	nav   *recordedNav
	bus   *bus.Bus
	deps  Deps

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	bodies map[string]map[string]interface{}
}

type recordedNav struct {
	mu    sync.Mutex
	paths []string
	repl  []bool
}

func (n *recordedNav) Navigate(path string, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	n.repl = append(n.repl, replace)
}

func (n *recordedNav) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		store:  session.NewMemoryStore(),
		nav:    &recordedNav{},
		bus:    bus.New(),
		routes: map[string]http.HandlerFunc{},
		calls:  map[string]int{},
		bodies: map[string]map[string]interface{}{},
	}
	f.deps = Deps{
		Store:  f.store,
		Nav:    f.nav,
		Runner: optimistic.NewRunner(f.store, f.nav),
		Bus:    f.bus,
	}

	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	prev := client.GetClient()
	client.SetClient(client.New(f.store, client.Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Navigator: f.nav}))
	t.Cleanup(func() { client.SetClient(prev) })
	return f
}

func (f *fixture) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls[key]++
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if json.Unmarshal(raw, &body) == nil {
			f.bodies[key] = body
		}
	}
	h, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
		return
	}
	h(w, r)
}

func (f *fixture) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fixture) json(route string, status int, body string) {
	f.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (f *fixture) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fixture) body(route string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

// signIn writes a session for a generated user and returns it.
func (f *fixture) signIn() session.UserSummary {
	f.t.Helper()
	u := session.UserSummary{
		UserID:   gofakeit.UUID(),
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		FullName: gofakeit.Name(),
		Bio:      gofakeit.HipsterSentence(),
	}
	require.NoError(f.t, f.store.Set("tok-"+gofakeit.Word(), "", u))
	return u
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
