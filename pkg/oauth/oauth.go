// Package oauth runs the Google sign-in handoff for a terminal client: a
// loopback listener stands in for the SPA's /auth/callback route.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/logger"
	"golang.org/x/oauth2"
)

var (
	// ErrStateMismatch means the callback did not come from our request.
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrDenied means the provider reported an error instead of a code.
	ErrDenied = errors.New("oauth sign-in was not completed")
)

type result struct {
	code string
	err  error
}

// Receiver is a one-shot loopback HTTP server that waits for the
// provider redirect.
type Receiver struct {
	listener net.Listener
	server   *http.Server
	state    string
	results  chan result
}

// Listen binds 127.0.0.1:port. Port 0 picks a free port.
func Listen(port int) (*Receiver, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}

	r := &Receiver{
		listener: ln,
		state:    oauth2.GenerateVerifier(),
		results:  make(chan result, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(guard.OAuthCallbackPath, r.handle)
	r.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Debug("OAuth callback server stopped", "error", err)
		}
	}()
	return r, nil
}

// State is the anti-forgery value carried through the redirect.
func (r *Receiver) State() string {
	return r.state
}

// RedirectURL is where the provider should send the browser. It carries
// the state so the callback can be matched to this request.
func (r *Receiver) RedirectURL() string {
	u := url.URL{
		Scheme:   "http",
		Host:     r.listener.Addr().String(),
		Path:     guard.OAuthCallbackPath,
		RawQuery: url.Values{"state": {r.state}}.Encode(),
	}
	return u.String()
}

func (r *Receiver) handle(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	var res result
	switch {
	case q.Get("state") != r.state:
		res.err = ErrStateMismatch
	case q.Get("error") != "":
		res.err = fmt.Errorf("%w: %s", ErrDenied, q.Get("error"))
	case q.Get("code") == "":
		res.err = fmt.Errorf("%w: no code in callback", ErrDenied)
	default:
		res.code = q.Get("code")
	}

	if res.err != nil {
		http.Error(w, res.err.Error(), http.StatusBadRequest)
	} else {
		_, _ = fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
	}

	select {
	case r.results <- res:
	default:
	}
}

// Wait blocks until the callback arrives or ctx ends.
func (r *Receiver) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-r.results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the listener down.
func (r *Receiver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}

// Flow drives a complete sign-in.
type Flow struct {
	Port int
	// Prompt shows the consent URL to the user.
	Prompt func(authURL string)
}

// Run fetches the consent URL, waits for the redirect and exchanges the
// code for a session.
func (f *Flow) Run(ctx context.Context) (*api.AuthResponse, error) {
	recv, err := Listen(f.Port)
	if err != nil {
		return nil, err
	}
	defer recv.Close()

	redirect := recv.RedirectURL()
	authURL, err := api.GetGoogleOAuthURL(ctx, redirect)
	if err != nil {
		return nil, err
	}
	if f.Prompt != nil {
		f.Prompt(authURL)
	}

	code, err := recv.Wait(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("OAuth callback received")
	return api.CompleteGoogleOAuth(ctx, code, redirect)
}
