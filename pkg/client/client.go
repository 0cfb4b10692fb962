package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/config"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/session"
	"golang.org/x/time/rate"
)

const (
	// UserAgent identifies the client to the backend.
	UserAgent = "InstaIntelli-CLI/0.1.0"

	// ProfileUpdatePath answers 401 for rejected profile edits; those
	// are validation failures, not a dead session.
	ProfileUpdatePath = "/api/v1/profile/me"

	headerRequestID = "X-Request-ID"
)

// Options configures a Gateway.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	UserAgent string
	Navigator guard.Navigator
}

// Gateway is the single chokepoint for calls to the backend. It attaches
// the bearer token from the session store on every request and reacts to
// authentication failures uniformly. It never retries.
type Gateway struct {
	http    *resty.Client
	store   session.Store
	nav     guard.Navigator
	limiter *rate.Limiter
	timeout time.Duration
}

// New builds a Gateway reading tokens from store.
func New(store session.Store, opts Options) *Gateway {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	g := &Gateway{
		http:    resty.New(),
		store:   store,
		nav:     opts.Navigator,
		timeout: opts.Timeout,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	g.http.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	if opts.Timeout > 0 {
		g.http.SetTimeout(opts.Timeout)
	}
	g.http.SetHeader("User-Agent", opts.UserAgent)
	g.http.SetHeader("Accept", "application/json")
	g.http.JSONMarshal = json.Marshal
	g.http.JSONUnmarshal = json.Unmarshal

	g.http.OnBeforeRequest(g.beforeRequest)
	g.http.OnAfterResponse(g.afterResponse)
	return g
}

// FromConfig builds a Gateway from the loaded configuration.
func FromConfig(store session.Store, nav guard.Navigator) *Gateway {
	return New(store, Options{
		BaseURL:   config.GetString("api.base_url"),
		Timeout:   time.Duration(config.GetInt("api.timeout")) * time.Second,
		RateLimit: config.GetFloat64("api.rate_limit"),
		Navigator: nav,
	})
}

// R starts a request bound to ctx.
func (g *Gateway) R(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return g.http.R().SetContext(ctx)
}

// Store returns the session store the gateway reads tokens from.
func (g *Gateway) Store() session.Store {
	return g.store
}

// Resty exposes the underlying client, mainly for tests.
func (g *Gateway) Resty() *resty.Client {
	return g.http
}

func (g *Gateway) beforeRequest(_ *resty.Client, req *resty.Request) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	if token := g.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}

	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}

	logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", req.Header.Get(headerRequestID))
	return nil
}

func (g *Gateway) afterResponse(_ *resty.Client, resp *resty.Response) error {
	logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL)

	if resp.StatusCode() != http.StatusUnauthorized || isProfileUpdate(resp.Request) {
		return nil
	}
	// A 401 on an anonymous call (bad password at login) is not a session failure
	if resp.Request.Header.Get("Authorization") == "" {
		return nil
	}

	logger.Warn("Session rejected by backend, signing out", "url", resp.Request.URL)
	if err := g.store.Clear(); err != nil {
		logger.Error("Failed to clear session", "error", err)
	}
	if g.nav != nil {
		g.nav.Navigate(guard.LoginPath, true)
	}
	return nil
}

// Check turns a resty result into an error: transport failures become
// *TransportError and non-2xx responses become *APIError.
func (g *Gateway) Check(resp *resty.Response, err error) error {
	if err != nil {
		return g.transportError(err)
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}

func (g *Gateway) transportError(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &TransportError{Message: timeoutMessage(g.timeout), Timeout: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Message: NetworkErrorMessage, Err: err}
}

func isProfileUpdate(req *resty.Request) bool {
	if req == nil || req.Method != http.MethodPut {
		return false
	}
	path := req.URL
	if req.RawRequest != nil && req.RawRequest.URL != nil {
		path = req.RawRequest.URL.Path
	}
	return strings.HasSuffix(strings.TrimRight(path, "/"), ProfileUpdatePath)
}

var defaultGateway *Gateway

// Init installs the process-wide gateway built from config.
func Init(store session.Store, nav guard.Navigator) *Gateway {
	defaultGateway = FromConfig(store, nav)
	return defaultGateway
}

// GetClient returns the process-wide gateway, creating an anonymous one
// backed by an in-memory session when Init was not called.
func GetClient() *Gateway {
	if defaultGateway == nil {
		Init(session.NewMemoryStore(), nil)
	}
	return defaultGateway
}

// SetClient replaces the process-wide gateway.
func SetClient(g *Gateway) {
	defaultGateway = g
}
