package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func newTestGateway(t *testing.T, h http.HandlerFunc) (*Gateway, session.Store, *recordedNav) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	nav := &recordedNav{}
	g := New(store, Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Navigator: nav})
	return g, store, nav
}

func TestGateway_AttachesBearerFromStore(t *testing.T) {
	var auth []string
	g, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, g.Check(g.R(context.Background()).Get("/api/v1/feed/")))

	require.NoError(t, store.Set("tok-1", "", session.UserSummary{UserID: "u1"}))
	require.NoError(t, g.Check(g.R(context.Background()).Get("/api/v1/feed/")))

	// token is read per request, not captured at construction
	require.NoError(t, store.Set("tok-2", "", session.UserSummary{UserID: "u1"}))
	require.NoError(t, g.Check(g.R(context.Background()).Get("/api/v1/feed/")))

	assert.Equal(t, []string{"", "Bearer tok-1", "Bearer tok-2"}, auth)
}

func TestGateway_UnauthorizedClearsSessionAndNavigates(t *testing.T) {
	g, store, nav := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})
	require.NoError(t, store.Set("stale", "", session.UserSummary{UserID: "u1"}))

	err := g.Check(g.R(context.Background()).Get("/api/v1/profile/me"))

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Could not validate credentials", FormatError(err))
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, []string{guard.LoginPath}, nav.paths)
	assert.Equal(t, []bool{true}, nav.repl)
}

func TestGateway_ProfileUpdateUnauthorizedKeepsSession(t *testing.T) {
	g, store, nav := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Current password is incorrect"}`))
	})
	require.NoError(t, store.Set("tok", "", session.UserSummary{UserID: "u1"}))

	err := g.Check(g.R(context.Background()).
		SetBody(map[string]string{"current_password": "x", "new_password": "yyyyyyyy"}).
		Put(ProfileUpdatePath))

	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", FormatError(err))
	assert.False(t, IsUnauthorized(err))
	assert.True(t, store.IsAuthenticated())
	assert.Empty(t, nav.paths)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Validation)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.HTTPStatus())
}

func TestGateway_ProfileGetUnauthorizedStillSignsOut(t *testing.T) {
	g, store, nav := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	require.NoError(t, store.Set("tok", "", session.UserSummary{UserID: "u1"}))

	_ = g.Check(g.R(context.Background()).Get(ProfileUpdatePath))

	assert.False(t, store.IsAuthenticated())
	assert.Len(t, nav.paths, 1)
}

func TestGateway_AnonymousUnauthorizedDoesNotNavigate(t *testing.T) {
	g, _, nav := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
	})

	err := g.Check(g.R(context.Background()).SetBody(map[string]string{"email": "a@b.c"}).Post("/api/v1/auth/login"))

	assert.Equal(t, "Invalid email or password", FormatError(err))
	assert.Empty(t, nav.paths)
}

func TestGateway_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := New(session.NewMemoryStore(), Options{BaseURL: url, Timeout: time.Second})
	err := g.Check(g.R(context.Background()).Get("/api/v1/feed/"))

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.False(t, tErr.Timeout)
	assert.Equal(t, NetworkErrorMessage, FormatError(err))
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	g.Resty().SetTimeout(50 * time.Millisecond)
	g.timeout = 50 * time.Millisecond

	err := g.Check(g.R(context.Background()).Get("/slow"))

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.True(t, tErr.Timeout)
	assert.Equal(t, "timeout of 50ms exceeded", FormatError(err))
}

func TestGateway_MultipartKeepsBoundary(t *testing.T) {
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("user_id"))
		w.WriteHeader(http.StatusOK)
	})

	err := g.Check(g.R(context.Background()).
		SetFileReader("file", "a.png", strings.NewReader("png")).
		SetMultipartFormData(map[string]string{"user_id": "u1", "text": "hi"}).
		Post("/api/v1/posts/upload"))
	require.NoError(t, err)
}

func TestGateway_RateLimit(t *testing.T) {
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g2 := New(g.Store(), Options{BaseURL: g.Resty().BaseURL, RateLimit: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g2.Check(g2.R(context.Background()).Get("/")))
	}
	// burst of 20 covers three calls
	assert.Less(t, time.Since(start), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, g2.Check(g2.R(ctx).Get("/")))
}

func TestFormatError_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Email already registered"}`, "Email already registered"},
		{
			"field errors",
			`{"detail":[{"loc":["body","email"],"msg":"field required"},{"loc":["body","password"],"msg":"too short"}]}`,
			"(body.email) field required, (body.password) too short",
		},
		{"field error without loc", `{"detail":[{"msg":"bad"}]}`, "bad"},
		{"numeric loc", `{"detail":[{"loc":["body","tags",0],"msg":"invalid"}]}`, "(body.tags.0) invalid"},
		{"object detail", `{"detail":{"msg":"Post not found"}}`, "Post not found"},
		{"message field", `{"message":"Upload failed"}`, "Upload failed"},
		{"error field", `{"error":"Vector store offline"}`, "Vector store offline"},
		{"html body", `<html>bad gateway</html>`, UnexpectedErrorMessage},
		{"empty detail", `{"detail":""}`, UnexpectedErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})
			err := g.Check(g.R(context.Background()).Get("/x"))
			assert.Equal(t, tt.want, FormatError(err))
		})
	}
}

func TestFormatError_PlainErrors(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "boom", FormatError(errors.New("boom")))
	assert.Equal(t, UnexpectedErrorMessage, FormatError(errors.New("")))
	assert.Equal(t, "Network Error", FormatError(&TransportError{Message: NetworkErrorMessage}))
}
