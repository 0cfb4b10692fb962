package cmd

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileView_ByHandle(t *testing.T) {
	buf := setupRoot(t)
	var (
		mu    sync.Mutex
		paths []string
	)
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/users/username/grace", "/api/v1/profile/u2":
			_, _ = w.Write([]byte(`{"user_id":"u2","username":"grace","full_name":"Grace H","followers_count":12}`))
		case "/api/v1/posts/user/u2":
			_, _ = w.Write([]byte(`{"posts":[],"count":0}`))
		default:
			_, _ = w.Write([]byte(`{"is_following":true}`))
		}
	})
	profileViewCmd.SetContext(context.Background())

	require.NoError(t, profileViewCmd.RunE(profileViewCmd, []string{"@grace"}))

	assert.Contains(t, paths, "/api/v1/users/username/grace")
	assert.Contains(t, paths, "/api/v1/profile/u2")
	assert.Contains(t, buf.String(), "Grace H")
	assert.Contains(t, buf.String(), "12 followers")
}
