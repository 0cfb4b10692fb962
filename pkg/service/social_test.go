package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/config"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withReconcile(t *testing.T, on bool) {
	t.Helper()
	config.Set("social.reconcile_counts", on)
	t.Cleanup(func() { config.Set("social.reconcile_counts", false) })
}

func TestToggleFollow_DoubleClickSendsOneRequest(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, false)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.handle("POST /api/v1/follow", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		writeJSON(w, http.StatusOK, `{"message":"Followed"}`)
	})

	svc := NewSocialService(f.deps)
	st := optimistic.NewState(optimistic.Toggle{On: false, Count: 10})

	errc := make(chan error, 1)
	go func() { errc <- svc.ToggleFollow(context.Background(), "u2", st) }()
	<-entered

	// optimistic value is visible while the request is pending
	assert.Equal(t, optimistic.Toggle{On: true, Count: 11}, st.Get())

	err := svc.ToggleFollow(context.Background(), "u2", st)
	assert.ErrorIs(t, err, optimistic.ErrInFlight)

	close(release)
	require.NoError(t, <-errc)

	assert.Equal(t, 1, f.count("POST /api/v1/follow"))
	assert.Zero(t, f.count("POST /api/v1/unfollow"))
	assert.Equal(t, optimistic.Toggle{On: true, Count: 11}, st.Get())
	assert.Equal(t, 1, f.store.User().FollowingCount)
	assert.Equal(t, "u2", f.body("POST /api/v1/follow")["user_id"])
}

func TestToggleFollow_SerialFollowUnfollow(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, false)
	f.json("POST /api/v1/follow", http.StatusOK, `{"message":"ok"}`)
	f.json("POST /api/v1/unfollow", http.StatusOK, `{"message":"ok"}`)

	var events []bus.FollowState
	unsub := f.bus.FollowUpdated.Subscribe(func(ev bus.Event[bus.FollowState]) {
		events = append(events, ev.NewState)
	})
	defer unsub()

	svc := NewSocialService(f.deps)
	st := optimistic.NewState(optimistic.Toggle{Count: 4})

	require.NoError(t, svc.ToggleFollow(context.Background(), "u2", st))
	require.NoError(t, svc.ToggleFollow(context.Background(), "u2", st))

	assert.Equal(t, optimistic.Toggle{On: false, Count: 4}, st.Get())
	assert.Equal(t, []bus.FollowState{
		{IsFollowing: true, FollowersCount: 5},
		{IsFollowing: false, FollowersCount: 4},
	}, events)
	assert.Equal(t, 0, f.store.User().FollowingCount)
}

func TestToggleFollow_FailureRevertsExactly(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, true)
	f.json("POST /api/v1/follow", http.StatusInternalServerError, `{"detail":"Graph store unavailable"}`)

	published := 0
	defer f.bus.FollowUpdated.Subscribe(func(bus.Event[bus.FollowState]) { published++ })()

	st := optimistic.NewState(optimistic.Toggle{On: false, Count: 3})
	err := NewSocialService(f.deps).ToggleFollow(context.Background(), "u2", st)

	var rev *optimistic.RevertedError
	require.ErrorAs(t, err, &rev)
	assert.Equal(t, "Graph store unavailable", client.FormatError(err))
	assert.Equal(t, optimistic.Toggle{On: false, Count: 3}, st.Get())
	assert.Zero(t, published)
	assert.Zero(t, f.store.User().FollowingCount)
	assert.Zero(t, f.count("GET /api/v1/stats/u2"))
}

func TestToggleFollow_ReconcilesFollowerCount(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, true)
	f.json("POST /api/v1/follow", http.StatusOK, `{"message":"ok"}`)
	f.json("GET /api/v1/stats/u2", http.StatusOK, `{"follower_count":42,"following_count":1}`)

	var events []bus.FollowState
	defer f.bus.FollowUpdated.Subscribe(func(ev bus.Event[bus.FollowState]) {
		events = append(events, ev.NewState)
	})()

	st := optimistic.NewState(optimistic.Toggle{Count: 3})
	require.NoError(t, NewSocialService(f.deps).ToggleFollow(context.Background(), "u2", st))

	assert.Equal(t, optimistic.Toggle{On: true, Count: 42}, st.Get())
	require.Len(t, events, 2)
	assert.Equal(t, bus.FollowState{IsFollowing: true, FollowersCount: 42}, events[1])
}

func TestToggleFollow_ReconcileFailureKeepsLocalCount(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, true)
	f.json("POST /api/v1/follow", http.StatusOK, `{"message":"ok"}`)
	f.json("GET /api/v1/stats/u2", http.StatusInternalServerError, `{"detail":"boom"}`)

	st := optimistic.NewState(optimistic.Toggle{Count: 3})
	require.NoError(t, NewSocialService(f.deps).ToggleFollow(context.Background(), "u2", st))

	assert.Equal(t, optimistic.Toggle{On: true, Count: 4}, st.Get())
}

func TestToggleFollow_Self(t *testing.T) {
	f := newFixture(t)
	u := f.signIn()

	err := NewSocialService(f.deps).ToggleFollow(context.Background(), u.UserID, optimistic.NewState(optimistic.Toggle{}))

	assert.Error(t, err)
	assert.Zero(t, f.count("POST /api/v1/follow"))
}

func TestToggleFollow_SignedOutRedirectsToLogin(t *testing.T) {
	f := newFixture(t)

	err := NewSocialService(f.deps).ToggleFollow(context.Background(), "u2", optimistic.NewState(optimistic.Toggle{}))

	assert.ErrorIs(t, err, optimistic.ErrNotAuthenticated)
	assert.Equal(t, []string{guard.LoginPath}, f.nav.Paths())
	assert.Zero(t, f.count("POST /api/v1/follow"))
}

func TestSetFollow_NoopWhenAlreadyInState(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.json("GET /api/v1/follow-status/u2", http.StatusOK, `{"is_following":true}`)
	f.json("GET /api/v1/stats/u2", http.StatusOK, `{"follower_count":3,"following_count":0}`)

	got, err := NewSocialService(f.deps).SetFollow(context.Background(), "u2", true)

	require.NoError(t, err)
	assert.Equal(t, optimistic.Toggle{On: true, Count: 3}, got)
	assert.Zero(t, f.count("POST /api/v1/follow"))
}

func TestToggleFollow_PublishesToSubscribers(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	withReconcile(t, false)
	f.json("POST /api/v1/follow", http.StatusOK, `{"message":"ok"}`)

	var got []bus.Event[bus.FollowState]
	defer f.bus.FollowUpdated.Subscribe(func(ev bus.Event[bus.FollowState]) { got = append(got, ev) })()

	st := optimistic.NewState(optimistic.Toggle{Count: 8})
	require.NoError(t, NewSocialService(f.deps).ToggleFollow(context.Background(), "u2", st))

	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].SubjectID)
	assert.Equal(t, bus.FollowState{IsFollowing: true, FollowersCount: 9}, got[0].NewState)
}

func TestToggleLike_PublishesAndReverts(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.json("POST /api/v1/like", http.StatusOK, `{"message":"ok"}`)
	f.json("POST /api/v1/unlike", http.StatusBadRequest, `{"detail":"Not liked"}`)

	var got []bus.Event[bus.LikeState]
	defer f.bus.LikeUpdated.Subscribe(func(ev bus.Event[bus.LikeState]) { got = append(got, ev) })()

	svc := NewSocialService(f.deps)
	st := optimistic.NewState(optimistic.Toggle{Count: 0})

	require.NoError(t, svc.ToggleLike(context.Background(), "p1", st))
	assert.Equal(t, optimistic.Toggle{On: true, Count: 1}, st.Get())

	err := svc.ToggleLike(context.Background(), "p1", st)
	assert.Error(t, err)
	assert.Equal(t, optimistic.Toggle{On: true, Count: 1}, st.Get())

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].SubjectID)
	assert.Equal(t, bus.LikeState{Liked: true, LikeCount: 1}, got[0].NewState)
	assert.Equal(t, "p1", f.body("POST /api/v1/like")["post_id"])
}

func TestSetLike_LoadsThenLikes(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.json("GET /api/v1/like-status/p1", http.StatusOK, `{"liked":false}`)
	f.json("GET /api/v1/likes/p1", http.StatusOK, `{"likers":[{"user_id":"a","username":"a"}],"count":1}`)
	f.json("POST /api/v1/like", http.StatusOK, `{"message":"ok"}`)

	got, err := NewSocialService(f.deps).SetLike(context.Background(), "p1", true)

	require.NoError(t, err)
	assert.Equal(t, optimistic.Toggle{On: true, Count: 2}, got)
}

func TestTapper_DoubleTapLikesButNeverUnlikes(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.json("POST /api/v1/like", http.StatusOK, `{"message":"ok"}`)

	tap := NewTapper(NewSocialService(f.deps))
	now := time.Unix(1700000000, 0)
	tap.now = func() time.Time { return now }
	st := optimistic.NewState(optimistic.Toggle{Count: 2})
	ctx := context.Background()

	double, err := tap.Tap(ctx, "p1", st)
	require.NoError(t, err)
	assert.False(t, double)

	now = now.Add(200 * time.Millisecond)
	double, err = tap.Tap(ctx, "p1", st)
	require.NoError(t, err)
	assert.True(t, double)
	assert.Equal(t, optimistic.Toggle{On: true, Count: 3}, st.Get())

	// a second double tap on a liked post leaves it liked
	now = now.Add(100 * time.Millisecond)
	_, _ = tap.Tap(ctx, "p1", st)
	now = now.Add(100 * time.Millisecond)
	double, err = tap.Tap(ctx, "p1", st)
	require.NoError(t, err)
	assert.True(t, double)
	assert.Equal(t, optimistic.Toggle{On: true, Count: 3}, st.Get())

	// taps too far apart are two single taps
	now = now.Add(time.Second)
	_, _ = tap.Tap(ctx, "p1", st)
	now = now.Add(400 * time.Millisecond)
	double, _ = tap.Tap(ctx, "p1", st)
	assert.False(t, double)

	assert.Equal(t, 1, f.count("POST /api/v1/like"))
	assert.Zero(t, f.count("POST /api/v1/unlike"))
}

func TestTapper_TapsArePerPost(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	tap := NewTapper(NewSocialService(f.deps))
	now := time.Unix(1700000000, 0)
	tap.now = func() time.Time { return now }

	_, _ = tap.Tap(context.Background(), "p1", optimistic.NewState(optimistic.Toggle{}))
	now = now.Add(50 * time.Millisecond)
	double, err := tap.Tap(context.Background(), "p2", optimistic.NewState(optimistic.Toggle{}))

	require.NoError(t, err)
	assert.False(t, double)
	assert.Zero(t, f.count("POST /api/v1/like"))
}

func TestComment(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.json("POST /api/v1/comment", http.StatusOK, `{"comment_id":"c9","message":"Comment added"}`)
	svc := NewSocialService(f.deps)

	_, err := svc.Comment(context.Background(), "p1", "   ", "")
	assert.Error(t, err)

	id, err := svc.Comment(context.Background(), "p1", " nice shot ", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c9", id)
	body := f.body("POST /api/v1/comment")
	assert.Equal(t, "nice shot", body["text"])
	assert.Equal(t, "c1", body["parent_comment_id"])
	assert.Equal(t, 1, f.count("POST /api/v1/comment"))
}

func TestFollowers_DefaultsToSelf(t *testing.T) {
	f := newFixture(t)
	u := f.signIn()
	f.json("GET /api/v1/followers/"+u.UserID, http.StatusOK, `{"followers":[{"user_id":"a","username":"alan"}]}`)

	got, err := NewSocialService(f.deps).Followers(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alan", got[0].Username)
}
