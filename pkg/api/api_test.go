package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend routes "METHOD /path" to handlers and records request bodies.
type backend struct {
	t      *testing.T
	routes map[string]http.HandlerFunc
	bodies map[string]map[string]interface{}
	store  session.Store
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		t:      t,
		routes: map[string]http.HandlerFunc{},
		bodies: map[string]map[string]interface{}{},
		store:  session.NewMemoryStore(),
	}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)

	prev := client.GetClient()
	client.SetClient(client.New(b.store, client.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}))
	t.Cleanup(func() { client.SetClient(prev) })
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if json.Unmarshal(raw, &body) == nil {
			b.bodies[key] = body
		}
	}
	h, ok := b.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
		return
	}
	h(w, r)
}

func (b *backend) json(method, path string, status int, body string) {
	b.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestLogin_MFAChallenge(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/auth/login", 200, `{"mfa_required":true,"user_id":"u1","email":"a@b.c","message":"MFA code required"}`)

	resp, err := Login(context.Background(), "a@b.c", "secret")

	require.NoError(t, err)
	assert.True(t, resp.MFARequired)
	assert.Equal(t, "u1", resp.UserID)
	assert.Empty(t, resp.AccessToken)
	assert.Equal(t, "a@b.c", b.bodies["POST /api/v1/auth/login"]["email"])
}

func TestLogin_Session(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/auth/login", 200, `{"mfa_required":false,"access_token":"tok","token_type":"bearer","user":{"user_id":"u1","username":"ada","mfa_enabled":false}}`)

	resp, err := Login(context.Background(), "a@b.c", "secret")

	require.NoError(t, err)
	assert.False(t, resp.MFARequired)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, "ada", resp.User.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/auth/login", 401, `{"detail":"Incorrect email or password"}`)

	_, err := Login(context.Background(), "a@b.c", "nope")

	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", client.FormatError(err))
}

func TestVerifyMFALogin_SendsUserAndCode(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/auth/mfa/verify", 200, `{"access_token":"tok","user":{"user_id":"u1"}}`)

	resp, err := VerifyMFALogin(context.Background(), "u1", "123456")

	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, map[string]interface{}{"user_id": "u1", "code": "123456"}, b.bodies["POST /api/v1/auth/mfa/verify"])
}

func TestGetGoogleOAuthURL(t *testing.T) {
	b := newBackend(t)
	b.routes["GET /api/v1/auth/oauth/google/url"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "http://127.0.0.1:8765/auth/callback", r.URL.Query().Get("redirect_to"))
		_, _ = w.Write([]byte(`{"url":"https://accounts.example.com/o?x=1"}`))
	}

	u, err := GetGoogleOAuthURL(context.Background(), "http://127.0.0.1:8765/auth/callback")

	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/o?x=1", u)
}

func TestUpdateMyProfile_OnlyChangedFields(t *testing.T) {
	b := newBackend(t)
	b.json("PUT", "/api/v1/profile/me", 200, `{"user_id":"u1","username":"ada","bio":"new bio"}`)

	bio := "new bio"
	p, err := UpdateMyProfile(context.Background(), UpdateProfileRequest{Bio: &bio})

	require.NoError(t, err)
	assert.Equal(t, "new bio", p.Bio)
	assert.Equal(t, map[string]interface{}{"bio": "new bio"}, b.bodies["PUT /api/v1/profile/me"])
}

func TestUploadPost_Multipart(t *testing.T) {
	b := newBackend(t)
	b.routes["POST /api/v1/posts/upload"] = func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("user_id"))
		assert.Equal(t, "sunset", r.FormValue("text"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "sunset.jpg", hdr.Filename)
		_, _ = w.Write([]byte(`{"post_id":"p1","status":"uploaded","image_url":"i","thumbnail_url":"t"}`))
	}

	out, err := UploadPost(context.Background(), "u1", "sunset", "sunset.jpg", strings.NewReader("jpegbytes"))

	require.NoError(t, err)
	assert.Equal(t, "p1", out.PostID)
}

func TestGetFeed_Pagination(t *testing.T) {
	b := newBackend(t)
	b.routes["GET /api/v1/posts/feed"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("skip"))
		_, _ = w.Write([]byte(`{"posts":[{"post_id":"p1","user_id":"u1","text":"hi"}],"count":1}`))
	}

	feed, err := GetFeed(context.Background(), 20, 40)

	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "hi", feed.Posts[0].Text)
}

func TestSocialMutations_Bodies(t *testing.T) {
	b := newBackend(t)
	for _, p := range []string{"/api/v1/follow", "/api/v1/unfollow", "/api/v1/like", "/api/v1/unlike"} {
		b.json("POST", p, 200, `{"message":"ok"}`)
	}
	ctx := context.Background()

	require.NoError(t, FollowUser(ctx, "u2"))
	require.NoError(t, UnfollowUser(ctx, "u2"))
	require.NoError(t, LikePost(ctx, "p1"))
	require.NoError(t, UnlikePost(ctx, "p1"))

	assert.Equal(t, "u2", b.bodies["POST /api/v1/follow"]["user_id"])
	assert.Equal(t, "u2", b.bodies["POST /api/v1/unfollow"]["user_id"])
	assert.Equal(t, "p1", b.bodies["POST /api/v1/like"]["post_id"])
	assert.Equal(t, "p1", b.bodies["POST /api/v1/unlike"]["post_id"])
}

func TestSocialReads(t *testing.T) {
	b := newBackend(t)
	b.json("GET", "/api/v1/follow-status/u2", 200, `{"is_following":true}`)
	b.json("GET", "/api/v1/like-status/p1", 200, `{"liked":true}`)
	b.json("GET", "/api/v1/stats/u2", 200, `{"follower_count":12,"following_count":3}`)
	b.json("GET", "/api/v1/followers/u2", 200, `{"followers":[{"user_id":"u1","username":"ada"}],"count":1}`)
	b.json("GET", "/api/v1/comments/p1", 200, `{"comments":[{"comment_id":"c1","text":"nice","replies":[{"comment_id":"c2","text":"thanks"}]}],"count":2}`)
	ctx := context.Background()

	following, err := GetFollowStatus(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, following)

	liked, err := GetLikeStatus(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, liked)

	stats, err := GetFollowStats(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.FollowerCount)

	followers, err := GetFollowers(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []UserRef{{UserID: "u1", Username: "ada"}}, followers)

	comments, err := GetComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments.Comments, 1)
	assert.Equal(t, "thanks", comments.Comments[0].Replies[0].Text)
}

func TestCreateComment_Reply(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/comment", 200, `{"message":"Comment created successfully","comment_id":"comment_abc"}`)

	id, err := CreateComment(context.Background(), "p1", "agreed", "c1")

	require.NoError(t, err)
	assert.Equal(t, "comment_abc", id)
	assert.Equal(t, "c1", b.bodies["POST /api/v1/comment"]["parent_comment_id"])
}

func TestMessages(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/message", 200, `{"message":"Message sent","message_id":"m1"}`)
	b.json("GET", "/api/v1/unread-count", 200, `{"unread_count":4}`)
	b.json("GET", "/api/v1/messages/u2", 200, `{"messages":[{"message_id":"m1","text":"yo","sender_id":"u1","read":false}]}`)
	b.json("POST", "/api/v1/messages/u2/read", 200, `{"message":"Messages marked as read"}`)
	ctx := context.Background()

	id, err := SendMessage(ctx, "u2", "yo")
	require.NoError(t, err)
	assert.Equal(t, "m1", id)
	assert.Equal(t, "u2", b.bodies["POST /api/v1/message"]["recipient_id"])

	n, err := GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	msgs, err := GetMessages(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	assert.NoError(t, MarkMessagesRead(ctx, "u2"))
}

func TestSemanticSearch(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/search/semantic", 200, `{"query":"sunsets","results":[{"post_id":"p1","metadata":{"caption":"orange sky"},"similarity_score":0.91},{"post_id":"p2","metadata":{}}],"count":2}`)

	out, err := SemanticSearch(context.Background(), SemanticSearchRequest{Query: "sunsets", NResults: 5, UseCache: true})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "orange sky", out.Results[0].Caption())
	require.NotNil(t, out.Results[0].SimilarityScore)
	assert.InDelta(t, 0.91, *out.Results[0].SimilarityScore, 1e-9)
	assert.Nil(t, out.Results[1].SimilarityScore)
	assert.Equal(t, true, b.bodies["POST /api/v1/search/semantic"]["use_cache"])
}

func TestGetUserAnalytics_Paths(t *testing.T) {
	b := newBackend(t)
	b.json("GET", "/api/v1/analytics/user", 200, `{"user_id":"me","overview":{"total_posts":3,"engagement_rate":1.5}}`)
	b.json("GET", "/api/v1/analytics/user/u2", 200, `{"user_id":"u2","overview":{"total_posts":7}}`)

	mine, err := GetUserAnalytics(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Overview.TotalPosts)
	assert.InDelta(t, 1.5, mine.Overview.EngagementRate, 1e-9)

	theirs, err := GetUserAnalytics(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, 7, theirs.Overview.TotalPosts)
}

func TestNotFound(t *testing.T) {
	newBackend(t)

	_, err := GetPost(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Equal(t, "Not Found", client.FormatError(err))
}

func TestProfileSummaryKeepsIdentity(t *testing.T) {
	p := Profile{UserID: "u1", Username: "ada", FollowersCount: 5, MFAEnabled: true}
	s := p.Summary()
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, 5, s.FollowersCount)
	assert.True(t, s.MFAEnabled)
}

func TestRecommendationPaths(t *testing.T) {
	b := newBackend(t)
	var limit string
	b.routes["GET /api/v1/recommendations/hybrid"] = func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"posts":[{"post_id":"p1"}],"count":1,"type":"hybrid"}`))
	}
	b.json("GET", "/api/v1/recommendations/popular-users", 200, `{"users":[{"user_id":"u9","username":"star","follower_count":310,"reason":"Popular user"}],"count":1}`)
	ctx := context.Background()

	hybrid, err := GetHybridRecommendations(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", limit)
	assert.Equal(t, "hybrid", hybrid.Type)
	require.Len(t, hybrid.Posts, 1)

	popular, err := GetPopularUsers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, popular.Users, 1)
	assert.Equal(t, 310, popular.Users[0].FollowerCount)
	assert.Equal(t, "Popular user", popular.Users[0].Reason)
}

func TestGetPlatformAnalytics(t *testing.T) {
	b := newBackend(t)
	b.json("GET", "/api/v1/analytics/platform", 200, `{"total_posts":120,"total_likes":900,"total_comments":40,"active_users":33,"avg_likes_per_post":7.5,"avg_comments_per_post":0.33,"generated_at":"2026-10-01T00:00:00"}`)

	out, err := GetPlatformAnalytics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 120, out.TotalPosts)
	assert.Equal(t, 33, out.ActiveUsers)
	assert.InDelta(t, 7.5, out.AvgLikesPerPost, 1e-9)
	assert.Empty(t, out.Error)
}

func TestActivity(t *testing.T) {
	b := newBackend(t)
	b.json("POST", "/api/v1/activity/log", 200, `{"message":"Activity logged successfully"}`)
	var query url.Values
	b.routes["GET /api/v1/activity/me"] = func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[{"activity_id":"a1","activity_type":"login","activity_data":{"method":"password"},"timestamp":"2026-10-01T09:00:00"}]`))
	}
	var statsDays string
	b.routes["GET /api/v1/activity/me/stats"] = func(w http.ResponseWriter, r *http.Request) {
		statsDays = r.URL.Query().Get("days")
		_, _ = w.Write([]byte(`{"total_activities":5,"activities_by_type":{"login":3,"post_created":2},"period_days":7}`))
	}
	ctx := context.Background()

	require.NoError(t, LogActivity(ctx, "profile_viewed", nil))
	body := b.bodies["POST /api/v1/activity/log"]
	assert.Equal(t, "profile_viewed", body["activity_type"])
	assert.Equal(t, map[string]interface{}{}, body["activity_data"])

	list, err := GetMyActivities(ctx, ActivityQuery{Type: "login", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "password", list[0].ActivityData["method"])
	assert.Equal(t, "login", query.Get("activity_type"))
	assert.Equal(t, "10", query.Get("limit"))
	assert.False(t, query.Has("days"))

	stats, err := GetMyActivityStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", statsDays)
	assert.Equal(t, 5, stats.TotalActivities)
	assert.Equal(t, 3, stats.ActivitiesByType["login"])
}

func TestGetProfileByUsername(t *testing.T) {
	b := newBackend(t)
	b.json("GET", "/api/v1/users/username/ada", 200, `{"user_id":"u1","username":"ada","followers_count":4}`)

	p, err := GetProfileByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	_, err = GetProfileByUsername(context.Background(), "nobody")
	assert.True(t, client.IsNotFound(err))
}
