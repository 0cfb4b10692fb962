package cmd

import (
	"strings"
	"testing"

	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/session"
	"github.com/stretchr/testify/assert"
)

func TestChanges_LatestStatePerSubject(t *testing.T) {
	buf := setupRoot(t)
	b := bus.New()
	c := watchChanges(b)
	defer c.Close()

	b.FollowUpdated.Publish("u2", bus.FollowState{IsFollowing: true, FollowersCount: 9})
	// reconciled count replaces the optimistic one
	b.FollowUpdated.Publish("u2", bus.FollowState{IsFollowing: true, FollowersCount: 42})
	b.LikeUpdated.Publish("p1", bus.LikeState{Liked: true, LikeCount: 3})

	assert.True(t, c.Seen(followKey("u2")))
	assert.False(t, c.Seen(followKey("u3")))

	c.Flush()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"Following u2  42 followers", "♥ 3  post p1"}, lines)
	assert.False(t, c.Seen(followKey("u2")), "flush consumes pending changes")
}

func TestChanges_ProfileAndUnfollow(t *testing.T) {
	buf := setupRoot(t)
	b := bus.New()
	c := watchChanges(b)

	b.ProfileUpdated.Publish("u1", session.UserSummary{UserID: "u1", Username: "ada"})
	b.FollowUpdated.Publish("u2", bus.FollowState{FollowersCount: 7})
	c.Close()

	assert.Contains(t, buf.String(), "Profile updated: @ada")
	assert.Contains(t, buf.String(), "Unfollowed u2  7 followers")
	assert.Zero(t, b.FollowUpdated.Subscribers())
	assert.Zero(t, b.LikeUpdated.Subscribers())
	assert.Zero(t, b.ProfileUpdated.Subscribers())
}

func TestChanges_NilIsSafe(t *testing.T) {
	var c *changes
	assert.False(t, c.Seen(likeKey("p1")))
	assert.NotPanics(t, c.Flush)
	assert.NotPanics(t, c.Close)
}
