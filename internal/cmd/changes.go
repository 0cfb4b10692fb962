package cmd

import (
	"fmt"
	"sync"

	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/session"
)

// changes collects the state published on the bus while a command runs.
// Only the latest state per subject is kept, so a follower count that is
// reconciled after a follow prints once, with the server's number.
type changes struct {
	mu     sync.Mutex
	order  []string
	lines  map[string]string
	unsubs []func()
}

func followKey(userID string) string  { return "follow:" + userID }
func likeKey(postID string) string    { return "like:" + postID }
func profileKey(userID string) string { return "profile:" + userID }

func watchChanges(b *bus.Bus) *changes {
	c := &changes{lines: make(map[string]string)}
	c.unsubs = []func(){
		b.FollowUpdated.Subscribe(func(ev bus.Event[bus.FollowState]) {
			verb := "Unfollowed"
			if ev.NewState.IsFollowing {
				verb = "Following"
			}
			c.record(followKey(ev.SubjectID), fmt.Sprintf("%s %s  %s followers",
				verb, ev.SubjectID, formatter.Count(ev.NewState.FollowersCount)))
		}),
		b.LikeUpdated.Subscribe(func(ev bus.Event[bus.LikeState]) {
			c.record(likeKey(ev.SubjectID), fmt.Sprintf("%s  post %s",
				formatter.LikeLabel(ev.NewState.Liked, ev.NewState.LikeCount), ev.SubjectID))
		}),
		b.ProfileUpdated.Subscribe(func(ev bus.Event[session.UserSummary]) {
			c.record(profileKey(ev.SubjectID), fmt.Sprintf("Profile updated: %s",
				formatter.Handle(ev.NewState.Username, ev.SubjectID)))
		}),
	}
	return c
}

func (c *changes) record(key, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[key]; !ok {
		c.order = append(c.order, key)
	}
	c.lines[key] = line
}

// Seen reports whether a change for key is waiting to be shown.
func (c *changes) Seen(key string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lines[key]
	return ok
}

// Flush prints pending changes in the order subjects first changed.
func (c *changes) Flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	order, lines := c.order, c.lines
	c.order, c.lines = nil, make(map[string]string)
	c.mu.Unlock()

	if output.GetOutputFormat() == output.FormatJSON {
		return
	}
	for _, k := range order {
		output.PrintSuccess("%s", lines[k])
	}
}

// Close prints what is left and unsubscribes.
func (c *changes) Close() {
	if c == nil {
		return
	}
	c.Flush()
	for _, u := range c.unsubs {
		u()
	}
	c.unsubs = nil
}
