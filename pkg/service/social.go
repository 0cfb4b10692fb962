package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/bus"
	"github.com/instaintelli/cli/pkg/config"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/session"
)

const (
	actionFollow = "follow"
	actionLike   = "like"

	// DoubleTapWindow is the longest gap between two taps that still
	// counts as a double tap.
	DoubleTapWindow = 300 * time.Millisecond
)

type SocialService struct {
	deps Deps
}

func NewSocialService(d Deps) *SocialService {
	return &SocialService{deps: d}
}

// LoadFollow builds the follow toggle for subjectID from the backend:
// the viewer's edge and the subject's follower count.
func (s *SocialService) LoadFollow(ctx context.Context, subjectID string) (*optimistic.State, error) {
	following, err := api.GetFollowStatus(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	stats, err := api.GetFollowStats(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return optimistic.NewState(optimistic.Toggle{On: following, Count: stats.FollowerCount}), nil
}

// ToggleFollow follows or unfollows subjectID depending on st. A second
// call while the first is in flight returns optimistic.ErrInFlight.
func (s *SocialService) ToggleFollow(ctx context.Context, subjectID string, st *optimistic.State) error {
	if subjectID == s.deps.Store.User().UserID {
		return errors.ValidationError("user", "you cannot follow yourself")
	}

	commit := func(ctx context.Context, on bool) error {
		if on {
			return api.FollowUser(ctx, subjectID)
		}
		return api.UnfollowUser(ctx, subjectID)
	}
	var done optimistic.Toggle
	err := s.deps.Runner.Toggle(ctx, optimistic.Key{Entity: subjectID, Action: actionFollow}, st, commit, func(t optimistic.Toggle) {
		done = t
		s.deps.Bus.FollowUpdated.Publish(subjectID, bus.FollowState{IsFollowing: t.On, FollowersCount: t.Count})
		_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) {
			if t.On {
				u.FollowingCount++
			} else if u.FollowingCount > 0 {
				u.FollowingCount--
			}
		})
	})
	if err != nil {
		return err
	}

	if config.GetBool("social.reconcile_counts") {
		s.reconcileFollowers(ctx, subjectID, st, done)
	}
	return nil
}

// reconcileFollowers replaces the locally derived follower count with the
// backend's. Failures leave the local count in place.
func (s *SocialService) reconcileFollowers(ctx context.Context, subjectID string, st *optimistic.State, local optimistic.Toggle) {
	stats, err := api.GetFollowStats(ctx, subjectID)
	if err != nil {
		logger.Debug("Follower count reconciliation skipped", "user_id", subjectID, "error", err)
		return
	}
	if stats.FollowerCount == local.Count {
		return
	}
	logger.Debug("Reconciled follower count", "user_id", subjectID, "local", local.Count, "server", stats.FollowerCount)
	st.Set(optimistic.Toggle{On: local.On, Count: stats.FollowerCount})
	s.deps.Bus.FollowUpdated.Publish(subjectID, bus.FollowState{IsFollowing: local.On, FollowersCount: stats.FollowerCount})
}

// SetFollow drives the edge toward want. It is a no-op when the edge is
// already in that state.
func (s *SocialService) SetFollow(ctx context.Context, subjectID string, want bool) (optimistic.Toggle, error) {
	st, err := s.LoadFollow(ctx, subjectID)
	if err != nil {
		return optimistic.Toggle{}, err
	}
	if st.Get().On == want {
		return st.Get(), nil
	}
	if err := s.ToggleFollow(ctx, subjectID, st); err != nil {
		return st.Get(), err
	}
	return st.Get(), nil
}

// LoadLike builds the like toggle for postID.
func (s *SocialService) LoadLike(ctx context.Context, postID string) (*optimistic.State, error) {
	liked, err := api.GetLikeStatus(ctx, postID)
	if err != nil {
		return nil, err
	}
	likes, err := api.GetLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return optimistic.NewState(optimistic.Toggle{On: liked, Count: likes.Count}), nil
}

// ToggleLike likes or unlikes postID depending on st. Like counts stay
// client-derived after the first load.
func (s *SocialService) ToggleLike(ctx context.Context, postID string, st *optimistic.State) error {
	commit := func(ctx context.Context, on bool) error {
		if on {
			return api.LikePost(ctx, postID)
		}
		return api.UnlikePost(ctx, postID)
	}
	return s.deps.Runner.Toggle(ctx, optimistic.Key{Entity: postID, Action: actionLike}, st, commit, func(t optimistic.Toggle) {
		s.deps.Bus.LikeUpdated.Publish(postID, bus.LikeState{Liked: t.On, LikeCount: t.Count})
	})
}

// SetLike drives the like toward want.
func (s *SocialService) SetLike(ctx context.Context, postID string, want bool) (optimistic.Toggle, error) {
	st, err := s.LoadLike(ctx, postID)
	if err != nil {
		return optimistic.Toggle{}, err
	}
	if st.Get().On == want {
		return st.Get(), nil
	}
	if err := s.ToggleLike(ctx, postID, st); err != nil {
		return st.Get(), err
	}
	return st.Get(), nil
}

// Tapper turns two taps on the same post within DoubleTapWindow into a
// like. A double tap never unlikes.
type Tapper struct {
	social *SocialService
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func NewTapper(social *SocialService) *Tapper {
	return &Tapper{
		social: social,
		window: DoubleTapWindow,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Tap records a tap on postID. It reports whether this tap completed a
// double tap.
func (t *Tapper) Tap(ctx context.Context, postID string, st *optimistic.State) (bool, error) {
	now := t.now()

	t.mu.Lock()
	prev, ok := t.last[postID]
	double := ok && now.Sub(prev) <= t.window
	if double {
		delete(t.last, postID)
	} else {
		t.last[postID] = now
	}
	t.mu.Unlock()

	if !double {
		return false, nil
	}
	if st.Get().On {
		return true, nil
	}
	return true, t.social.ToggleLike(ctx, postID, st)
}

// Comment adds a comment, or a reply when parentID is set, and returns
// its id.
func (s *SocialService) Comment(ctx context.Context, postID, text, parentID string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.ValidationError("comment", "cannot be empty")
	}
	return api.CreateComment(ctx, postID, text, parentID)
}

func (s *SocialService) Comments(ctx context.Context, postID string) (*api.CommentList, error) {
	return api.GetComments(ctx, postID)
}

func (s *SocialService) DeleteComment(ctx context.Context, commentID string) error {
	return api.DeleteComment(ctx, commentID)
}

// Followers lists who follows userID; empty means the signed-in user.
func (s *SocialService) Followers(ctx context.Context, userID string) ([]api.UserRef, error) {
	return api.GetFollowers(ctx, s.orSelf(userID))
}

// Following lists who userID follows; empty means the signed-in user.
func (s *SocialService) Following(ctx context.Context, userID string) ([]api.UserRef, error) {
	return api.GetFollowing(ctx, s.orSelf(userID))
}

func (s *SocialService) Likes(ctx context.Context, postID string) (*api.Likes, error) {
	return api.GetLikes(ctx, postID)
}

func (s *SocialService) orSelf(userID string) string {
	if userID == "" {
		return s.deps.Store.User().UserID
	}
	return userID
}
