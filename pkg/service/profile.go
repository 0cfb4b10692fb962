package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/session"
	"golang.org/x/sync/errgroup"
)

const profilePostsLimit = 12

// ProfileView is everything a profile page shows.
type ProfileView struct {
	Profile     *api.Profile
	IsSelf      bool
	IsFollowing bool
	Posts       []api.Post
}

type ProfileService struct {
	deps Deps
}

func NewProfileService(d Deps) *ProfileService {
	return &ProfileService{deps: d}
}

// View loads a profile, the viewer's follow edge and recent posts in
// parallel. An empty userID means the signed-in user.
func (s *ProfileService) View(ctx context.Context, userID string) (*ProfileView, error) {
	self := s.deps.Store.User().UserID
	if userID == "" {
		userID = self
	}
	if userID == "" {
		return nil, optimistic.ErrNotAuthenticated
	}

	view := &ProfileView{IsSelf: userID == self}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if view.IsSelf {
			view.Profile, err = api.GetMyProfile(gctx)
		} else {
			view.Profile, err = api.GetProfile(gctx, userID)
		}
		return err
	})
	g.Go(func() error {
		posts, err := api.GetUserPosts(gctx, userID, profilePostsLimit)
		if err != nil {
			return err
		}
		view.Posts = posts.Posts
		return nil
	})
	if !view.IsSelf {
		g.Go(func() error {
			following, err := api.GetFollowStatus(gctx, userID)
			if err != nil {
				// the page still renders without the follow edge
				logger.Warn("Could not load follow status", "user_id", userID, "error", err)
				return nil
			}
			view.IsFollowing = following
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if view.IsSelf {
		p := view.Profile
		_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) { mergeProfile(u, p) })
	}
	return view, nil
}

// Edit applies req to the cached user immediately, then saves it. On
// failure the cached user is restored.
// ViewByUsername resolves a handle, with or without a leading @, then
// loads its profile page.
func (s *ProfileService) ViewByUsername(ctx context.Context, username string) (*ProfileView, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, errors.ValidationError("username", "cannot be empty")
	}
	p, err := api.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.View(ctx, p.UserID)
}

func (s *ProfileService) Edit(ctx context.Context, req api.UpdateProfileRequest) (*api.Profile, error) {
	if req.Empty() {
		return nil, errors.ValidationError("profile", "nothing to update")
	}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if len(trimmed) < 3 {
			return nil, errors.ValidationError("username", "must be at least 3 characters")
		}
		req.Username = &trimmed
	}

	userID := s.deps.Store.User().UserID
	var before session.UserSummary
	var saved *api.Profile

	err := s.deps.Runner.Run(ctx, optimistic.Key{Entity: userID, Action: "profile"}, optimistic.Mutation{
		Apply: func() {
			before = s.deps.Store.User()
			_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) {
				if req.Username != nil {
					u.Username = *req.Username
				}
				if req.FullName != nil {
					u.FullName = *req.FullName
				}
				if req.Bio != nil {
					u.Bio = *req.Bio
				}
			})
		},
		Commit: func(ctx context.Context) error {
			var err error
			saved, err = api.UpdateMyProfile(ctx, req)
			return err
		},
		Revert: func() {
			_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) { *u = before })
		},
		OnSuccess: func() {
			_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) { mergeProfile(u, saved) })
			s.deps.Bus.ProfileUpdated.Publish(userID, s.deps.Store.User())
		},
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ChangePicture uploads a new avatar from a local JPG or PNG file.
func (s *ProfileService) ChangePicture(ctx context.Context, path string) (*api.Profile, error) {
	f, err := openImage(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := api.UploadProfilePicture(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) { u.ProfileImageURL = p.ProfileImageURL })
	s.deps.Bus.ProfileUpdated.Publish(p.UserID, s.deps.Store.User())
	return p, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" {
		return errors.ValidationError("current password", "cannot be empty")
	}
	if len(next) < 6 {
		return errors.ValidationError("new password", "must be at least 6 characters")
	}
	if current == next {
		return errors.ValidationError("new password", "must differ from the current one")
	}
	return api.ChangePassword(ctx, current, next)
}
