package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/session"
)

// DefaultFeedLimit is the page size used when none is given.
const DefaultFeedLimit = 20

type PostService struct {
	deps Deps
}

func NewPostService(d Deps) *PostService {
	return &PostService{deps: d}
}

// Upload posts an image with an optional caption as the signed-in user.
func (s *PostService) Upload(ctx context.Context, path, caption string) (*api.UploadPostResponse, error) {
	userID := s.deps.Store.User().UserID
	if userID == "" {
		return nil, optimistic.ErrNotAuthenticated
	}
	f, err := openImage(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := api.UploadPost(ctx, userID, strings.TrimSpace(caption), filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	_ = s.deps.Store.UpdateUser(func(u *session.UserSummary) { u.PostsCount++ })
	return out, nil
}

// Feed returns one page of the global feed.
func (s *PostService) Feed(ctx context.Context, limit, skip int) (*api.PostList, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if skip < 0 {
		skip = 0
	}
	return api.GetFeed(ctx, limit, skip)
}

// UserPosts lists a user's posts; an empty userID means the signed-in user.
func (s *PostService) UserPosts(ctx context.Context, userID string, limit int) (*api.PostList, error) {
	if userID == "" {
		userID = s.deps.Store.User().UserID
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return api.GetUserPosts(ctx, userID, limit)
}

func (s *PostService) Get(ctx context.Context, postID string) (*api.Post, error) {
	if postID == "" {
		return nil, errors.ValidationError("post id", "cannot be empty")
	}
	return api.GetPost(ctx, postID)
}

// Delete removes one of the signed-in user's posts.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	if postID == "" {
		return errors.ValidationError("post id", "cannot be empty")
	}
	if err := api.DeletePost(ctx, postID); err != nil {
		return err
	}
	return s.deps.Store.UpdateUser(func(u *session.UserSummary) {
		if u.PostsCount > 0 {
			u.PostsCount--
		}
	})
}
