package service

import (
	"context"

	"github.com/instaintelli/cli/pkg/api"
)

const defaultRecommendations = 10

type RecommendationService struct {
	deps Deps
}

func NewRecommendationService(d Deps) *RecommendationService {
	return &RecommendationService{deps: d}
}

func (s *RecommendationService) Trending(ctx context.Context, limit int) (*api.RecommendedPosts, error) {
	return api.GetTrendingPosts(ctx, limitOr(limit, defaultRecommendations))
}

// Hybrid blends collaborative, content and trending signals.
func (s *RecommendationService) Hybrid(ctx context.Context, limit int) (*api.RecommendedPosts, error) {
	return api.GetHybridRecommendations(ctx, limitOr(limit, defaultRecommendations))
}

// Users suggests accounts to follow, excluding the signed-in user.
func (s *RecommendationService) Users(ctx context.Context, limit int) (*api.RecommendedUsers, error) {
	out, err := api.GetUserRecommendations(ctx, limitOr(limit, defaultRecommendations))
	if err != nil {
		return nil, err
	}
	return s.withoutSelf(out), nil
}

func (s *RecommendationService) PopularUsers(ctx context.Context, limit int) (*api.RecommendedUsers, error) {
	out, err := api.GetPopularUsers(ctx, limitOr(limit, defaultRecommendations))
	if err != nil {
		return nil, err
	}
	return s.withoutSelf(out), nil
}

func (s *RecommendationService) withoutSelf(out *api.RecommendedUsers) *api.RecommendedUsers {
	self := s.deps.Store.User().UserID
	kept := out.Users[:0]
	for _, u := range out.Users {
		if u.UserID != self {
			kept = append(kept, u)
		}
	}
	out.Users = kept
	out.Count = len(kept)
	return out
}

// Content returns posts similar to what the user already liked.
func (s *RecommendationService) Content(ctx context.Context, limit int) (*api.RecommendedPosts, error) {
	return api.GetContentRecommendations(ctx, limitOr(limit, defaultRecommendations))
}

func limitOr(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
