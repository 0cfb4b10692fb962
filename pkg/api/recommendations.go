package api

import (
	"context"
	"strconv"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// GetTrendingPosts returns posts ranked by recent engagement
func GetTrendingPosts(ctx context.Context, limit int) (*RecommendedPosts, error) {
	return getRecommendedPosts(ctx, "/api/v1/recommendations/trending", limit)
}

// GetContentRecommendations returns posts similar to ones the user liked
func GetContentRecommendations(ctx context.Context, limit int) (*RecommendedPosts, error) {
	return getRecommendedPosts(ctx, "/api/v1/recommendations/content", limit)
}

// GetHybridRecommendations blends collaborative, content and trending
// ranking into one list
func GetHybridRecommendations(ctx context.Context, limit int) (*RecommendedPosts, error) {
	return getRecommendedPosts(ctx, "/api/v1/recommendations/hybrid", limit)
}

func getRecommendedPosts(ctx context.Context, path string, limit int) (*RecommendedPosts, error) {
	logger.Debug("Fetching recommendations", "path", path, "limit", limit)

	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(path)

	var out RecommendedPosts
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserRecommendations suggests accounts to follow
func GetUserRecommendations(ctx context.Context, limit int) (*RecommendedUsers, error) {
	return getRecommendedUsers(ctx, "/api/v1/recommendations/users", limit)
}

// GetPopularUsers returns the most followed accounts. It does not need a
// session.
func GetPopularUsers(ctx context.Context, limit int) (*RecommendedUsers, error) {
	return getRecommendedUsers(ctx, "/api/v1/recommendations/popular-users", limit)
}

func getRecommendedUsers(ctx context.Context, path string, limit int) (*RecommendedUsers, error) {
	logger.Debug("Fetching user recommendations", "path", path, "limit", limit)

	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(path)

	var out RecommendedUsers
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
