package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// GetUserAnalytics returns the dashboard for the caller, or for userID
// when it is non-empty.
func GetUserAnalytics(ctx context.Context, userID string) (*UserAnalytics, error) {
	path := "/api/v1/analytics/user"
	if userID != "" {
		path = fmt.Sprintf("/api/v1/analytics/user/%s", url.PathEscape(userID))
	}
	logger.Debug("Fetching analytics", "path", path)

	resp, err := client.GetClient().
		R(ctx).
		Get(path)

	var out UserAnalytics
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTopPosts returns a user's most engaged posts
func GetTopPosts(ctx context.Context, userID string, limit int) (*PostList, error) {
	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(fmt.Sprintf("/api/v1/analytics/top-posts/%s", url.PathEscape(userID)))

	var out PostList
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPlatformAnalytics returns platform-wide totals
func GetPlatformAnalytics(ctx context.Context) (*PlatformAnalytics, error) {
	logger.Debug("Fetching platform analytics")

	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/analytics/platform")

	var out PlatformAnalytics
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
