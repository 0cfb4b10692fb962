package service

import (
	"context"
	"sort"

	"github.com/instaintelli/cli/pkg/api"
)

type AnalyticsService struct {
	deps Deps
}

func NewAnalyticsService(d Deps) *AnalyticsService {
	return &AnalyticsService{deps: d}
}

// Dashboard returns engagement analytics; an empty userID means the
// signed-in user.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*api.UserAnalytics, error) {
	out, err := api.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, backendError(out.Error)
	}
	return out, nil
}

// Platform returns site-wide totals.
func (s *AnalyticsService) Platform(ctx context.Context) (*api.PlatformAnalytics, error) {
	out, err := api.GetPlatformAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, backendError(out.Error)
	}
	return out, nil
}

func (s *AnalyticsService) TopPosts(ctx context.Context, userID string, limit int) (*api.PostList, error) {
	if userID == "" {
		userID = s.deps.Store.User().UserID
	}
	return api.GetTopPosts(ctx, userID, limitOr(limit, 5))
}

// TimelineDays returns the engagement timeline's dates in order.
func TimelineDays(a *api.UserAnalytics) []string {
	days := make([]string, 0, len(a.EngagementTimeline))
	for d := range a.EngagementTimeline {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
