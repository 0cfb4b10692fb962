package service

import (
	"context"
	"strings"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/optimistic"
)

const defaultActivityDays = 30

type ActivityService struct {
	deps Deps
}

func NewActivityService(d Deps) *ActivityService {
	return &ActivityService{deps: d}
}

// Log records an activity of the given type for the signed-in user.
func (s *ActivityService) Log(ctx context.Context, activityType string, data map[string]interface{}) error {
	activityType = strings.TrimSpace(activityType)
	if activityType == "" {
		return errors.ValidationError("type", "cannot be empty")
	}
	if !s.deps.Store.IsAuthenticated() {
		return optimistic.ErrNotAuthenticated
	}
	return api.LogActivity(ctx, activityType, data)
}

func (s *ActivityService) Recent(ctx context.Context, q api.ActivityQuery) ([]api.Activity, error) {
	if !s.deps.Store.IsAuthenticated() {
		return nil, optimistic.ErrNotAuthenticated
	}
	return api.GetMyActivities(ctx, q)
}

// Stats counts activities by type over the last days, 30 when unset.
func (s *ActivityService) Stats(ctx context.Context, days int) (*api.ActivityStats, error) {
	if !s.deps.Store.IsAuthenticated() {
		return nil, optimistic.ErrNotAuthenticated
	}
	return api.GetMyActivityStats(ctx, limitOr(days, defaultActivityDays))
}
