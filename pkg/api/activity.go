package api

import (
	"context"
	"strconv"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// LogActivity records an activity for the signed-in user
func LogActivity(ctx context.Context, activityType string, data map[string]interface{}) error {
	logger.Debug("Logging activity", "type", activityType)

	if data == nil {
		data = map[string]interface{}{}
	}
	resp, err := client.GetClient().
		R(ctx).
		SetBody(LogActivityRequest{ActivityType: activityType, ActivityData: data}).
		Post("/api/v1/activity/log")

	return decode(resp, err, nil)
}

// GetMyActivities lists the signed-in user's recent activities, newest first
func GetMyActivities(ctx context.Context, q ActivityQuery) ([]Activity, error) {
	logger.Debug("Fetching activities", "type", q.Type, "limit", q.Limit, "days", q.Days)

	req := client.GetClient().R(ctx)
	if q.Type != "" {
		req.SetQueryParam("activity_type", q.Type)
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
	if q.Days > 0 {
		req.SetQueryParam("days", strconv.Itoa(q.Days))
	}
	resp, err := req.Get("/api/v1/activity/me")

	var out []Activity
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMyActivityStats counts the signed-in user's activities by type
func GetMyActivityStats(ctx context.Context, days int) (*ActivityStats, error) {
	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("days", strconv.Itoa(days)).
		Get("/api/v1/activity/me/stats")

	var out ActivityStats
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
