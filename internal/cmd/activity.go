package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
)

const activityRoute = "/settings/activity"

var (
	activityType  string
	activityLimit int
	activityDays  int
	statsDays     int
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Your account activity log",
}

var activityLogCmd = &cobra.Command{
	Use:         "log <type> [key=value...]",
	Short:       "Record an activity",
	Example:     "  instaintelli activity log post_viewed post_id=p1",
	Args:        cobra.MinimumNArgs(1),
	Annotations: routed(activityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseActivityData(args[1:])
		if err != nil {
			return err
		}
		if err := service.NewActivityService(deps).Log(cmd.Context(), args[0], data); err != nil {
			return err
		}
		output.PrintSuccess("Logged %s", args[0])
		return nil
	},
}

// parseActivityData turns key=value pairs into the activity payload.
func parseActivityData(pairs []string) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.ValidationError("data", fmt.Sprintf("%q is not key=value", p))
		}
		data[strings.TrimSpace(k)] = v
	}
	return data, nil
}

var activityListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "Recent activities, newest first",
	Annotations: routed(activityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := api.ActivityQuery{Type: activityType, Limit: activityLimit, Days: activityDays}
		v := output.NewView("activity", "instaintelli activity list", "No activity in this period.")
		return output.Load(v,
			func() ([]api.Activity, error) {
				return service.NewActivityService(deps).Recent(cmd.Context(), q)
			},
			func(l []api.Activity) bool { return len(l) == 0 },
			func(l []api.Activity) error {
				now := time.Now()
				rows := make([][]string, 0, len(l))
				for _, a := range l {
					rows = append(rows, []string{formatter.Ago(a.Timestamp, now), a.ActivityType, activityDetail(a.ActivityData)})
				}
				return output.PrintList("Activity", []string{"When", "Type", "Details"}, rows, l)
			})
	},
}

func activityDetail(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return formatter.Truncate(strings.Join(parts, " "), 60)
}

var activityStatsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "Activity counts by type",
	Annotations: routed(activityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("activity stats", "instaintelli activity stats", "")
		return output.Load(v,
			func() (*api.ActivityStats, error) {
				return service.NewActivityService(deps).Stats(cmd.Context(), statsDays)
			},
			func(s *api.ActivityStats) bool { return s.TotalActivities == 0 },
			func(s *api.ActivityStats) error {
				types := make([]string, 0, len(s.ActivitiesByType))
				for t := range s.ActivitiesByType {
					types = append(types, t)
				}
				sort.Slice(types, func(i, j int) bool {
					ci, cj := s.ActivitiesByType[types[i]], s.ActivitiesByType[types[j]]
					if ci != cj {
						return ci > cj
					}
					return types[i] < types[j]
				})
				rows := make([][]string, 0, len(types))
				for _, t := range types {
					rows = append(rows, []string{t, fmt.Sprint(s.ActivitiesByType[t])})
				}
				title := fmt.Sprintf("%d activities in %d days", s.TotalActivities, s.PeriodDays)
				return output.PrintList(title, []string{"Type", "Count"}, rows, s)
			})
	},
}

func init() {
	activityCmd.AddCommand(activityLogCmd)
	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityStatsCmd)

	activityListCmd.Flags().StringVar(&activityType, "type", "", "Only this activity type")
	activityListCmd.Flags().IntVar(&activityLimit, "limit", 0, "Maximum entries (server default 100)")
	activityListCmd.Flags().IntVar(&activityDays, "days", 0, "Look back this many days (server default 30)")
	activityStatsCmd.Flags().IntVar(&statsDays, "days", 30, "Look back this many days")
}
