package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
)

var topPostsLimit int

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Engagement analytics",
}

var analyticsDashboardCmd = &cobra.Command{
	Use:         "dashboard [user-id]",
	Short:       "Engagement overview (default: yours)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/analytics"),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := ""
		if len(args) == 1 {
			userID = args[0]
		}
		v := output.NewView("analytics", strings.TrimSpace("instaintelli analytics dashboard "+userID), "")
		return output.Load(v,
			func() (*api.UserAnalytics, error) {
				return service.NewAnalyticsService(deps).Dashboard(cmd.Context(), userID)
			},
			nil,
			renderDashboard)
	},
}

func renderDashboard(a *api.UserAnalytics) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", a)
	}
	o := a.Overview
	if err := output.PrintRecord("Overview", map[string]interface{}{
		"posts":             o.TotalPosts,
		"likes":             o.TotalLikes,
		"comments":          o.TotalComments,
		"followers":         o.Followers,
		"following":         o.Following,
		"avg likes/post":    fmt.Sprintf("%.1f", o.AvgLikesPerPost),
		"avg comments/post": fmt.Sprintf("%.1f", o.AvgCommentsPerPost),
		"engagement rate":   fmt.Sprintf("%.2f", o.EngagementRate),
	}); err != nil {
		return err
	}

	if days := service.TimelineDays(a); len(days) > 0 {
		fmt.Fprintln(output.Stdout)
		rows := make([][]string, 0, len(days))
		for _, d := range days {
			e := a.EngagementTimeline[d]
			rows = append(rows, []string{d, fmt.Sprint(e.Posts), fmt.Sprint(e.Likes), fmt.Sprint(e.Comments), bar(e.Likes + e.Comments)})
		}
		if err := output.PrintList("Engagement", []string{"Day", "Posts", "Likes", "Comments", ""}, rows, a.EngagementTimeline); err != nil {
			return err
		}
	}

	if bt := a.BestPostingTimes; len(bt.BestHours) > 0 || bt.Recommendation != "" {
		fmt.Fprintln(output.Stdout)
		hours := append([]int(nil), bt.BestHours...)
		sort.Ints(hours)
		labels := make([]string, len(hours))
		for i, h := range hours {
			labels[i] = fmt.Sprintf("%02d:00", h)
		}
		formatter.Bold.Fprintln(output.Stdout, "Best posting times")
		if len(labels) > 0 {
			fmt.Fprintln(output.Stdout, strings.Join(labels, ", "))
		}
		if bt.Recommendation != "" {
			formatter.Faint.Fprintln(output.Stdout, bt.Recommendation)
		}
	}

	if len(a.TopPosts) > 0 {
		fmt.Fprintln(output.Stdout)
		return printPosts("Top posts", a.TopPosts, a.TopPosts)
	}
	return nil
}

func bar(n int) string {
	if n > 40 {
		n = 40
	}
	return strings.Repeat("▇", n)
}

var analyticsTopPostsCmd = &cobra.Command{
	Use:         "top-posts [user-id]",
	Short:       "Most engaged posts (default: yours)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/analytics"),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := ""
		if len(args) == 1 {
			userID = args[0]
		}
		v := output.NewView("top posts", "instaintelli analytics top-posts", "No posts yet.")
		return output.Load(v,
			func() (*api.PostList, error) {
				return service.NewAnalyticsService(deps).TopPosts(cmd.Context(), userID, topPostsLimit)
			},
			func(l *api.PostList) bool { return len(l.Posts) == 0 },
			func(l *api.PostList) error { return printPosts("Top posts", l.Posts, l) })
	},
}

var analyticsPlatformCmd = &cobra.Command{
	Use:         "platform",
	Short:       "Site-wide totals",
	Annotations: routed("/analytics"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("platform analytics", "instaintelli analytics platform", "")
		return output.Load(v,
			func() (*api.PlatformAnalytics, error) {
				return service.NewAnalyticsService(deps).Platform(cmd.Context())
			},
			nil,
			func(p *api.PlatformAnalytics) error {
				if output.GetOutputFormat() == output.FormatJSON {
					return output.Print("", p)
				}
				return output.PrintRecord("Platform", map[string]interface{}{
					"posts":             p.TotalPosts,
					"likes":             p.TotalLikes,
					"comments":          p.TotalComments,
					"active users":      p.ActiveUsers,
					"avg likes/post":    fmt.Sprintf("%.1f", p.AvgLikesPerPost),
					"avg comments/post": fmt.Sprintf("%.1f", p.AvgCommentsPerPost),
				})
			})
	},
}

func init() {
	analyticsCmd.AddCommand(analyticsDashboardCmd)
	analyticsCmd.AddCommand(analyticsTopPostsCmd)
	analyticsCmd.AddCommand(analyticsPlatformCmd)

	analyticsTopPostsCmd.Flags().IntVar(&topPostsLimit, "limit", 5, "Maximum posts")
}
