package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
)

var recommendLimit int

var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Aliases: []string{"explore"},
	Short:   "Recommendations",
	Long:    "Discover trending posts, people to follow and posts picked for you",
}

var recommendTrendingCmd = &cobra.Command{
	Use:         "trending",
	Short:       "Trending posts",
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecommendedPosts(cmd, "Trending", service.NewRecommendationService(deps).Trending)
	},
}

var recommendContentCmd = &cobra.Command{
	Use:         "content",
	Aliases:     []string{"for-you"},
	Short:       "Posts picked for you",
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecommendedPosts(cmd, "For you", service.NewRecommendationService(deps).Content)
	},
}

func showRecommendedPosts(cmd *cobra.Command, title string, fetch func(ctx context.Context, limit int) (*api.RecommendedPosts, error)) error {
	v := output.NewView(title, cmd.CommandPath(), "Nothing to recommend yet.")
	return output.Load(v,
		func() (*api.RecommendedPosts, error) { return fetch(cmd.Context(), recommendLimit) },
		func(r *api.RecommendedPosts) bool { return len(r.Posts) == 0 },
		func(r *api.RecommendedPosts) error { return printPosts(title, r.Posts, r) })
}

var recommendHybridCmd = &cobra.Command{
	Use:         "hybrid",
	Short:       "Posts ranked by every signal combined",
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecommendedPosts(cmd, "Recommended", service.NewRecommendationService(deps).Hybrid)
	},
}

var recommendUsersCmd = &cobra.Command{
	Use:         "users",
	Short:       "People you may want to follow",
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecommendedUsers(cmd, "Suggested for you", service.NewRecommendationService(deps).Users)
	},
}

var recommendPopularCmd = &cobra.Command{
	Use:         "popular",
	Short:       "Most followed accounts",
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecommendedUsers(cmd, "Popular", service.NewRecommendationService(deps).PopularUsers)
	},
}

func showRecommendedUsers(cmd *cobra.Command, title string, fetch func(ctx context.Context, limit int) (*api.RecommendedUsers, error)) error {
	v := output.NewView("suggestions", cmd.CommandPath(), "No suggestions yet.")
	return output.Load(v,
		func() (*api.RecommendedUsers, error) { return fetch(cmd.Context(), recommendLimit) },
		func(r *api.RecommendedUsers) bool { return len(r.Users) == 0 },
		func(r *api.RecommendedUsers) error {
			rows := make([][]string, 0, len(r.Users))
			for _, u := range r.Users {
				why := ""
				switch {
				case u.SimilarityScore > 0:
					why = fmt.Sprintf("%.0f%% similar", u.SimilarityScore*100)
				case u.FollowerCount > 0:
					why = formatter.Count(u.FollowerCount) + " followers"
				}
				rows = append(rows, []string{formatter.Handle(u.Username, u.UserID), why, u.UserID})
			}
			return output.PrintList(title, []string{"User", "Why", "ID"}, rows, r)
		})
}

func init() {
	recommendCmd.AddCommand(recommendTrendingCmd)
	recommendCmd.AddCommand(recommendContentCmd)
	recommendCmd.AddCommand(recommendHybridCmd)
	recommendCmd.AddCommand(recommendUsersCmd)
	recommendCmd.AddCommand(recommendPopularCmd)

	recommendCmd.PersistentFlags().IntVar(&recommendLimit, "limit", 10, "Maximum results")
}
