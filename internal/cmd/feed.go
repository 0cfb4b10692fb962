package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
)

var (
	feedLimit int
	feedSkip  int
)

var feedCmd = &cobra.Command{
	Use:         "feed",
	Short:       "View the latest posts",
	Annotations: routed(guard.FeedPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFeed(cmd.Context(), feedLimit, feedSkip)
	},
}

func showFeed(ctx context.Context, limit, skip int) error {
	retry := "instaintelli feed"
	if skip > 0 {
		retry = fmt.Sprintf("instaintelli feed --skip %d", skip)
	}
	v := output.NewView("feed", retry, "No posts yet. Share the first one with: instaintelli post upload <image>")
	return output.Load(v,
		func() (*api.PostList, error) {
			return service.NewPostService(deps).Feed(ctx, limit, skip)
		},
		func(l *api.PostList) bool { return len(l.Posts) == 0 },
		func(l *api.PostList) error {
			if err := printPosts("Feed", l.Posts, l); err != nil {
				return err
			}
			if output.GetOutputFormat() != output.FormatJSON && len(l.Posts) == limitOrDefault(limit) {
				output.PrintInfo("More: instaintelli feed --skip %d", skip+len(l.Posts))
			}
			return nil
		})
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return service.DefaultFeedLimit
	}
	return limit
}

func init() {
	feedCmd.Flags().IntVar(&feedLimit, "limit", service.DefaultFeedLimit, "Posts per page")
	feedCmd.Flags().IntVar(&feedSkip, "skip", 0, "Posts to skip")
}
