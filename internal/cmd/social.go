package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/client"
	clierrors "github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
)

var followCmd = &cobra.Command{
	Use:         "follow <user-id>",
	Short:       "Follow a user",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/profile/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(cmd, args[0], true)
	},
}

var unfollowCmd = &cobra.Command{
	Use:         "unfollow <user-id>",
	Short:       "Unfollow a user",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/profile/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(cmd, args[0], false)
	},
}

func setFollow(cmd *cobra.Command, userID string, want bool) error {
	t, err := service.NewSocialService(deps).SetFollow(cmd.Context(), userID, want)
	if err != nil {
		return rolledBack(actionName("follow", want)+" "+userID, err)
	}
	if !pending.Seen(followKey(userID)) {
		state := "Not following"
		if t.On {
			state = "Already following"
		}
		output.PrintInfo("%s %s  %s followers", state, userID, formatter.Count(t.Count))
	}
	pending.Flush()
	return nil
}

var followersCmd = &cobra.Command{
	Use:         "followers [user-id]",
	Short:       "List followers (default: yours)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listUsers(cmd, args, "followers", service.NewSocialService(deps).Followers)
	},
}

var followingCmd = &cobra.Command{
	Use:         "following [user-id]",
	Short:       "List who a user follows (default: you)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listUsers(cmd, args, "following", service.NewSocialService(deps).Following)
	},
}

func listUsers(cmd *cobra.Command, args []string, title string, fetch func(ctx context.Context, userID string) ([]api.UserRef, error)) error {
	userID := ""
	if len(args) == 1 {
		userID = args[0]
	}
	v := output.NewView(title, cmd.CommandPath()+" "+userID, "Nobody here yet.")
	return output.Load(v,
		func() ([]api.UserRef, error) { return fetch(cmd.Context(), userID) },
		func(us []api.UserRef) bool { return len(us) == 0 },
		func(us []api.UserRef) error {
			return output.PrintList(fmt.Sprintf("%d %s", len(us), title), []string{"User", "ID"}, userRows(us), us)
		})
}

var likeCmd = &cobra.Command{
	Use:         "like <post-id>",
	Short:       "Like a post",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLike(cmd, args[0], true)
	},
}

var unlikeCmd = &cobra.Command{
	Use:         "unlike <post-id>",
	Short:       "Remove your like from a post",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLike(cmd, args[0], false)
	},
}

func setLike(cmd *cobra.Command, postID string, want bool) error {
	t, err := service.NewSocialService(deps).SetLike(cmd.Context(), postID, want)
	if err != nil {
		return rolledBack(actionName("like", want)+" "+postID, err)
	}
	if !pending.Seen(likeKey(postID)) {
		state := "Not liked"
		if t.On {
			state = "Already liked"
		}
		output.PrintInfo("%s  %s", state, formatter.LikeLabel(t.On, t.Count))
	}
	pending.Flush()
	return nil
}

var likesCmd = &cobra.Command{
	Use:         "likes <post-id>",
	Short:       "List who liked a post",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("likes", "instaintelli likes "+args[0], "No likes yet.")
		return output.Load(v,
			func() (*api.Likes, error) { return service.NewSocialService(deps).Likes(cmd.Context(), args[0]) },
			func(l *api.Likes) bool { return len(l.Likers) == 0 },
			func(l *api.Likes) error {
				return output.PrintList(fmt.Sprintf("♥ %s", formatter.Count(l.Count)), []string{"User", "ID"}, userRows(l.Likers), l)
			})
	},
}

func actionName(action string, on bool) string {
	if on {
		return action
	}
	return "un" + action
}

// rolledBack reports a reverted optimistic change with the backend reason.
func rolledBack(action string, err error) error {
	var rev *optimistic.RevertedError
	if errors.As(err, &rev) {
		return clierrors.RollbackError(fmt.Sprintf("%s (%s)", action, client.FormatError(rev.Err)), rev.Err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
	rootCmd.AddCommand(followersCmd)
	rootCmd.AddCommand(followingCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(unlikeCmd)
	rootCmd.AddCommand(likesCmd)
}
