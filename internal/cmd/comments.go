package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

var commentReplyTo string

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage comments on posts",
	Long:  "Add, view and delete comments. Replies are threaded under their parent.",
}

var commentAddCmd = &cobra.Command{
	Use:         "add <post-id> [text...]",
	Short:       "Comment on a post",
	Args:        cobra.MinimumNArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		if text == "" {
			var err error
			if text, err = prompter.PromptString("Comment: "); err != nil {
				return err
			}
		}
		id, err := service.NewSocialService(deps).Comment(cmd.Context(), args[0], text, commentReplyTo)
		if err != nil {
			return err
		}
		output.PrintSuccess("Comment added (%s)", id)
		return nil
	},
}

var commentListCmd = &cobra.Command{
	Use:         "list <post-id>",
	Short:       "Show comments on a post",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("comments", "instaintelli comment list "+args[0], "No comments yet.")
		return output.Load(v,
			func() (*api.CommentList, error) {
				return service.NewSocialService(deps).Comments(cmd.Context(), args[0])
			},
			func(l *api.CommentList) bool { return len(l.Comments) == 0 },
			func(l *api.CommentList) error {
				return output.PrintList("Comments", []string{"Author", "Comment", "When", "ID"},
					commentLines(l.Comments, 0, time.Now()), l)
			})
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:         "delete <comment-id>",
	Short:       "Delete one of your comments",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewSocialService(deps).DeleteComment(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.PrintSuccess("Comment deleted")
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	commentAddCmd.Flags().StringVar(&commentReplyTo, "reply-to", "", "Reply to this comment id")
}
