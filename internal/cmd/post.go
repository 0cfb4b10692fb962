package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/optimistic"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

var (
	postCaption   string
	postListLimit int
	postYes       bool
	postTap       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post management commands",
	Long:  "Upload, view and delete posts",
}

var postUploadCmd = &cobra.Command{
	Use:         "upload <image>",
	Short:       "Upload a photo",
	Long:        "Upload a JPG or PNG image with an optional caption. The caption is indexed for semantic search.",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/upload"),
	RunE: func(cmd *cobra.Command, args []string) error {
		caption := postCaption
		if !cmd.Flags().Changed("caption") && prompter.IsTerminal() {
			var err error
			if caption, err = prompter.PromptMultilineString("Caption", 20); err != nil {
				return err
			}
		}

		out, err := service.NewPostService(deps).Upload(cmd.Context(), args[0], caption)
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", out)
		}
		output.PrintSuccess("Posted %s", out.PostID)
		if out.ImageURL != "" {
			fmt.Fprintf(output.Stdout, "Image: %s\n", out.ImageURL)
		}
		return nil
	},
}

var postShowCmd = &cobra.Command{
	Use:         "show <post-id>",
	Short:       "Show a post with its likes and comments",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/feed"),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		postID := args[0]
		v := output.NewView("post", "instaintelli post show "+postID, "")
		return output.Load(v,
			func() (*api.Post, error) { return service.NewPostService(deps).Get(ctx, postID) },
			nil,
			func(p *api.Post) error {
				if output.GetOutputFormat() == output.FormatJSON {
					return output.Print("", p)
				}
				social := service.NewSocialService(deps)

				formatter.Bold.Fprintln(output.Stdout, formatter.Handle(p.Username, p.UserID))
				fmt.Fprintln(output.Stdout, p.Text)
				if p.ImageURL != "" {
					formatter.Faint.Fprintln(output.Stdout, p.ImageURL)
				}

				like, err := social.LoadLike(ctx, postID)
				if err == nil {
					t := like.Get()
					fmt.Fprintf(output.Stdout, "%s  %s\n", formatter.LikeLabel(t.On, t.Count), formatter.Ago(p.CreatedAt, time.Now()))
				}

				if comments, cerr := social.Comments(ctx, postID); cerr != nil {
					output.PrintWarning("Comments unavailable: %s", cerr)
				} else if len(comments.Comments) > 0 {
					if err := output.PrintList("Comments", []string{"Author", "Comment", "When", "ID"},
						commentLines(comments.Comments, 0, time.Now()), comments); err != nil {
						return err
					}
				}

				if postTap && like != nil {
					return tapToLike(ctx, cmd.InOrStdin(), service.NewTapper(social), postID, like)
				}
				return nil
			})
	},
}

// tapToLike treats each Enter as a tap on the post; two taps in quick
// succession like it. It ends on "q" or end of input.
func tapToLike(ctx context.Context, in io.Reader, tapper *service.Tapper, postID string, like *optimistic.State) error {
	output.PrintInfo("Double-tap Enter to like, q to quit")
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "q" {
			break
		}
		double, err := tapper.Tap(ctx, postID, like)
		if err != nil {
			return rolledBack("like "+postID, err)
		}
		if double && !pending.Seen(likeKey(postID)) {
			t := like.Get()
			output.PrintInfo("Already liked  %s", formatter.LikeLabel(t.On, t.Count))
		}
		pending.Flush()
	}
	return sc.Err()
}

var postDeleteCmd = &cobra.Command{
	Use:         "delete <post-id>",
	Short:       "Delete one of your posts",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !postYes {
			ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete post %s?", args[0]))
			if err != nil || !ok {
				return err
			}
		}
		if err := service.NewPostService(deps).Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.PrintSuccess("Post deleted")
		return nil
	},
}

var postListCmd = &cobra.Command{
	Use:         "list [user-id]",
	Short:       "List a user's posts (default: yours)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := ""
		if len(args) == 1 {
			userID = args[0]
		}
		v := output.NewView("posts", cmd.CommandPath(), "No posts yet.")
		return output.Load(v,
			func() (*api.PostList, error) {
				return service.NewPostService(deps).UserPosts(cmd.Context(), userID, postListLimit)
			},
			func(l *api.PostList) bool { return len(l.Posts) == 0 },
			func(l *api.PostList) error { return printPosts("Posts", l.Posts, l) })
	},
}

func init() {
	postCmd.AddCommand(postUploadCmd)
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postListCmd)

	postUploadCmd.Flags().StringVarP(&postCaption, "caption", "c", "", "Caption for the post")
	postShowCmd.Flags().BoolVar(&postTap, "tap", false, "Stay on the post and like it with a double tap (Enter twice)")
	postDeleteCmd.Flags().BoolVarP(&postYes, "yes", "y", false, "Skip confirmation")
	postListCmd.Flags().IntVar(&postListLimit, "limit", 20, "Maximum posts to show")
}
