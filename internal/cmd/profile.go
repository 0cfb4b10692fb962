package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	clierrors "github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

var (
	editUsername string
	editFullName string
	editBio      string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile commands",
	Long:  "View and edit profiles",
}

var profileViewCmd = &cobra.Command{
	Use:         "view [user-id|@username]",
	Short:       "View a profile (default: yours)",
	Example:     "  instaintelli profile view @ada",
	Args:        cobra.MaximumNArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := ""
		retry := "instaintelli profile view"
		if len(args) == 1 {
			userID = args[0]
			retry += " " + userID
		}
		v := output.NewView("profile", retry, "")
		return output.Load(v,
			func() (*service.ProfileView, error) {
				svc := service.NewProfileService(deps)
				if strings.HasPrefix(userID, "@") {
					return svc.ViewByUsername(cmd.Context(), userID)
				}
				return svc.View(cmd.Context(), userID)
			},
			nil,
			func(pv *service.ProfileView) error {
				if output.GetOutputFormat() == output.FormatJSON {
					return output.Print("", pv)
				}
				if err := printProfile(pv.Profile, pv.IsSelf, pv.IsFollowing); err != nil {
					return err
				}
				if len(pv.Posts) == 0 {
					output.PrintInfo("No posts yet.")
					return nil
				}
				fmt.Fprintln(output.Stdout)
				return printPosts("Posts", pv.Posts, pv.Posts)
			})
	},
}

func printProfile(p *api.Profile, isSelf, following bool) error {
	if output.GetOutputFormat() != output.FormatText {
		return output.PrintRecord("Profile", map[string]interface{}{
			"user_id":   p.UserID,
			"username":  p.Username,
			"full_name": p.FullName,
			"bio":       p.Bio,
			"posts":     p.PostsCount,
			"followers": p.FollowersCount,
			"following": p.FollowingCount,
		})
	}

	formatter.Bold.Fprint(output.Stdout, formatter.Handle(p.Username, p.UserID))
	if p.FullName != "" {
		fmt.Fprintf(output.Stdout, "  %s", p.FullName)
	}
	fmt.Fprintln(output.Stdout)
	if p.Bio != "" {
		fmt.Fprintln(output.Stdout, p.Bio)
	}
	fmt.Fprintf(output.Stdout, "%s posts  %s followers  %s following\n",
		formatter.Count(p.PostsCount), formatter.Count(p.FollowersCount), formatter.Count(p.FollowingCount))

	switch {
	case isSelf:
		if p.Email != "" {
			formatter.Faint.Fprintln(output.Stdout, p.Email)
		}
		if p.MFAEnabled {
			formatter.Success.Fprintln(output.Stdout, "Two-factor authentication on")
		}
	default:
		formatter.Info.Fprintf(output.Stdout, "[%s]\n", formatter.FollowLabel(following))
	}
	return nil
}

var profileEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit your username, name or bio",
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req api.UpdateProfileRequest
		if cmd.Flags().Changed("username") {
			req.Username = &editUsername
		}
		if cmd.Flags().Changed("full-name") {
			req.FullName = &editFullName
		}
		if cmd.Flags().Changed("bio") {
			req.Bio = &editBio
		}

		p, err := service.NewProfileService(deps).Edit(cmd.Context(), req)
		if err != nil {
			return err
		}
		pending.Flush()
		return printProfile(p, true, false)
	},
}

var profilePictureCmd = &cobra.Command{
	Use:         "picture <image>",
	Short:       "Change your profile picture",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := service.NewProfileService(deps).ChangePicture(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		pending.Flush()
		if p.ProfileImageURL != "" {
			formatter.Faint.Fprintln(output.Stdout, p.ProfileImageURL)
		}
		return nil
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:         "password",
	Short:       "Change your password",
	Annotations: routed("/settings/security"),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := prompter.PromptPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := prompter.PromptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := prompter.PromptPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		if next != confirm {
			return clierrors.ValidationError("new password", "passwords do not match")
		}

		if err := service.NewProfileService(deps).ChangePassword(cmd.Context(), current, next); err != nil {
			return err
		}
		output.PrintSuccess("Password changed")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileViewCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profilePictureCmd)
	profileCmd.AddCommand(profilePasswordCmd)

	profileEditCmd.Flags().StringVar(&editUsername, "username", "", "New username")
	profileEditCmd.Flags().StringVar(&editFullName, "full-name", "", "New display name")
	profileEditCmd.Flags().StringVar(&editBio, "bio", "", "New bio")
}
