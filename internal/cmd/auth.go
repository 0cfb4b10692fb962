package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/config"
	clierrors "github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/oauth"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

const (
	mfaAttempts  = 3
	oauthTimeout = 5 * time.Minute
)

var authEmail string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in, register and manage your InstaIntelli session",
}

var loginCmd = &cobra.Command{
	Use:         "login",
	Short:       "Sign in with email and password",
	Annotations: routed(guard.LoginPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := authEmail
		if email == "" {
			var err error
			if email, err = prompter.PromptString("Email: "); err != nil {
				return err
			}
		}
		password, err := prompter.PromptPassword("Password: ")
		if err != nil {
			return err
		}

		authSvc := service.NewAuthService(deps)
		res, err := authSvc.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if res.MFARequired {
			if res, err = completeMFA(cmd.Context(), authSvc, res.UserID); err != nil {
				return err
			}
		}
		output.PrintSuccess("Welcome back, %s!", formatter.Handle(res.User.Username, res.User.UserID))
		return nil
	},
}

// completeMFA asks for the second factor until it is accepted or the
// attempts run out. Nothing is stored before it succeeds.
func completeMFA(ctx context.Context, authSvc *service.AuthService, userID string) (*service.LoginResult, error) {
	output.PrintInfo("Two-factor authentication is enabled for this account.")

	var lastErr error
	for attempt := 1; attempt <= mfaAttempts; attempt++ {
		code, err := prompter.PromptCode("Authentication code (or recovery code): ")
		if err != nil {
			var cliErr *clierrors.CLIError
			if errors.As(err, &cliErr) && attempt < mfaAttempts {
				output.PrintError("%s", cliErr.Message)
				lastErr = err
				continue
			}
			return nil, err
		}

		res, err := authSvc.VerifyMFALogin(ctx, userID, code)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt < mfaAttempts {
			output.PrintError("%s", err)
		}
	}
	return nil, lastErr
}

var registerCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create a new account",
	Annotations: routed("/register"),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req api.RegisterRequest
		var err error
		if req.Email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
		if req.Username, err = prompter.PromptString("Username: "); err != nil {
			return err
		}
		if req.FullName, err = prompter.PromptString("Full name (optional): "); err != nil {
			return err
		}
		if req.Password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
		confirm, err := prompter.PromptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != req.Password {
			return clierrors.ValidationError("password", "passwords do not match")
		}

		res, err := service.NewAuthService(deps).Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		output.PrintSuccess("Account created. Welcome, %s!", formatter.Handle(res.User.Username, res.User.UserID))
		return nil
	},
}

var googleLoginCmd = &cobra.Command{
	Use:         "google",
	Short:       "Sign in with Google",
	Long:        "Open Google sign-in in your browser and wait for it to redirect back to this terminal.",
	Annotations: routed(guard.LoginPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), oauthTimeout)
		defer cancel()

		flow := &oauth.Flow{
			Port: config.GetInt("oauth.redirect_port"),
			Prompt: func(authURL string) {
				output.PrintInfo("Open this URL in your browser to continue with Google:")
				fmt.Fprintln(output.Stdout, authURL)
				formatter.Faint.Fprintln(output.Stdout, "Waiting for the redirect...")
			},
		}

		authSvc := service.NewAuthService(deps)
		res, err := authSvc.LoginWithGoogle(ctx, flow)
		if err != nil {
			return err
		}
		if res.MFARequired {
			if res, err = completeMFA(ctx, authSvc, res.UserID); err != nil {
				return err
			}
		}
		output.PrintSuccess("Signed in as %s", formatter.Handle(res.User.Username, res.User.UserID))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewAuthService(deps).Logout(cmd.Context()); err != nil {
			return err
		}
		output.PrintSuccess("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in user",
	Annotations: routed("/profile"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("account", "instaintelli auth whoami", "")
		return output.Load(v,
			func() (*api.Profile, error) { return service.NewAuthService(deps).Me(cmd.Context()) },
			nil,
			func(p *api.Profile) error { return printProfile(p, true, false) })
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(googleLoginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
}
