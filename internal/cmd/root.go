package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/config"
	clierrors "github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/service"
	"github.com/instaintelli/cli/pkg/session"
)

const routeAnnotation = "route"

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var (
	store  session.Store
	nav    = &terminalNav{}
	deps   service.Deps
	router = guard.DefaultRouter()

	// pending renders bus updates made by the running command.
	pending *changes

	// errGuarded stops a command the guard refused; the reason was already printed.
	errGuarded = errors.New("navigation refused")
	// errRedirected ends a command that was replaced by another view.
	errRedirected = errors.New("redirected")
)

var rootCmd = &cobra.Command{
	Use:   "instaintelli",
	Short: "InstaIntelli CLI - AI-powered photo sharing from the terminal",
	Long: `InstaIntelli CLI is a terminal client for the InstaIntelli platform.
Share photos, follow people, chat, and search your posts by meaning
directly from the terminal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}

		fs, err := session.Open(config.GetSessionPath())
		if err != nil {
			return fmt.Errorf("opening session: %w", err)
		}
		store = fs
		client.Init(store, nav)
		deps = service.NewDeps(store, nav)
		pending.Close()
		pending = watchChanges(deps.Bus)

		return admit(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		pending.Flush()
		return followNavigation(cmd)
	},
}

// admit runs the route guard for commands that carry a route annotation.
func admit(cmd *cobra.Command) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}
	d := router.Check(route, store.IsAuthenticated())
	if d.Allow {
		return nil
	}
	logger.Debug("Guard redirect", "route", route, "to", d.RedirectTo)
	nav.Navigate(d.RedirectTo, d.Replace)

	switch d.RedirectTo {
	case guard.FeedPath:
		output.PrintInfo("Already signed in as %s.", store.User().Username)
		if err := followNavigation(cmd); err != nil {
			return err
		}
		return errRedirected
	default:
		output.PrintWarning("You need to sign in first: instaintelli auth login")
		return errGuarded
	}
}

// followNavigation shows the view a service navigated to while the
// command ran.
func followNavigation(cmd *cobra.Command) error {
	switch nav.Take() {
	case guard.FeedPath:
		if cmd == feedCmd || output.GetOutputFormat() == output.FormatJSON {
			return nil
		}
		return showFeed(cmd.Context(), service.DefaultFeedLimit, 0)
	case guard.LoginPath:
		output.PrintWarning("Your session has ended. Sign in again with: instaintelli auth login")
	}
	return nil
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while rendering", "panic", r, "stack", string(debug.Stack()))
			output.PrintError("Something went wrong while rendering this view: %v", r)
			fmt.Fprintln(output.Stderr, "Recover with: instaintelli feed")
			code = 2
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	pending.Close()
	if nav.Peek() == guard.LoginPath {
		_ = followNavigation(rootCmd)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var reported *output.ReportedError
	switch {
	case err == nil, errors.Is(err, errRedirected):
		return 0
	case errors.Is(err, errGuarded), errors.As(err, &reported), errors.Is(err, service.ErrSessionEnded):
		return 1
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprint(output.Stderr, clierrors.FormatError(err))
	return 1
}

// routed annotates a command with the route the guard checks.
func routed(path string) map[string]string {
	return map[string]string{routeAnnotation: path}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/instaintelli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
