package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/output"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Stdout, "InstaIntelli CLI v%s (%s)\n", Version, client.UserAgent)
	},
}
