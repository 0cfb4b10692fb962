package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/config"
	"github.com/instaintelli/cli/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord("Configuration", map[string]interface{}{
			"api.base_url":            config.GetString("api.base_url"),
			"api.timeout":             fmt.Sprintf("%ds", config.GetInt("api.timeout")),
			"api.rate_limit":          config.GetFloat64("api.rate_limit"),
			"output.format":           config.GetString("output.format"),
			"poll.messages_interval":  config.GetDuration("poll.messages_interval").String(),
			"poll.unread_interval":    config.GetDuration("poll.unread_interval").String(),
			"social.reconcile_counts": config.GetBool("social.reconcile_counts"),
			"oauth.redirect_port":     config.GetInt("oauth.redirect_port"),
			"log.level":               config.GetString("log.level"),
			"log.file":                config.GetString("log.file"),
			"config file":             config.GetConfigFilePath(),
			"session file":            config.GetSessionPath(),
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Example: `  instaintelli config set api.base_url https://api.instaintelli.app
  instaintelli config set poll.messages_interval 5s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if isDurationKey(key) {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("%s must be a duration like 3s: %w", key, err)
			}
		}
		if err := config.SetString(key, value); err != nil {
			return fmt.Errorf("writing %s: %w", config.GetConfigFilePath(), err)
		}
		output.PrintSuccess("%s = %s", key, value)
		return nil
	},
}

func isDurationKey(key string) bool {
	return key == "poll.messages_interval" || key == "poll.unread_interval"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
