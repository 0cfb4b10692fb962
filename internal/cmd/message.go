package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Direct messaging commands",
	Long:  "Send and read direct messages with other users",
}

var messageSendCmd = &cobra.Command{
	Use:         "send <user-id> [text...]",
	Short:       "Send a direct message",
	Args:        cobra.MinimumNArgs(1),
	Annotations: routed("/messages/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		if text == "" {
			var err error
			if text, err = prompter.PromptString("Message: "); err != nil {
				return err
			}
		}
		if _, err := service.NewMessageService(deps).Send(cmd.Context(), args[0], text); err != nil {
			return err
		}
		output.PrintSuccess("Sent")
		return nil
	},
}

var messageConversationsCmd = &cobra.Command{
	Use:         "conversations",
	Aliases:     []string{"inbox"},
	Short:       "List your conversations",
	Annotations: routed("/messages"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("conversations", "instaintelli message conversations", "No conversations yet.")
		return output.Load(v,
			func() ([]api.Conversation, error) {
				return service.NewMessageService(deps).Conversations(cmd.Context())
			},
			func(cs []api.Conversation) bool { return len(cs) == 0 },
			func(cs []api.Conversation) error {
				now := time.Now()
				rows := make([][]string, 0, len(cs))
				for _, c := range cs {
					marker := " "
					if !c.Read {
						marker = "•"
					}
					rows = append(rows, []string{
						marker,
						formatter.Handle(c.Username, c.UserID),
						formatter.Truncate(c.LastMessageText, captionWidth),
						formatter.Ago(c.LastMessageAt, now),
						c.UserID,
					})
				}
				return output.PrintList("Conversations", []string{"", "With", "Last message", "When", "User ID"}, rows, cs)
			})
	},
}

var messageThreadCmd = &cobra.Command{
	Use:         "thread <user-id>",
	Short:       "Show the conversation with a user",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/messages/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgSvc := service.NewMessageService(deps)
		v := output.NewView("messages", "instaintelli message thread "+args[0], "No messages yet. Say hi with: instaintelli message send "+args[0])
		err := output.Load(v,
			func() ([]api.Message, error) { return msgSvc.Thread(cmd.Context(), args[0]) },
			func(ms []api.Message) bool { return len(ms) == 0 },
			func(ms []api.Message) error {
				if output.GetOutputFormat() == output.FormatJSON {
					return output.Print("", ms)
				}
				printThread(ms, store.User().UserID)
				return nil
			})
		if err == nil {
			_ = msgSvc.MarkRead(cmd.Context(), args[0])
		}
		return err
	},
}

var messageWatchCmd = &cobra.Command{
	Use:         "watch <user-id>",
	Short:       "Follow a conversation live",
	Long:        "Poll the conversation and your unread count until interrupted with Ctrl-C.",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/messages/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		selfID := store.User().UserID
		seen := 0
		output.PrintInfo("Watching conversation with %s (Ctrl-C to stop)", args[0])

		return service.NewMessageService(deps).Watch(cmd.Context(), args[0],
			func(ms []api.Message) {
				if seen > len(ms) {
					seen = 0
				}
				printThread(ms[seen:], selfID)
				seen = len(ms)
			},
			func(n int) {
				if n > 0 {
					formatter.Warning.Fprintf(output.Stderr, "%d unread\n", n)
				}
			})
	},
}

var messageReadCmd = &cobra.Command{
	Use:         "read <user-id>",
	Short:       "Mark a conversation as read",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/messages/"),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewMessageService(deps).MarkRead(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.PrintSuccess("Marked as read")
		return nil
	},
}

var messageUnreadCmd = &cobra.Command{
	Use:         "unread",
	Short:       "Show your unread message count",
	Annotations: routed("/messages"),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := service.NewMessageService(deps).UnreadCount(cmd.Context())
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", map[string]int{"unread_count": n})
		}
		fmt.Fprintf(output.Stdout, "%d unread\n", n)
		return nil
	},
}

func init() {
	messageCmd.AddCommand(messageSendCmd)
	messageCmd.AddCommand(messageConversationsCmd)
	messageCmd.AddCommand(messageThreadCmd)
	messageCmd.AddCommand(messageWatchCmd)
	messageCmd.AddCommand(messageReadCmd)
	messageCmd.AddCommand(messageUnreadCmd)
}
