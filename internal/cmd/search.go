package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

var (
	searchLimit  int
	similarLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "AI search commands",
	Long:  "Search posts by meaning and ask questions about your own posts",
}

var searchSemanticCmd = &cobra.Command{
	Use:         "semantic <query...>",
	Aliases:     []string{"posts"},
	Short:       "Find posts by meaning rather than keywords",
	Args:        cobra.MinimumNArgs(1),
	Annotations: routed("/search"),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		v := output.NewView("search results", fmt.Sprintf("instaintelli search semantic %q", query), "No matching posts.")
		return output.Load(v,
			func() (*api.SemanticSearchResponse, error) {
				return service.NewSearchService(deps).Semantic(cmd.Context(), query, searchLimit)
			},
			func(r *api.SemanticSearchResponse) bool { return len(r.Results) == 0 },
			func(r *api.SemanticSearchResponse) error {
				return printHits(fmt.Sprintf("Results for %q", query), r.Results, r)
			})
	},
}

var searchChatCmd = &cobra.Command{
	Use:         "chat [question...]",
	Short:       "Ask questions answered from your posts",
	Long:        "Ask a single question, or start an interactive chat when no question is given. An empty line ends the chat.",
	Annotations: routed("/chat"),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchSvc := service.NewSearchService(deps)
		conversationID := uuid.NewString()

		ask := func(q string) error {
			v := output.NewView("answer", "instaintelli search chat", "")
			return output.Load(v,
				func() (*api.ChatResponse, error) { return searchSvc.Chat(cmd.Context(), q, conversationID) },
				nil,
				func(r *api.ChatResponse) error {
					if output.GetOutputFormat() == output.FormatJSON {
						return output.Print("", r)
					}
					fmt.Fprintln(output.Stdout, r.Answer)
					if len(r.ReferencedPosts) > 0 {
						ids := make([]string, 0, len(r.ReferencedPosts))
						for _, p := range r.ReferencedPosts {
							ids = append(ids, p.PostID)
						}
						formatter.Faint.Fprintf(output.Stdout, "Based on: %s\n", strings.Join(ids, ", "))
					}
					return nil
				})
		}

		if len(args) > 0 {
			return ask(strings.Join(args, " "))
		}
		for {
			q, err := prompter.PromptString("you> ")
			if err != nil || q == "" {
				return nil
			}
			// a failed answer was already shown; keep the chat open
			_ = ask(q)
		}
	},
}

var searchSimilarCmd = &cobra.Command{
	Use:         "similar <post-id>",
	Short:       "Find posts similar to a post",
	Args:        cobra.ExactArgs(1),
	Annotations: routed("/explore"),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := output.NewView("similar posts", "instaintelli search similar "+args[0], "No similar posts found.")
		return output.Load(v,
			func() (*api.SimilarPostsResponse, error) {
				return service.NewSearchService(deps).Similar(cmd.Context(), args[0], similarLimit)
			},
			func(r *api.SimilarPostsResponse) bool { return len(r.SimilarPosts) == 0 },
			func(r *api.SimilarPostsResponse) error { return printHits("Similar posts", r.SimilarPosts, r) })
	},
}

func init() {
	searchCmd.AddCommand(searchSemanticCmd)
	searchCmd.AddCommand(searchChatCmd)
	searchCmd.AddCommand(searchSimilarCmd)

	searchSemanticCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum results")
	searchSimilarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 5, "Maximum results")
}
