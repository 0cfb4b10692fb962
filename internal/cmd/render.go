package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
)

const captionWidth = 48

var postColumns = []string{"ID", "Author", "Caption", "Likes", "Comments", "Posted"}

func postRows(posts []api.Post) [][]string {
	now := time.Now()
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{
			p.PostID,
			formatter.Handle(p.Username, p.UserID),
			formatter.Truncate(p.Text, captionWidth),
			"♥ " + formatter.Count(p.LikeCount),
			formatter.Count(p.CommentCount),
			formatter.Ago(p.CreatedAt, now),
		})
	}
	return rows
}

func printPosts(title string, posts []api.Post, raw interface{}) error {
	return output.PrintList(title, postColumns, postRows(posts), raw)
}

func userRows(users []api.UserRef) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{formatter.Handle(u.Username, u.UserID), u.UserID})
	}
	return rows
}

func printHits(title string, hits []api.SearchHit, raw interface{}) error {
	rows := make([][]string, 0, len(hits))
	for i, h := range hits {
		score := ""
		switch {
		case h.SimilarityScore != nil:
			score = fmt.Sprintf("%.0f%%", *h.SimilarityScore*100)
		case h.RelevanceScore != nil:
			score = fmt.Sprintf("%.0f%%", *h.RelevanceScore*100)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			h.PostID,
			formatter.Truncate(h.Caption(), captionWidth),
			score,
		})
	}
	return output.PrintList(title, []string{"#", "Post", "Caption", "Match"}, rows, raw)
}

// commentLines flattens a comment tree, indenting replies.
func commentLines(comments []api.Comment, depth int, now time.Time) [][]string {
	var rows [][]string
	for _, c := range comments {
		indent := strings.Repeat("  ", depth)
		rows = append(rows, []string{
			indent + formatter.Handle(c.Username, c.UserID),
			c.Text,
			formatter.Faint.Sprint(formatter.Ago(c.CreatedAt, now)),
			c.CommentID,
		})
		rows = append(rows, commentLines(c.Replies, depth+1, now)...)
	}
	return rows
}

func printThread(messages []api.Message, selfID string) {
	now := time.Now()
	for _, m := range messages {
		who := formatter.Handle(m.SenderUsername, m.SenderID)
		if m.SenderID == selfID {
			who = "you"
			formatter.Info.Fprintf(output.Stdout, "%s: ", who)
		} else {
			formatter.Bold.Fprintf(output.Stdout, "%s: ", who)
		}
		fmt.Fprintf(output.Stdout, "%s  %s\n", m.Text, formatter.Faint.Sprint(formatter.Ago(m.CreatedAt, now)))
	}
}
