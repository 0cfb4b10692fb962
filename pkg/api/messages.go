package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// SendMessage sends a direct message and returns its id
func SendMessage(ctx context.Context, recipientID, text string) (string, error) {
	logger.Debug("Sending message", "recipient_id", recipientID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(SendMessageRequest{RecipientID: recipientID, Text: text}).
		Post("/api/v1/message")

	var out struct {
		MessageID string `json:"message_id"`
	}
	if err := decode(resp, err, &out); err != nil {
		return "", err
	}
	return out.MessageID, nil
}

// GetConversations lists conversations, most recent first
func GetConversations(ctx context.Context) ([]Conversation, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/conversations")

	var out struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// GetMessages returns the thread with another user, oldest first
func GetMessages(ctx context.Context, userID string) ([]Message, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/messages/%s", url.PathEscape(userID)))

	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// MarkMessagesRead marks everything from userID as read
func MarkMessagesRead(ctx context.Context, userID string) error {
	resp, err := client.GetClient().
		R(ctx).
		Post(fmt.Sprintf("/api/v1/messages/%s/read", url.PathEscape(userID)))
	return CheckResponse(resp, err)
}

func GetUnreadCount(ctx context.Context) (int, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/unread-count")

	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := decode(resp, err, &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}
