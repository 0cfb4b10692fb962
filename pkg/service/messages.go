package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/config"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/poller"
	"github.com/instaintelli/cli/pkg/session"
)

const (
	defaultThreadInterval = 3 * time.Second
	defaultUnreadInterval = 10 * time.Second
)

type MessageService struct {
	deps Deps
}

func NewMessageService(d Deps) *MessageService {
	return &MessageService{deps: d}
}

// Send delivers a direct message and returns its id.
func (s *MessageService) Send(ctx context.Context, recipientID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.ValidationError("message", "cannot be empty")
	}
	if recipientID == "" {
		return "", errors.ValidationError("recipient", "cannot be empty")
	}
	return api.SendMessage(ctx, recipientID, text)
}

func (s *MessageService) Conversations(ctx context.Context) ([]api.Conversation, error) {
	return api.GetConversations(ctx)
}

// Thread returns the messages exchanged with otherID, oldest first.
func (s *MessageService) Thread(ctx context.Context, otherID string) ([]api.Message, error) {
	return api.GetMessages(ctx, otherID)
}

func (s *MessageService) MarkRead(ctx context.Context, otherID string) error {
	return api.MarkMessagesRead(ctx, otherID)
}

func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	return api.GetUnreadCount(ctx)
}

// Watch polls the thread with otherID and the unread badge until ctx is
// done or the session is cleared. Callbacks run only when the polled data
// changed. Both pollers are stopped before Watch returns; a cleared
// session is reported as ErrSessionEnded.
func (s *MessageService) Watch(ctx context.Context, otherID string, onThread func([]api.Message), onUnread func(int)) error {
	if !s.deps.Store.IsAuthenticated() {
		return ErrSessionEnded
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ended atomic.Bool
	unsubscribe := s.deps.Store.Subscribe(func(sess session.Session) {
		if !sess.Authenticated() {
			ended.Store(true)
			cancel()
		}
	})
	defer unsubscribe()

	threadEvery := durationOr("poll.messages_interval", defaultThreadInterval)
	unreadEvery := durationOr("poll.unread_interval", defaultUnreadInterval)
	if onThread == nil {
		onThread = func([]api.Message) {}
	}
	if onUnread == nil {
		onUnread = func(int) {}
	}

	thread := poller.New(threadEvery,
		func(ctx context.Context) ([]api.Message, error) {
			msgs, err := s.Thread(ctx, otherID)
			if err != nil {
				return nil, err
			}
			if err := s.MarkRead(ctx, otherID); err != nil {
				logger.Debug("Mark read failed", "user_id", otherID, "error", err)
			}
			return msgs, nil
		},
		onThread,
		poller.WithName[[]api.Message]("thread"),
		poller.WithEqual(sameThread),
	)
	unread := poller.New(unreadEvery, s.UnreadCount, onUnread, poller.WithName[int]("unread"))

	thread.Start(ctx)
	unread.Start(ctx)
	logger.Debug("Watching conversation", "user_id", otherID, "thread_every", threadEvery, "unread_every", unreadEvery)

	<-ctx.Done()
	thread.Stop()
	unread.Stop()
	if ended.Load() {
		logger.Info("Stopped watching conversation, session ended", "user_id", otherID)
		return ErrSessionEnded
	}
	return nil
}

// sameThread compares threads by message id and read flag; text never
// changes after send.
func sameThread(a, b []api.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].MessageID != b[i].MessageID || a[i].Read != b[i].Read {
			return false
		}
	}
	return true
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d := config.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
