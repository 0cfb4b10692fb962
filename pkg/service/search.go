package service

import (
	"context"
	"strings"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
)

const defaultSearchResults = 10

type SearchService struct {
	deps Deps
}

func NewSearchService(d Deps) *SearchService {
	return &SearchService{deps: d}
}

// Semantic ranks posts by meaning. n <= 0 uses the default result count.
func (s *SearchService) Semantic(ctx context.Context, query string, n int) (*api.SemanticSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ValidationError("query", "cannot be empty")
	}
	if n <= 0 {
		n = defaultSearchResults
	}
	resp, err := api.SemanticSearch(ctx, api.SemanticSearchRequest{
		Query:    query,
		UserID:   s.deps.Store.User().UserID,
		NResults: n,
		UseCache: true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, backendError(resp.Error)
	}
	return resp, nil
}

// Chat asks a question answered from the user's own posts. conversationID
// threads follow-up questions together.
func (s *SearchService) Chat(ctx context.Context, question, conversationID string) (*api.ChatResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.ValidationError("question", "cannot be empty")
	}
	resp, err := api.Chat(ctx, api.ChatRequest{
		Question:       question,
		UserID:         s.deps.Store.User().UserID,
		ConversationID: conversationID,
		NContextPosts:  5,
		UseCache:       true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, backendError(resp.Error)
	}
	return resp, nil
}

func (s *SearchService) Similar(ctx context.Context, postID string, n int) (*api.SimilarPostsResponse, error) {
	if n <= 0 {
		n = 5
	}
	resp, err := api.SimilarPosts(ctx, postID, n)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, backendError(resp.Error)
	}
	return resp, nil
}

// backendError wraps an error the backend reported inside a 200 body.
func backendError(msg string) error {
	return errors.NewCLIError(errors.ErrorTypeServer, msg, nil)
}
