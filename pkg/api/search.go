package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// SemanticSearch ranks posts by meaning rather than keywords
func SemanticSearch(ctx context.Context, req SemanticSearchRequest) (*SemanticSearchResponse, error) {
	logger.Debug("Semantic search", "query", req.Query, "n_results", req.NResults)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(req).
		Post("/api/v1/search/semantic")

	var out SemanticSearchResponse
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks a question answered from the user's posts
func Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	logger.Debug("RAG chat", "user_id", req.UserID, "conversation_id", req.ConversationID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(req).
		Post("/api/v1/search/chat")

	var out ChatResponse
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimilarPosts finds posts close to postID in embedding space
func SimilarPosts(ctx context.Context, postID string, n int) (*SimilarPostsResponse, error) {
	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("n_results", strconv.Itoa(n)).
		Get(fmt.Sprintf("/api/v1/search/similar/%s", url.PathEscape(postID)))

	var out SimilarPostsResponse
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
