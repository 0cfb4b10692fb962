package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// UploadPost sends an image with an optional caption as multipart form data
func UploadPost(ctx context.Context, userID, text, filename string, image io.Reader) (*UploadPostResponse, error) {
	logger.Debug("Uploading post", "user_id", userID, "file", filename)

	form := map[string]string{"user_id": userID}
	if text != "" {
		form["text"] = text
	}

	resp, err := client.GetClient().
		R(ctx).
		SetFileReader("file", filename, image).
		SetMultipartFormData(form).
		Post("/api/v1/posts/upload")

	var out UploadPostResponse
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	logger.Debug("Post uploaded", "post_id", out.PostID)
	return &out, nil
}

// GetFeed returns the global feed, newest first
func GetFeed(ctx context.Context, limit, skip int) (*PostList, error) {
	logger.Debug("Fetching feed", "limit", limit, "skip", skip)

	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("skip", strconv.Itoa(skip)).
		Get("/api/v1/posts/feed")

	var out PostList
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserPosts lists posts by one user
func GetUserPosts(ctx context.Context, userID string, limit int) (*PostList, error) {
	logger.Debug("Fetching user posts", "user_id", userID, "limit", limit)

	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(fmt.Sprintf("/api/v1/posts/user/%s", url.PathEscape(userID)))

	var out PostList
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPost retrieves a post by ID
func GetPost(ctx context.Context, postID string) (*Post, error) {
	logger.Debug("Fetching post", "post_id", postID)

	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/posts/%s", url.PathEscape(postID)))

	var post Post
	if err := decode(resp, err, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes one of the caller's posts
func DeletePost(ctx context.Context, postID string) error {
	logger.Debug("Deleting post", "post_id", postID)

	resp, err := client.GetClient().
		R(ctx).
		Delete(fmt.Sprintf("/api/v1/posts/%s", url.PathEscape(postID)))
	return CheckResponse(resp, err)
}
