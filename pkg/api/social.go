package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// FollowUser follows a user
func FollowUser(ctx context.Context, userID string) error {
	logger.Debug("Following user", "user_id", userID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"user_id": userID}).
		Post("/api/v1/follow")
	return CheckResponse(resp, err)
}

// UnfollowUser unfollows a user
func UnfollowUser(ctx context.Context, userID string) error {
	logger.Debug("Unfollowing user", "user_id", userID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"user_id": userID}).
		Post("/api/v1/unfollow")
	return CheckResponse(resp, err)
}

// GetFollowers lists who follows userID
func GetFollowers(ctx context.Context, userID string) ([]UserRef, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/followers/%s", url.PathEscape(userID)))

	var out struct {
		Followers []UserRef `json:"followers"`
	}
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return out.Followers, nil
}

// GetFollowing lists who userID follows
func GetFollowing(ctx context.Context, userID string) ([]UserRef, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/following/%s", url.PathEscape(userID)))

	var out struct {
		Following []UserRef `json:"following"`
	}
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return out.Following, nil
}

// GetFollowStatus reports whether the caller follows userID
func GetFollowStatus(ctx context.Context, userID string) (bool, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/follow-status/%s", url.PathEscape(userID)))

	var out struct {
		IsFollowing bool `json:"is_following"`
	}
	if err := decode(resp, err, &out); err != nil {
		return false, err
	}
	return out.IsFollowing, nil
}

// GetFollowStats returns authoritative follower counts
func GetFollowStats(ctx context.Context, userID string) (*FollowStats, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/stats/%s", url.PathEscape(userID)))

	var stats FollowStats
	if err := decode(resp, err, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LikePost likes a post
func LikePost(ctx context.Context, postID string) error {
	logger.Debug("Liking post", "post_id", postID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"post_id": postID}).
		Post("/api/v1/like")
	return CheckResponse(resp, err)
}

// UnlikePost removes a like
func UnlikePost(ctx context.Context, postID string) error {
	logger.Debug("Unliking post", "post_id", postID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"post_id": postID}).
		Post("/api/v1/unlike")
	return CheckResponse(resp, err)
}

// GetLikeStatus reports whether the caller liked postID
func GetLikeStatus(ctx context.Context, postID string) (bool, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/like-status/%s", url.PathEscape(postID)))

	var out struct {
		Liked bool `json:"liked"`
	}
	if err := decode(resp, err, &out); err != nil {
		return false, err
	}
	return out.Liked, nil
}

// GetLikes lists likers and the like count
func GetLikes(ctx context.Context, postID string) (*Likes, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/likes/%s", url.PathEscape(postID)))

	var likes Likes
	if err := decode(resp, err, &likes); err != nil {
		return nil, err
	}
	return &likes, nil
}

// CreateComment comments on a post, or replies when parentID is set
func CreateComment(ctx context.Context, postID, text, parentID string) (string, error) {
	logger.Debug("Creating comment", "post_id", postID, "parent", parentID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(CreateCommentRequest{PostID: postID, Text: text, ParentCommentID: parentID}).
		Post("/api/v1/comment")

	var out struct {
		CommentID string `json:"comment_id"`
	}
	if err := decode(resp, err, &out); err != nil {
		return "", err
	}
	return out.CommentID, nil
}

// DeleteComment removes one of the caller's comments
func DeleteComment(ctx context.Context, commentID string) error {
	resp, err := client.GetClient().
		R(ctx).
		Delete(fmt.Sprintf("/api/v1/comment/%s", url.PathEscape(commentID)))
	return CheckResponse(resp, err)
}

// GetComments returns top-level comments with their replies
func GetComments(ctx context.Context, postID string) (*CommentList, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/comments/%s", url.PathEscape(postID)))

	var out CommentList
	if err := decode(resp, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
