package api

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// GetMyProfile fetches the signed-in user's profile
func GetMyProfile(ctx context.Context) (*Profile, error) {
	logger.Debug("Fetching own profile")

	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/profile/me")

	var profile Profile
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches a public profile
func GetProfile(ctx context.Context, userID string) (*Profile, error) {
	logger.Debug("Fetching profile", "user_id", userID)

	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/profile/%s", url.PathEscape(userID)))

	var profile Profile
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByUsername resolves a handle to a profile
func GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	logger.Debug("Fetching profile by username", "username", username)

	resp, err := client.GetClient().
		R(ctx).
		Get(fmt.Sprintf("/api/v1/users/username/%s", url.PathEscape(username)))

	var profile Profile
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMyProfile sends only the changed fields
func UpdateMyProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	logger.Debug("Updating profile")

	resp, err := client.GetClient().
		R(ctx).
		SetBody(req).
		Put("/api/v1/profile/me")

	var profile Profile
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadProfilePicture replaces the avatar
func UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (*Profile, error) {
	logger.Debug("Uploading profile picture", "file", filename)

	resp, err := client.GetClient().
		R(ctx).
		SetFileReader("file", filename, r).
		Post("/api/v1/profile/me/picture")

	var profile Profile
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword requires the current password
func ChangePassword(ctx context.Context, current, next string) error {
	logger.Debug("Changing password")

	resp, err := client.GetClient().
		R(ctx).
		SetBody(ChangePasswordRequest{CurrentPassword: current, NewPassword: next}).
		Post("/api/v1/profile/me/password")
	return CheckResponse(resp, err)
}
