package api

import (
	"context"

	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// Login authenticates user with email and password. The response either
// carries a session or an MFA challenge.
func Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	logger.Debug("Attempting login", "email", email)

	reqBody, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := client.GetClient().
		R(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post("/api/v1/auth/login")

	var loginResp AuthResponse
	if err := decode(resp, err, &loginResp); err != nil {
		return nil, err
	}

	if loginResp.MFARequired {
		logger.Debug("Login requires MFA", "user_id", loginResp.UserID)
	} else {
		logger.Debug("Login successful", "username", loginResp.User.Username)
	}
	return &loginResp, nil
}

// Register creates an account and returns its session
func Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	logger.Debug("Registering user", "email", req.Email, "username", req.Username)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(req).
		Post("/api/v1/auth/register")

	var regResp AuthResponse
	if err := decode(resp, err, &regResp); err != nil {
		return nil, err
	}
	return &regResp, nil
}

// VerifyMFALogin completes an MFA challenge with a TOTP or recovery code
func VerifyMFALogin(ctx context.Context, userID, code string) (*AuthResponse, error) {
	logger.Debug("Verifying MFA login", "user_id", userID)

	resp, err := client.GetClient().
		R(ctx).
		SetBody(MFAVerifyLoginRequest{UserID: userID, Code: code}).
		Post("/api/v1/auth/mfa/verify")

	var authResp AuthResponse
	if err := decode(resp, err, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// GetCurrentUser gets the current authenticated user
func GetCurrentUser(ctx context.Context) (*Profile, error) {
	logger.Debug("Fetching current user")

	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/auth/me")

	var user Profile
	if err := decode(resp, err, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the backend the session is over. The backend is stateless
// about tokens, so callers clear the local session regardless of the result.
func Logout(ctx context.Context) error {
	logger.Debug("Logging out")

	resp, err := client.GetClient().
		R(ctx).
		Post("/api/v1/auth/logout")
	return CheckResponse(resp, err)
}

// GetGoogleOAuthURL asks the backend for the provider consent URL
func GetGoogleOAuthURL(ctx context.Context, redirectTo string) (string, error) {
	logger.Debug("Fetching OAuth URL", "redirect_to", redirectTo)

	resp, err := client.GetClient().
		R(ctx).
		SetQueryParam("redirect_to", redirectTo).
		Get("/api/v1/auth/oauth/google/url")

	var out struct {
		URL string `json:"url"`
	}
	if err := decode(resp, err, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CompleteGoogleOAuth exchanges the provider code for a session
func CompleteGoogleOAuth(ctx context.Context, code, redirectTo string) (*AuthResponse, error) {
	logger.Debug("Completing OAuth login")

	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"code": code, "redirect_to": redirectTo}).
		Post("/api/v1/auth/oauth/google/callback")

	var authResp AuthResponse
	if err := decode(resp, err, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}
