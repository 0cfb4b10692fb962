package service

import (
	"context"
	"strings"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/errors"
	"github.com/instaintelli/cli/pkg/guard"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/mfa"
	"github.com/instaintelli/cli/pkg/oauth"
	"github.com/instaintelli/cli/pkg/session"
)

// LoginResult is either a signed-in user or a pending MFA challenge.
type LoginResult struct {
	MFARequired bool
	UserID      string // set when MFARequired
	User        session.UserSummary
}

type AuthService struct {
	deps Deps
}

// NewAuthService creates a new auth service
func NewAuthService(d Deps) *AuthService {
	return &AuthService{deps: d}
}

// Login checks credentials. An MFA challenge leaves the session untouched;
// the caller must follow up with VerifyMFALogin.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.ValidationError("email", "cannot be empty")
	}
	if password == "" {
		return nil, errors.ValidationError("password", "cannot be empty")
	}

	resp, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if resp.MFARequired {
		logger.Info("MFA challenge issued", "user_id", resp.UserID)
		return &LoginResult{MFARequired: true, UserID: resp.UserID}, nil
	}

	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return &LoginResult{User: resp.User}, nil
}

// VerifyMFALogin completes a challenge with a TOTP or recovery code and
// only then writes the session.
func (s *AuthService) VerifyMFALogin(ctx context.Context, userID, code string) (*LoginResult, error) {
	if userID == "" {
		return nil, errors.MFAError("no pending MFA challenge, log in again")
	}
	code = mfa.Normalize(code)
	if err := mfa.Validate(code); err != nil {
		return nil, err
	}

	resp, err := api.VerifyMFALogin(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return &LoginResult{User: resp.User}, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req api.RegisterRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	switch {
	case req.Email == "":
		return nil, errors.ValidationError("email", "cannot be empty")
	case len(req.Username) < 3:
		return nil, errors.ValidationError("username", "must be at least 3 characters")
	case len(req.Password) < 6:
		return nil, errors.ValidationError("password", "must be at least 6 characters")
	}

	resp, err := api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return &LoginResult{User: resp.User}, nil
}

// LoginWithGoogle runs the OAuth handoff and signs in with its result.
func (s *AuthService) LoginWithGoogle(ctx context.Context, flow *oauth.Flow) (*LoginResult, error) {
	resp, err := flow.Run(ctx)
	if err != nil {
		return nil, err
	}
	if resp.MFARequired {
		return &LoginResult{MFARequired: true, UserID: resp.UserID}, nil
	}
	if err := s.establish(resp); err != nil {
		return nil, err
	}
	return &LoginResult{User: resp.User}, nil
}

// Logout clears the local session. The backend call is best effort.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.deps.Store.IsAuthenticated() {
		if err := api.Logout(ctx); err != nil {
			logger.Warn("Backend logout failed", "error", err)
		}
	}
	return s.deps.Store.Clear()
}

// Me fetches the current user and refreshes the cached copy.
func (s *AuthService) Me(ctx context.Context) (*api.Profile, error) {
	p, err := api.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Store.UpdateUser(func(u *session.UserSummary) { mergeProfile(u, p) }); err != nil {
		logger.Warn("Failed to cache current user", "error", err)
	}
	return p, nil
}

func (s *AuthService) establish(resp *api.AuthResponse) error {
	if resp.AccessToken == "" {
		return errors.AuthError("login response carried no token")
	}
	if err := s.deps.Store.Set(resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		return err
	}
	logger.Info("Signed in", "user_id", resp.User.UserID)
	s.deps.navigate(guard.FeedPath, true)
	return nil
}

// mergeProfile copies the server's profile into the cached user, leaving
// fields the endpoint did not send untouched.
func mergeProfile(u *session.UserSummary, p *api.Profile) {
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	u.FullName = p.FullName
	u.Bio = p.Bio
	u.ProfileImageURL = p.ProfileImageURL
	u.FollowersCount = p.FollowersCount
	u.FollowingCount = p.FollowingCount
	u.PostsCount = p.PostsCount
	u.MFAEnabled = p.MFAEnabled
}
