package service

import (
	"context"

	"github.com/instaintelli/cli/pkg/api"
	"github.com/instaintelli/cli/pkg/logger"
	"github.com/instaintelli/cli/pkg/mfa"
	"github.com/instaintelli/cli/pkg/session"
)

// MFAEnrollment is the result of starting two-factor setup.
type MFAEnrollment struct {
	Secret        string
	RecoveryCodes []string
	QRPath        string // empty when no path was requested
	OTPAuthURL    string
}

type MFAService struct {
	deps Deps
}

func NewMFAService(d Deps) *MFAService {
	return &MFAService{deps: d}
}

// Setup starts enrollment. When qrPath is non-empty the QR code is written
// there so it can be scanned from an image viewer.
func (s *MFAService) Setup(ctx context.Context, qrPath string) (*MFAEnrollment, error) {
	resp, err := api.SetupMFA(ctx)
	if err != nil {
		return nil, err
	}

	out := &MFAEnrollment{Secret: resp.Secret, RecoveryCodes: resp.RecoveryCodes}

	account := s.deps.Store.User().Email
	if account == "" {
		account = s.deps.Store.User().Username
	}
	key, err := mfa.KeyFor(resp.Secret, account)
	if err != nil {
		logger.Warn("Could not build otpauth key", "error", err)
	} else {
		out.OTPAuthURL = key.URL()
	}

	if qrPath != "" {
		if err := mfa.WriteQR(qrPath, resp.QRCode, key); err != nil {
			return out, err
		}
		out.QRPath = qrPath
	}
	return out, nil
}

// Enable confirms enrollment with a code from the authenticator app.
func (s *MFAService) Enable(ctx context.Context, code string) error {
	code = mfa.FormatCode(code)
	if err := mfa.Validate(code); err != nil {
		return err
	}
	if err := api.EnableMFA(ctx, code); err != nil {
		return err
	}
	return s.setEnabled(true)
}

// Disable turns two-factor off; a recovery code is accepted.
func (s *MFAService) Disable(ctx context.Context, code string) error {
	code = mfa.Normalize(code)
	if err := mfa.Validate(code); err != nil {
		return err
	}
	if err := api.DisableMFA(ctx, code); err != nil {
		return err
	}
	return s.setEnabled(false)
}

func (s *MFAService) Status(ctx context.Context) (*api.MFAStatus, error) {
	st, err := api.GetMFAStatus(ctx)
	if err != nil {
		return nil, err
	}
	if s.deps.Store.User().MFAEnabled != st.MFAEnabled {
		_ = s.setEnabled(st.MFAEnabled)
	}
	return st, nil
}

// RegenerateRecoveryCodes invalidates the old codes and returns new ones.
func (s *MFAService) RegenerateRecoveryCodes(ctx context.Context, code string) ([]string, error) {
	code = mfa.FormatCode(code)
	if err := mfa.Validate(code); err != nil {
		return nil, err
	}
	resp, err := api.RegenerateRecoveryCodes(ctx, code)
	if err != nil {
		return nil, err
	}
	return resp.RecoveryCodes, nil
}

func (s *MFAService) setEnabled(on bool) error {
	if !s.deps.Store.IsAuthenticated() {
		return nil
	}
	return s.deps.Store.UpdateUser(func(u *session.UserSummary) { u.MFAEnabled = on })
}
