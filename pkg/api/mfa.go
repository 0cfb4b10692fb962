package api

import (
	"context"

	"github.com/instaintelli/cli/pkg/client"
	"github.com/instaintelli/cli/pkg/logger"
)

// SetupMFA starts TOTP enrollment and returns the secret, QR data URL and
// recovery codes. MFA is not active until EnableMFA succeeds.
func SetupMFA(ctx context.Context) (*MFASetupResponse, error) {
	logger.Debug("Starting MFA setup")

	resp, err := client.GetClient().
		R(ctx).
		Post("/api/v1/mfa/setup")

	var setup MFASetupResponse
	if err := decode(resp, err, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// EnableMFA confirms enrollment with a code from the authenticator app
func EnableMFA(ctx context.Context, code string) error {
	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"code": code}).
		Post("/api/v1/mfa/enable")
	return CheckResponse(resp, err)
}

// DisableMFA turns MFA off; code may be a TOTP or recovery code
func DisableMFA(ctx context.Context, code string) error {
	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"code": code}).
		Post("/api/v1/mfa/disable")
	return CheckResponse(resp, err)
}

func GetMFAStatus(ctx context.Context) (*MFAStatus, error) {
	resp, err := client.GetClient().
		R(ctx).
		Get("/api/v1/mfa/status")

	var status MFAStatus
	if err := decode(resp, err, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RegenerateRecoveryCodes replaces all recovery codes
func RegenerateRecoveryCodes(ctx context.Context, code string) (*RecoveryCodesResponse, error) {
	resp, err := client.GetClient().
		R(ctx).
		SetBody(map[string]string{"code": code}).
		Post("/api/v1/mfa/recovery-codes/regenerate")

	var codes RecoveryCodesResponse
	if err := decode(resp, err, &codes); err != nil {
		return nil, err
	}
	return &codes, nil
}
