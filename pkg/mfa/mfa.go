// Package mfa holds the client side of TOTP: code input masking,
// recovery code detection and exporting the enrollment QR code.
package mfa

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/instaintelli/cli/pkg/errors"
	"github.com/pquerna/otp"
)

const (
	// Issuer is the name authenticator apps show next to the code.
	Issuer = "InstaIntelli"

	// CodeLength is the number of digits in a TOTP code.
	CodeLength = 6

	qrSize        = 256
	pngDataPrefix = "data:image/png;base64,"
)

// FormatCode keeps only digits and caps the result at six, mirroring an
// input mask on the code field.
func FormatCode(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == CodeLength {
				break
			}
		}
	}
	return b.String()
}

// IsRecoveryCode reports whether input looks like a recovery code
// (XXXX-XXXX) rather than a TOTP code.
func IsRecoveryCode(input string) bool {
	return strings.Contains(input, "-")
}

// Normalize prepares user input for the verify endpoint. Recovery codes
// are upper-cased with whitespace removed, anything else is masked to
// digits.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if IsRecoveryCode(input) {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return unicode.ToUpper(r)
		}, input)
	}
	return FormatCode(input)
}

// Validate checks a normalized code before it is sent.
func Validate(code string) error {
	if IsRecoveryCode(code) {
		if len(strings.ReplaceAll(code, "-", "")) == 0 {
			return errors.MFAError("recovery code is empty")
		}
		return nil
	}
	if len(code) != CodeLength {
		return errors.MFAError(fmt.Sprintf("code must be %d digits", CodeLength))
	}
	return nil
}

// KeyFor rebuilds the provisioning key from the secret returned by setup.
func KeyFor(secret, account string) (*otp.Key, error) {
	if secret == "" {
		return nil, errors.MFAError("setup returned no secret")
	}
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", Issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + Issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return otp.NewKeyFromURL(u.String())
}

// DecodeQR extracts the PNG bytes from the data URL returned by setup.
func DecodeQR(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, pngDataPrefix) {
		return nil, fmt.Errorf("qr code is not a PNG data URL")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataPrefix))
}

// WriteQR writes the enrollment QR code to path. The backend image is
// used when it decodes; otherwise one is rendered from key.
func WriteQR(path, dataURL string, key *otp.Key) error {
	data, err := DecodeQR(dataURL)
	if err != nil || len(data) == 0 {
		if key == nil {
			return errors.MFAError("no QR code available")
		}
		img, err := key.Image(qrSize, qrSize)
		if err != nil {
			return fmt.Errorf("render qr code: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode qr code: %w", err)
		}
		data = buf.Bytes()
	}
	return os.WriteFile(path, data, 0o600)
}
