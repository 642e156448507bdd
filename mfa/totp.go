package mfa

import (
	"bytes"
	"encoding/base32"
	"errors"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const secretBytes = 20 // 160 bits of entropy

// Config controls code parameters and QR rendering.
type Config struct {
	Issuer string
	Digits int
	Period int
	Skew   int
	QRSize int
}

// TOTP generates per-account secrets, renders provisioning QR images, and
// validates submitted codes within a bounded clock-skew window.
//
// No replay window is tracked: a code that matched once keeps matching for the
// rest of its window. That mirrors the deployed behavior and is a documented
// limitation, not an oversight.
type TOTP struct {
	config Config
}

func New(cfg Config) (*TOTP, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer required")
	}
	if cfg.Digits != 6 && cfg.Digits != 8 {
		return nil, errors.New("digits must be 6 or 8")
	}
	if cfg.Period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if cfg.Skew < 0 {
		return nil, errors.New("skew must be >= 0")
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	return &TOTP{config: cfg}, nil
}

// GenerateSecret returns a fresh base32-encoded secret for account.
func (m *TOTP) GenerateSecret(account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.config.Issuer,
		AccountName: account,
		SecretSize:  secretBytes,
		Period:      uint(m.config.Period),
		Digits:      m.digits(),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// QRCode renders the otpauth:// provisioning URI for an already-assigned
// secret as a PNG buffer. The image is never persisted.
func (m *TOTP) QRCode(secret, account string) ([]byte, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.config.Issuer,
		AccountName: account,
		Secret:      raw,
		Period:      uint(m.config.Period),
		Digits:      m.digits(),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	img, err := key.Image(m.config.QRSize, m.config.QRSize)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValidateAt checks code against secret at the given instant, accepting the
// current time step and Skew adjacent steps in each direction. Comparison
// inside the library is constant-time. Malformed input counts as a mismatch.
func (m *TOTP) ValidateAt(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, at, totp.ValidateOpts{
		Period:    uint(m.config.Period),
		Skew:      uint(m.config.Skew),
		Digits:    m.digits(),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

func (m *TOTP) digits() otp.Digits {
	if m.config.Digits == 8 {
		return otp.DigitsEight
	}
	return otp.DigitsSix
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimSpace(secret))
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return nil, errors.New("invalid base32 secret")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty secret")
	}
	return raw, nil
}
