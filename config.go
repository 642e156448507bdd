package clutchcall

import (
	"errors"
	"time"
)

// Config carries every tunable of the session gateway. Instances are cloned by
// the Builder and treated as immutable after Build.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	TOTP     TOTPConfig
	Store    StoreConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls bearer-token issuance. Secret must be injected by the
// operator; there is no built-in default and Build rejects short keys.
type TokenConfig struct {
	Secret       []byte
	Issuer       string
	TemporaryTTL time.Duration
	AccessTTL    time.Duration
	Leeway       time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id parameters plus the registration length
// policy. MinLength is a product rule enforced by Register, not by the hasher.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig controls one-time-code provisioning and validation.
type TOTPConfig struct {
	Issuer string
	Digits int
	Period int
	Skew   int
	QRSize int
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls the redis credential store.
type StoreConfig struct {
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the counter set.
type MetricsConfig struct {
	Enabled bool
}

const minTokenSecretBytes = 32

// DefaultConfig returns the production defaults. The token secret is left
// empty and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:       "ClutchCall",
			TemporaryTTL: 5 * time.Minute,
			AccessTTL:    60 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		TOTP: TOTPConfig{
			Issuer: "ClutchCall",
			Digits: 6,
			Period: 30,
			Skew:   1,
			QRSize: 256,
		},
		Store: StoreConfig{
			RedisPrefix: "usr",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = append([]byte(nil), cfg.Token.Secret...)
	return out
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.Secret) < minTokenSecretBytes {
		return errors.New("token secret must be at least 32 bytes")
	}
	if cfg.Token.TemporaryTTL <= 0 || cfg.Token.AccessTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if cfg.Token.Leeway < 0 || cfg.Token.Leeway > 2*time.Minute {
		return errors.New("invalid token leeway")
	}
	if cfg.Password.MinLength < 8 {
		return errors.New("password minimum length must be >= 8")
	}
	if cfg.TOTP.Issuer == "" {
		return errors.New("totp issuer must be set")
	}
	if cfg.TOTP.Digits != 6 && cfg.TOTP.Digits != 8 {
		return errors.New("totp digits must be 6 or 8")
	}
	if cfg.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if cfg.TOTP.Skew < 0 || cfg.TOTP.Skew > 2 {
		return errors.New("totp skew must be between 0 and 2")
	}
	if cfg.TOTP.QRSize < 64 {
		return errors.New("totp qr size must be >= 64")
	}
	return nil
}
