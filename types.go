package clutchcall

import (
	"context"
	"time"
)

// User is a credential record keyed by normalized email. MFASecret is empty
// until MFA has been provisioned and is immutable afterwards.
type User struct {
	Email        string
	PasswordHash string
	MFASecret    string
}

// LoginResult is returned by a successful Login.
//
// MFAConfigured only reports whether the account already holds a TOTP secret.
// Both branches issue the same temporary token; the flag tells the client
// whether to present setup or code entry next. MFA is effectively mandatory
// either way (observed product behavior, kept intentionally).
type LoginResult struct {
	TempToken     string
	MFAConfigured bool
}

// CredentialStore is the durable map from normalized email to credential
// record. Register must be atomic (no check-then-insert) and SetMFASecret must
// be a single compare-and-set that writes only if no secret exists yet.
type CredentialStore interface {
	Register(ctx context.Context, email, passwordHash string) error
	Lookup(ctx context.Context, email string) (*User, error)
	SetMFASecret(ctx context.Context, email, secret string) error
}

// Hasher is the password hashing capability. Hash embeds its salt and cost in
// the returned string; Verify must be constant-time with respect to the
// secret material.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Authenticator is the one-time-code capability. GenerateSecret returns a
// fresh base32 secret for the account, QRCode renders the provisioning URI for
// an already-assigned secret, and ValidateAt checks a submitted code at a
// fixed instant.
type Authenticator interface {
	GenerateSecret(account string) (string, error)
	QRCode(secret, account string) ([]byte, error)
	ValidateAt(secret, code string, at time.Time) bool
}
