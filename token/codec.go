package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind tags a token with the session stage it proves. The tag inside a
// verified token is authoritative: a temporary token is never accepted where
// an access token is required, and vice versa.
type Kind string

const (
	// KindTemporary marks the short-lived pending-MFA token minted by login.
	KindTemporary Kind = "temporary"
	// KindAccess marks the long-lived token minted by a successful MFA check.
	KindAccess Kind = "access"
)

var (
	// ErrMalformed is returned for tokens that do not parse as compact JWTs
	// or carry unexpected claims.
	ErrMalformed = errors.New("malformed token")
	// ErrSignature is returned when the signature does not verify.
	ErrSignature = errors.New("invalid token signature")
	// ErrExpired is returned when exp has passed at the verification instant.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is returned when a valid token carries the wrong kind tag.
	ErrWrongKind = errors.New("wrong token kind")
)

// Config holds the signing secret and per-kind lifetimes.
type Config struct {
	Secret       []byte
	Issuer       string
	TemporaryTTL time.Duration
	AccessTTL    time.Duration
	Leeway       time.Duration
}

// Claims is the signed payload. MFAPending is set only on temporary tokens.
type Claims struct {
	Email      string `json:"email"`
	MFAPending bool   `json:"mfa_pending,omitempty"`
	Kind       string `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with HS256. Verification is a pure
// function of (token, now, secret); the codec performs no I/O.
type Codec struct {
	config Config
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret required")
	}
	if cfg.TemporaryTTL <= 0 || cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Codec{config: cfg}, nil
}

// IssueAt mints a token of the given kind for email, with exp anchored to now.
func (c *Codec) IssueAt(email string, kind Kind, now time.Time) (string, error) {
	if c == nil {
		return "", errors.New("codec not initialized")
	}
	if email == "" {
		return "", errors.New("email required")
	}

	ttl := c.config.TemporaryTTL
	if kind == KindAccess {
		ttl = c.config.AccessTTL
	}

	claims := Claims{
		Email:      email,
		MFAPending: kind == KindTemporary,
		Kind:       string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Issue is IssueAt anchored to the wall clock.
func (c *Codec) Issue(email string, kind Kind) (string, error) {
	return c.IssueAt(email, kind, time.Now())
}

// VerifyAt parses and verifies tok against now and checks the kind tag.
// Temporary tokens must additionally carry mfa_pending. Callers are expected
// to collapse every returned error into a single unauthorized outcome.
func (c *Codec) VerifyAt(tok string, kind Kind, now time.Time) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Kind != string(kind) {
		return nil, ErrWrongKind
	}
	if kind == KindTemporary && !claims.MFAPending {
		return nil, ErrWrongKind
	}

	return claims, nil
}
