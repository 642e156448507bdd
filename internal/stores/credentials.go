package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldPasswordHash = "password_hash"
	fieldMFASecret    = "mfa_secret"
)

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrSecretExists      = errors.New("mfa secret already set")
	ErrCredentialBackend = errors.New("credential backend unavailable")
)

// Record is one credential row. MFASecret is empty until provisioned.
type Record struct {
	Email        string
	PasswordHash string
	MFASecret    string
}

// CredentialStore keeps one redis hash per normalized email. HSETNX gives the
// two atomic primitives the flows need: insert-iff-absent for registration and
// set-iff-absent for the one-shot MFA secret. There is no read-then-write
// anywhere in this store.
type CredentialStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewCredentialStore(redisClient redis.UniversalClient, prefix string) *CredentialStore {
	if prefix == "" {
		prefix = "usr"
	}
	return &CredentialStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *CredentialStore) key(email string) string {
	return s.prefix + ":" + email
}

// Register inserts a credential row. Exactly one of N concurrent calls for
// the same email succeeds; the rest get ErrEmailTaken.
func (s *CredentialStore) Register(ctx context.Context, email, passwordHash string) error {
	created, err := s.redis.HSetNX(ctx, s.key(email), fieldPasswordHash, passwordHash).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}
	if !created {
		return ErrEmailTaken
	}
	return nil
}

// Lookup returns the record for email or ErrUserNotFound.
func (s *CredentialStore) Lookup(ctx context.Context, email string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}

	return &Record{
		Email:        email,
		PasswordHash: fields[fieldPasswordHash],
		MFASecret:    fields[fieldMFASecret],
	}, nil
}

// SetMFASecret assigns the secret iff none exists yet. Exactly one of N
// concurrent calls for the same account ever persists a secret; later calls
// and losers of the race get ErrSecretExists. Accounts are never deleted, so
// the existence check cannot race with the compare-and-set.
func (s *CredentialStore) SetMFASecret(ctx context.Context, email, secret string) error {
	exists, err := s.redis.Exists(ctx, s.key(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}
	if exists == 0 {
		return ErrUserNotFound
	}

	set, err := s.redis.HSetNX(ctx, s.key(email), fieldMFASecret, secret).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}
	if !set {
		return ErrSecretExists
	}
	return nil
}
