package clutchcall

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cjlopez27/ClutchCall/internal/stores"
)

var (
	errUserNotFound = errors.New("user not found")
	errSecretExists = errors.New("mfa secret already set")
)

// redisCredentials adapts the internal redis store to the CredentialStore
// interface and translates its sentinels into gateway vocabulary.
type redisCredentials struct {
	inner *stores.CredentialStore
}

func newRedisCredentials(client redis.UniversalClient, prefix string) *redisCredentials {
	return &redisCredentials{inner: stores.NewCredentialStore(client, prefix)}
}

func (r *redisCredentials) Register(ctx context.Context, email, passwordHash string) error {
	return mapStoreErr(r.inner.Register(ctx, email, passwordHash))
}

func (r *redisCredentials) Lookup(ctx context.Context, email string) (*User, error) {
	rec, err := r.inner.Lookup(ctx, email)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &User{
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		MFASecret:    rec.MFASecret,
	}, nil
}

func (r *redisCredentials) SetMFASecret(ctx context.Context, email, secret string) error {
	return mapStoreErr(r.inner.SetMFASecret(ctx, email, secret))
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrEmailTaken):
		return ErrEmailExists
	case errors.Is(err, stores.ErrUserNotFound):
		return errUserNotFound
	case errors.Is(err, stores.ErrSecretExists):
		return errSecretExists
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
