package clutchcall

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cjlopez27/ClutchCall/mfa"
	"github.com/cjlopez27/ClutchCall/password"
	"github.com/cjlopez27/ClutchCall/token"
)

// Builder assembles a Gateway. Capabilities left unset are wired from config:
// the redis credential store, the argon2id hasher, and the TOTP authenticator.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store         CredentialStore
	hasher        Hasher
	authenticator Authenticator
	auditSink     AuditSink
	clock         func() time.Time

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret sets the token signing secret on the current config. The secret
// must come from operator configuration; Build rejects keys under 32 bytes.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.Secret = append([]byte(nil), secret...)
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore overrides the default redis credential store.
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithHasher overrides the default argon2id hasher.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuthenticator overrides the default TOTP authenticator.
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.authenticator = a
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the wall clock, letting tests pin token expiry and
// one-time-code windows to a fixed instant.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

func (b *Builder) Build() (*Gateway, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or credential store required")
		}
		store = newRedisCredentials(b.redis, b.config.Store.RedisPrefix)
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := password.NewArgon2(password.Config{
			Memory:      b.config.Password.Memory,
			Time:        b.config.Password.Time,
			Parallelism: b.config.Password.Parallelism,
			SaltLength:  b.config.Password.SaltLength,
			KeyLength:   b.config.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	authenticator := b.authenticator
	if authenticator == nil {
		a, err := mfa.New(mfa.Config{
			Issuer: b.config.TOTP.Issuer,
			Digits: b.config.TOTP.Digits,
			Period: b.config.TOTP.Period,
			Skew:   b.config.TOTP.Skew,
			QRSize: b.config.TOTP.QRSize,
		})
		if err != nil {
			return nil, err
		}
		authenticator = a
	}

	codec, err := token.NewCodec(token.Config{
		Secret:       b.config.Token.Secret,
		Issuer:       b.config.Token.Issuer,
		TemporaryTTL: b.config.Token.TemporaryTTL,
		AccessTTL:    b.config.Token.AccessTTL,
		Leeway:       b.config.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	return &Gateway{
		config:        b.config,
		store:         store,
		hasher:        hasher,
		authenticator: authenticator,
		codec:         codec,
		audit:         newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:       NewMetrics(b.config.Metrics),
		now:           clock,
	}, nil
}
