package clutchcall

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testGatewayConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	// cheap argon2 parameters keep the test suite fast
	cfg.Password.Memory = 16 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.TOTP.QRSize = 128
	return cfg
}

func newTestGateway(t *testing.T) (*Gateway, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	g, err := New().
		WithConfig(testGatewayConfig()).
		WithRedis(newTestRedis(t)).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(g.Close)
	return g, clock
}

func codeFor(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("GenerateCodeCustom failed: %v", err)
	}
	return code
}

func storedSecret(t *testing.T, g *Gateway, email string) string {
	t.Helper()
	user, err := g.store.Lookup(context.Background(), email)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	return user.MFASecret
}
