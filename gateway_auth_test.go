package clutchcall

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegisterThenLogin(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := g.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.TempToken == "" {
		t.Fatal("expected a temporary token")
	}
	if res.MFAConfigured {
		t.Fatal("fresh account must report mfa not configured")
	}
}

func TestRegisterValidation(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "", "password1"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if err := g.Register(ctx, "a@x.com", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if err := g.Register(ctx, "a@x.com", "short7!"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := g.Register(ctx, "a@x.com", "password2"); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "  A@X.com ", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := g.Register(ctx, "a@x.com", "password1"); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected normalized duplicate to conflict, got %v", err)
	}
	if _, err := g.Login(ctx, "A@X.COM", "password1"); err != nil {
		t.Fatalf("expected case-insensitive login, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, wrongPass := g.Login(ctx, "a@x.com", "password2")
	_, unknownUser := g.Login(ctx, "nobody@x.com", "password1")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatal("failure causes must be externally identical")
	}
}

func TestLoginMissingFields(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if _, err := g.Login(ctx, "", "password1"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := g.Login(ctx, "a@x.com", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestConcurrentRegisterSingleWinner(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Register(ctx, "race@x.com", "password1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrEmailExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", n-1, succeeded, conflicts)
	}
}

func TestAuditEventsEmitted(t *testing.T) {
	sink := NewChannelSink(16)

	g, err := New().
		WithConfig(testGatewayConfig()).
		WithRedis(newTestRedis(t)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer g.Close()

	ctx := context.Background()
	if err := g.Register(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := g.Login(ctx, "a@x.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	want := map[string]bool{
		auditEventRegisterSuccess: true,
		auditEventLoginFailure:    false,
	}
	for i := 0; i < len(want); i++ {
		select {
		case event := <-sink.Events():
			success, ok := want[event.EventType]
			if !ok {
				t.Fatalf("unexpected audit event %q", event.EventType)
			}
			if event.Success != success {
				t.Fatalf("event %q success = %v, want %v", event.EventType, event.Success, success)
			}
			if event.Email != "a@x.com" {
				t.Fatalf("event %q email = %q", event.EventType, event.Email)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for audit events")
		}
	}
}

func TestMetricsCountGatewayOutcomes(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	if err := g.Register(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_ = g.Register(ctx, "a@x.com", "password1")
	if _, err := g.Login(ctx, "a@x.com", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_, _ = g.Login(ctx, "a@x.com", "nope-nope")

	snap := g.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("register success counter = %d", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricRegisterDuplicate] != 1 {
		t.Fatalf("register duplicate counter = %d", snap.Counters[MetricRegisterDuplicate])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success counter = %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("login failure counter = %d", snap.Counters[MetricLoginFailure])
	}
}
