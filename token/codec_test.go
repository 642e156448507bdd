package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(Config{
		Secret:       []byte("0123456789abcdef0123456789abcdef"),
		Issuer:       "ClutchCall",
		TemporaryTTL: 5 * time.Minute,
		AccessTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1_700_000_000, 0)

	for _, kind := range []Kind{KindTemporary, KindAccess} {
		tok, err := c.IssueAt("a@x.com", kind, now)
		if err != nil {
			t.Fatalf("IssueAt(%s) failed: %v", kind, err)
		}

		claims, err := c.VerifyAt(tok, kind, now)
		if err != nil {
			t.Fatalf("VerifyAt(%s) failed: %v", kind, err)
		}
		if claims.Email != "a@x.com" {
			t.Fatalf("email mismatch: got %q", claims.Email)
		}
		if claims.Kind != string(kind) {
			t.Fatalf("kind mismatch: got %q want %q", claims.Kind, kind)
		}
		if claims.ID == "" {
			t.Fatal("expected a jti claim")
		}
	}
}

func TestTemporaryTokenCarriesMFAPending(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1_700_000_000, 0)

	tok, err := c.IssueAt("a@x.com", KindTemporary, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	claims, err := c.VerifyAt(tok, KindTemporary, now)
	if err != nil {
		t.Fatalf("VerifyAt failed: %v", err)
	}
	if !claims.MFAPending {
		t.Fatal("expected mfa_pending on temporary token")
	}

	access, err := c.IssueAt("a@x.com", KindAccess, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	accessClaims, err := c.VerifyAt(access, KindAccess, now)
	if err != nil {
		t.Fatalf("VerifyAt failed: %v", err)
	}
	if accessClaims.MFAPending {
		t.Fatal("access token must not carry mfa_pending")
	}
}

func TestVerifyExpired(t *testing.T) {
	c := testCodec(t)
	issued := time.Unix(1_700_000_000, 0)

	tok, err := c.IssueAt("a@x.com", KindTemporary, issued)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}

	if _, err := c.VerifyAt(tok, KindTemporary, issued.Add(4*time.Minute)); err != nil {
		t.Fatalf("expected token valid before TTL, got %v", err)
	}
	_, err = c.VerifyAt(tok, KindTemporary, issued.Add(6*time.Minute))
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1_700_000_000, 0)

	temp, err := c.IssueAt("a@x.com", KindTemporary, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	if _, err := c.VerifyAt(temp, KindAccess, now); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind for temp-as-access, got %v", err)
	}

	access, err := c.IssueAt("a@x.com", KindAccess, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	if _, err := c.VerifyAt(access, KindTemporary, now); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind for access-as-temp, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1_700_000_000, 0)

	tok, err := c.IssueAt("a@x.com", KindAccess, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWT, got %d segments", len(parts))
	}

	// The final base64url character carries padding bits that a lenient
	// decoder discards, so only fully significant bytes are flipped.
	sig := []byte(parts[2])
	for i := 0; i < len(sig)-1; i++ {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		if flipped[i] == 'A' {
			flipped[i] = 'B'
		} else {
			flipped[i] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(flipped)
		if tampered == tok {
			continue
		}
		if _, err := c.VerifyAt(tampered, KindAccess, now); err == nil {
			t.Fatalf("tampered signature at byte %d accepted", i)
		}
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1_700_000_000, 0)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := c.VerifyAt(tok, KindAccess, now); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", tok, err)
		}
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	c := testCodec(t)
	other, err := NewCodec(Config{
		Secret:       []byte("ffffffffffffffffffffffffffffffff"),
		Issuer:       "ClutchCall",
		TemporaryTTL: 5 * time.Minute,
		AccessTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	now := time.Unix(1_700_000_000, 0)
	tok, err := other.IssueAt("a@x.com", KindAccess, now)
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	if _, err := c.VerifyAt(tok, KindAccess, now); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}
