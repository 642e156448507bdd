package clutchcall

import (
	"context"
	"errors"
	"strings"

	"github.com/cjlopez27/ClutchCall/token"
)

// Login verifies credentials and mints a temporary (pending-MFA) token.
// Unknown email and wrong password produce the same error; nothing in the
// result reveals which check failed.
//
// The temporary token is issued whether or not a TOTP secret exists yet; only
// LoginResult.MFAConfigured differs between the two branches.
func (g *Gateway) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	if g == nil || g.store == nil || g.hasher == nil || g.codec == nil {
		return nil, ErrGatewayNotReady
	}
	if strings.TrimSpace(email) == "" || pass == "" {
		return nil, ErrMissingCredentials
	}

	normalized := normalizeEmail(email)
	now := g.now()

	user, err := g.store.Lookup(ctx, normalized)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			g.metricInc(MetricLoginFailure)
			g.emitAudit(ctx, auditEventLoginFailure, false, normalized, err)
			return nil, ErrInvalidCredentials
		}
		g.metricInc(MetricStoreFailure)
		g.emitAudit(ctx, auditEventLoginFailure, false, normalized, err)
		return nil, ErrStoreUnavailable
	}

	ok, err := g.hasher.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		g.metricInc(MetricLoginFailure)
		g.emitAudit(ctx, auditEventLoginFailure, false, normalized, err)
		return nil, ErrInvalidCredentials
	}

	temp, err := g.codec.IssueAt(normalized, token.KindTemporary, now)
	if err != nil {
		g.emitAudit(ctx, auditEventLoginFailure, false, normalized, err)
		return nil, err
	}

	g.metricInc(MetricLoginSuccess)
	g.emitAudit(ctx, auditEventLoginSuccess, true, normalized, nil)
	return &LoginResult{
		TempToken:     temp,
		MFAConfigured: user.MFASecret != "",
	}, nil
}
