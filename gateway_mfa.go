package clutchcall

import (
	"context"
	"errors"
	"strings"

	"github.com/cjlopez27/ClutchCall/token"
)

// SetupMFA provisions a TOTP secret for the account bound to a valid
// temporary token and returns the provisioning QR as a PNG buffer.
//
// Setup is idempotent-reject: once an account holds a secret, every further
// call returns ErrMFAAlreadyEnabled without touching storage and without
// issuing a second QR. Races between concurrent setups are settled by the
// store's compare-and-set, so losers are rejected the same way.
func (g *Gateway) SetupMFA(ctx context.Context, tempToken string) ([]byte, error) {
	if g == nil || g.store == nil || g.authenticator == nil || g.codec == nil {
		return nil, ErrGatewayNotReady
	}

	now := g.now()

	claims, err := g.codec.VerifyAt(tempToken, token.KindTemporary, now)
	if err != nil {
		g.emitAudit(ctx, auditEventMFASetupRejected, false, "", err)
		return nil, ErrUnauthorized
	}
	if claims.Email == "" {
		g.emitAudit(ctx, auditEventMFASetupRejected, false, "", errors.New("token without email claim"))
		return nil, ErrUnauthorized
	}

	user, err := g.store.Lookup(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			g.emitAudit(ctx, auditEventMFASetupRejected, false, claims.Email, err)
			return nil, ErrUnauthorized
		}
		g.metricInc(MetricStoreFailure)
		g.emitAudit(ctx, auditEventMFASetupFailure, false, claims.Email, err)
		return nil, ErrStoreUnavailable
	}
	if user.MFASecret != "" {
		g.metricInc(MetricMFASetupRejected)
		g.emitAudit(ctx, auditEventMFASetupRejected, false, claims.Email, ErrMFAAlreadyEnabled)
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := g.authenticator.GenerateSecret(claims.Email)
	if err != nil {
		g.emitAudit(ctx, auditEventMFASetupFailure, false, claims.Email, err)
		return nil, err
	}

	if err := g.store.SetMFASecret(ctx, claims.Email, secret); err != nil {
		switch {
		case errors.Is(err, errSecretExists):
			// lost the race: another setup call persisted first
			g.metricInc(MetricMFASetupRejected)
			g.emitAudit(ctx, auditEventMFASetupRejected, false, claims.Email, err)
			return nil, ErrMFAAlreadyEnabled
		case errors.Is(err, errUserNotFound):
			g.emitAudit(ctx, auditEventMFASetupRejected, false, claims.Email, err)
			return nil, ErrUnauthorized
		default:
			g.metricInc(MetricStoreFailure)
			g.emitAudit(ctx, auditEventMFASetupFailure, false, claims.Email, err)
			return nil, ErrStoreUnavailable
		}
	}

	img, err := g.authenticator.QRCode(secret, claims.Email)
	if err != nil {
		g.emitAudit(ctx, auditEventMFASetupFailure, false, claims.Email, err)
		return nil, err
	}

	g.metricInc(MetricMFASetupSuccess)
	g.emitAudit(ctx, auditEventMFASetupIssued, true, claims.Email, nil)
	return img, nil
}

// ValidateMFA checks a submitted one-time code against the stored secret and,
// on a match, upgrades the session by minting an access token. The same clock
// instant feeds both the temporary token's expiry check and the code window.
//
// A wrong code leaves the temporary token usable; the caller may retry until
// it expires.
func (g *Gateway) ValidateMFA(ctx context.Context, tempToken, code string) (string, error) {
	if g == nil || g.store == nil || g.authenticator == nil || g.codec == nil {
		return "", ErrGatewayNotReady
	}
	if strings.TrimSpace(code) == "" {
		return "", ErrMissingCode
	}

	now := g.now()

	claims, err := g.codec.VerifyAt(tempToken, token.KindTemporary, now)
	if err != nil {
		g.metricInc(MetricMFAFailure)
		g.emitAudit(ctx, auditEventMFAFailure, false, "", err)
		return "", ErrUnauthorized
	}
	if claims.Email == "" {
		g.metricInc(MetricMFAFailure)
		g.emitAudit(ctx, auditEventMFAFailure, false, "", errors.New("token without email claim"))
		return "", ErrUnauthorized
	}

	user, err := g.store.Lookup(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			g.metricInc(MetricMFAFailure)
			g.emitAudit(ctx, auditEventMFAFailure, false, claims.Email, err)
			return "", ErrUnauthorized
		}
		g.metricInc(MetricStoreFailure)
		g.emitAudit(ctx, auditEventMFAFailure, false, claims.Email, err)
		return "", ErrStoreUnavailable
	}
	if user.MFASecret == "" {
		g.metricInc(MetricMFAFailure)
		g.emitAudit(ctx, auditEventMFAFailure, false, claims.Email, errors.New("no mfa secret configured"))
		return "", ErrUnauthorized
	}

	if !g.authenticator.ValidateAt(user.MFASecret, code, now) {
		g.metricInc(MetricMFAFailure)
		g.emitAudit(ctx, auditEventMFAFailure, false, claims.Email, ErrInvalidMFACode)
		return "", ErrInvalidMFACode
	}

	access, err := g.codec.IssueAt(claims.Email, token.KindAccess, now)
	if err != nil {
		g.emitAudit(ctx, auditEventMFAFailure, false, claims.Email, err)
		return "", err
	}

	g.metricInc(MetricMFASuccess)
	g.emitAudit(ctx, auditEventMFASuccess, true, claims.Email, nil)
	return access, nil
}
