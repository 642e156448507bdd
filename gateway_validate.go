package clutchcall

import (
	"context"
	"errors"

	"github.com/cjlopez27/ClutchCall/token"
)

// ValidateAccess verifies an access token and returns the authenticated
// email. Expired, malformed, tampered, and wrong-kind tokens all collapse to
// ErrUnauthorized; the caller learns nothing about which check failed.
func (g *Gateway) ValidateAccess(ctx context.Context, accessToken string) (string, error) {
	if g == nil || g.codec == nil {
		return "", ErrGatewayNotReady
	}

	now := g.now()

	claims, err := g.codec.VerifyAt(accessToken, token.KindAccess, now)
	if err != nil {
		g.metricInc(MetricValidateFailure)
		g.emitAudit(ctx, auditEventValidateFailure, false, "", err)
		return "", ErrUnauthorized
	}
	if claims.Email == "" {
		g.metricInc(MetricValidateFailure)
		g.emitAudit(ctx, auditEventValidateFailure, false, "", errors.New("token without email claim"))
		return "", ErrUnauthorized
	}

	g.metricInc(MetricValidateSuccess)
	return claims.Email, nil
}
