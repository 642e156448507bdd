package clutchcall

import (
	"context"
	"errors"
	"strings"
)

// Register creates a credential record for email. The email is normalized
// before insertion and uniqueness is enforced atomically by the store, so N
// concurrent registrations of one address resolve to exactly one success.
//
// Password length is a validation error, distinct from authentication errors.
func (g *Gateway) Register(ctx context.Context, email, pass string) error {
	if g == nil || g.store == nil || g.hasher == nil {
		return ErrGatewayNotReady
	}
	if strings.TrimSpace(email) == "" || pass == "" {
		return ErrMissingCredentials
	}
	if len(pass) < g.config.Password.MinLength {
		return ErrPasswordTooShort
	}

	normalized := normalizeEmail(email)

	hash, err := g.hasher.Hash(pass)
	if err != nil {
		g.emitAudit(ctx, auditEventRegisterFailure, false, normalized, err)
		return err
	}

	switch err := g.store.Register(ctx, normalized, hash); {
	case err == nil:
		g.metricInc(MetricRegisterSuccess)
		g.emitAudit(ctx, auditEventRegisterSuccess, true, normalized, nil)
		return nil
	case errors.Is(err, ErrEmailExists):
		g.metricInc(MetricRegisterDuplicate)
		g.emitAudit(ctx, auditEventRegisterDuplicate, false, normalized, err)
		return ErrEmailExists
	default:
		g.metricInc(MetricStoreFailure)
		g.emitAudit(ctx, auditEventRegisterFailure, false, normalized, err)
		return ErrStoreUnavailable
	}
}
