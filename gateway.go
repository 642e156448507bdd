package clutchcall

import (
	"context"
	"strings"
	"time"

	"github.com/cjlopez27/ClutchCall/token"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventRegisterFailure   = "register_failure"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventMFASetupIssued    = "mfa_setup_issued"
	auditEventMFASetupRejected  = "mfa_setup_rejected"
	auditEventMFASetupFailure   = "mfa_setup_failure"
	auditEventMFASuccess        = "mfa_success"
	auditEventMFAFailure        = "mfa_failure"
	auditEventValidateSuccess   = "validate_success"
	auditEventValidateFailure   = "validate_failure"
)

// Gateway orchestrates the login / MFA session flow. It holds no per-session
// state: every session artifact is a signed bearer token held by the client.
// Methods are safe for concurrent use after Build.
type Gateway struct {
	config        Config
	store         CredentialStore
	hasher        Hasher
	authenticator Authenticator
	codec         *token.Codec
	audit         *auditDispatcher
	metrics       *Metrics
	now           func() time.Time
}

// Close drains the audit dispatcher.
func (g *Gateway) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (g *Gateway) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the gateway counters.
func (g *Gateway) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.Snapshot()
}

func (g *Gateway) metricInc(id MetricID) {
	if g == nil {
		return
	}
	g.metrics.Inc(id)
}

func (g *Gateway) emitAudit(ctx context.Context, eventType string, success bool, email string, cause error) {
	if g == nil || g.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: g.now(),
		EventType: eventType,
		Email:     email,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	g.audit.Emit(ctx, event)
}

// normalizeEmail lowercases and trims; the result is the store key everywhere.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
