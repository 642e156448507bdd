// Package clutchcall implements the stateless login / MFA session gateway
// behind the ClutchCall service: credential registration, password login that
// yields a short-lived pending-MFA token, TOTP provisioning and validation,
// and the upgrade to a long-lived access token.
//
// # Architecture boundaries
//
// clutchcall is the public surface. It exposes [Gateway], [Builder], [Config],
// and value types (LoginResult, AuditEvent, MetricsSnapshot). Token signing
// lives in the token subpackage, hashing in password, one-time codes in mfa,
// and redis persistence under internal/. The HTTP cookie surface lives in
// httpapi and only translates status codes; every decision is made here.
//
// # Session model
//
// Sessions are entirely client-held: the gateway keeps no per-session record
// and there is no server-side revocation list. A still-valid token cannot be
// invalidated before expiry — logout only clears the client's cookies. This
// bounds the security model deliberately.
//
// # Known gaps
//
// There is no rate limiting or brute-force protection on login and MFA
// attempts, and no one-time-code replay tracking. Both mirror the deployed
// behavior and are documented operational gaps, not features.
package clutchcall
