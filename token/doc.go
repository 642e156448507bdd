// Package token signs and verifies the two bearer-token kinds of the session
// flow: short-lived temporary (pending-MFA) tokens and long-lived access
// tokens. Verification is pure in (token, now, secret) so callers can pin one
// clock read per request.
package token
