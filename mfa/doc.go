// Package mfa provisions and validates time-based one-time codes.
//
// Secrets carry 160 bits of entropy and are base32-encoded for authenticator
// compatibility. Provisioning URIs use the standard otpauth:// format and are
// rendered as PNG images for scanning; the image is returned to the caller and
// never stored.
//
// # What this package must NOT do
//
//   - Persist secrets — storage is the credential store's concern.
//   - Track used codes. Replay inside the validity window is accepted,
//     matching the deployed reference behavior.
package mfa
