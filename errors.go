package clutchcall

import "errors"

var (
	// ErrUnauthorized is returned whenever a bearer token, user lookup, or
	// claim check fails. Callers must not expose a more specific cause.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login for both unknown emails and
	// wrong passwords. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMissingCredentials is returned when email or password is absent.
	ErrMissingCredentials = errors.New("missing email or password")
	// ErrPasswordTooShort is returned by Register when the password is under
	// the minimum length policy.
	ErrPasswordTooShort = errors.New("password below minimum length")
	// ErrEmailExists is returned by Register when the normalized email is
	// already taken.
	ErrEmailExists = errors.New("email already exists")
	// ErrMissingCode is returned by ValidateMFA when no code was submitted.
	ErrMissingCode = errors.New("missing mfa code")
	// ErrInvalidMFACode is returned by ValidateMFA when the submitted code
	// does not match any step inside the accepted window.
	ErrInvalidMFACode = errors.New("invalid mfa code")
	// ErrMFAAlreadyEnabled is returned by SetupMFA when the account already
	// holds a secret. Setup is idempotent-reject: no second QR is ever issued.
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
	// ErrStoreUnavailable is returned when the credential backend fails.
	ErrStoreUnavailable = errors.New("credential backend unavailable")
	// ErrGatewayNotReady is returned when a Gateway method is called before
	// Build wired its dependencies.
	ErrGatewayNotReady = errors.New("gateway not initialized")
)
