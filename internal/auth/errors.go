// Package auth is the authentication and authorization core: password
// hashing, signed access/refresh tokens, principal resolution and the
// access gate.  Every failure is reported as one of the sentinel errors
// below; callers match them with errors.Is and never inspect messages.
package auth

import "errors"

var (
	// ErrInvalidCredentials: login with an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken: signature, structure, kind or expiry failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPrincipalNotFound: the token is valid but its subject no longer exists.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrInsufficientPrivilege: authenticated but lacking the required capability.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	// ErrAccountInactive: the account has been deactivated.
	ErrAccountInactive = errors.New("account inactive")
	// ErrStoreUnavailable: the user store failed for a reason unrelated to credentials.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Reasons wrapped together with ErrInvalidToken.  They exist for logs and
// metrics only; clients always see a plain 401.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenKind      = errors.New("unexpected token kind")
)

// Reason returns a short stable label for err, suitable as a log field or
// metric label.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenSignature):
		return "token_signature"
	case errors.Is(err, ErrTokenKind):
		return "token_kind"
	case errors.Is(err, ErrInvalidToken):
		return "token_malformed"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrPrincipalNotFound):
		return "principal_not_found"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrInsufficientPrivilege):
		return "insufficient_privilege"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
