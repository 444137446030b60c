// Package auth implements credential issuance and session lifecycle for
// the API: registration, login, signed access tokens, rotating refresh
// tokens, revocation and current-user resolution.  Every other package
// that needs to know who is calling goes through this one.
package auth

import "errors"

// Sentinel errors returned by the auth core.  Handlers map each value to
// a stable HTTP response; nothing in this package ever swallows a failed
// authentication; on any doubt the operation fails closed.
var (
	// ErrConflict reports a duplicate username or email at registration.
	ErrConflict = errors.New("username or email already registered")

	// ErrInvalidCredentials reports a failed login.  It is deliberately
	// uninformative: an unknown username and a wrong password produce
	// the same value so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed reports a login attempt before the account's
	// email address was verified.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrInvalidToken reports a malformed or tampered signed token, a
	// token of the wrong type, or a refresh secret matching no record.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired reports a well-formed signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenExpiredOrRevoked reports a refresh secret that matches a
	// stored record which is no longer active.  The two causes are not
	// distinguished: a replayed secret and a stale one look the same.
	ErrTokenExpiredOrRevoked = errors.New("refresh token expired or revoked")

	// ErrTokenRevoked reports an access token found on the denylist
	// while its signature and expiry were still valid.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrUserNotFound reports that the subject of a valid token no
	// longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden reports an authenticated user lacking the role an
	// operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrTooManyAttempts reports that the failed-login throttle tripped
	// for this account name.  Distinct from ErrInvalidCredentials so a
	// locked-out caller is not told their password was wrong.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
