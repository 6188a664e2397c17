package supervisor

import "errors"

var (
	// ErrBadPIN indicates the PIN matched no active supervisor.
	ErrBadPIN = errors.New("invalid pin")
	// ErrSessionExpired indicates the session token is expired or revoked.
	ErrSessionExpired = errors.New("supervisor session expired")
	// ErrInvalidToken indicates an unparsable or mis-signed token.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrNoSecurityCode indicates a reprint request for an attendance that
	// never had a code issued.
	ErrNoSecurityCode = errors.New("attendance has no security code")
)
