package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authorization server
var (
	// Client errors
	ErrUnknownClient            = errors.New("unknown client")
	ErrInvalidRedirectURI       = errors.New("invalid redirect URI")
	ErrInvalidClientCredentials = errors.New("invalid client credentials")

	// Grant errors
	ErrInvalidGrant            = errors.New("invalid grant")
	ErrAccessDenied            = errors.New("access denied")
	ErrUnsupportedGrantType    = errors.New("unsupported grant type")
	ErrUnsupportedResponseType = errors.New("unsupported response type")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrAuthenticationRequired  = errors.New("authentication required")

	// Ticket errors
	ErrMalformedTicket = errors.New("malformed ticket")
	ErrTicketExpired   = errors.New("ticket expired")

	// Authorization code errors
	ErrCodeNotFound = errors.New("authorization code not found")
	ErrCodeExpired  = errors.New("authorization code expired")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps cause under kind so both stay matchable with Is.
func Join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
