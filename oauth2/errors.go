package oauth2

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
)

// Error codes from RFC 6749 section 4.1.2.1 and 5.2.
const (
	ErrorInvalidRequest          = "invalid_request"
	ErrorInvalidClient           = "invalid_client"
	ErrorInvalidGrant            = "invalid_grant"
	ErrorUnauthorizedClient      = "unauthorized_client"
	ErrorUnsupportedGrantType    = "unsupported_grant_type"
	ErrorUnsupportedResponseType = "unsupported_response_type"
	ErrorAccessDenied            = "access_denied"
	ErrorServerError             = "server_error"
)

// Fixed descriptions; internal error text is never sent to clients.
var errorDescriptions = map[string]string{
	ErrorInvalidRequest:          "The request is missing a required parameter or is otherwise malformed.",
	ErrorInvalidClient:           "Client authentication failed.",
	ErrorInvalidGrant:            "The provided authorization grant or refresh token is invalid, expired, or was issued to another client.",
	ErrorUnsupportedGrantType:    "The authorization grant type is not supported.",
	ErrorUnsupportedResponseType: "The authorization server does not support this response type.",
	ErrorAccessDenied:            "The resource owner denied the request.",
	ErrorServerError:             "The authorization server encountered an unexpected condition.",
}

// ErrorFor maps an error from the grant layer to an OAuth error code and the
// HTTP status the token endpoint should answer with.
func ErrorFor(err error) (code string, status int) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidGrant):
		return ErrorInvalidGrant, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrInvalidClientCredentials), apperrors.Is(err, apperrors.ErrUnknownClient):
		return ErrorInvalidClient, http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrUnsupportedGrantType):
		return ErrorUnsupportedGrantType, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnsupportedResponseType):
		return ErrorUnsupportedResponseType, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrAccessDenied):
		return ErrorAccessDenied, http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return ErrorInvalidRequest, http.StatusBadRequest
	default:
		return ErrorServerError, http.StatusInternalServerError
	}
}

// Describe returns the fixed description for an error code.
func Describe(code string) string {
	return errorDescriptions[code]
}

// NewErrorResponse builds the JSON error body for err.
func NewErrorResponse(err error) (ErrorResponse, int) {
	code, status := ErrorFor(err)
	return ErrorResponse{Error: code, ErrorDescription: Describe(code)}, status
}
