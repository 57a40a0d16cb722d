// Package oauth2 holds the protocol vocabulary shared by the grant state
// machine and the HTTP surface: response and grant types, token request and
// response shapes, and the mapping from internal errors to OAuth error codes.
package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Example: /authorize?response_type=code&client_id=...
	// It is the only response type this server issues.
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri (optional)
	// Returns: access_token, refresh_token
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, client_id, client_secret
	// Returns: access_token only. The refresh token is not rotated.
	RefreshTokenGrant GrantType = "refresh_token"
)

// TokenTypeBearer is the token_type reported for every access token.
const TokenTypeBearer = "bearer"
