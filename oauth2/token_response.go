package oauth2

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard token endpoint response format defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is an opaque signed ticket used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (15 minutes by default)
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token (always "bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 900 (for 15 minutes)
	ExpiresIn int `json:"expires_in"`

	// RefreshToken is used to obtain new access tokens.
	// A refresh_token request gets the presented refresh token back unchanged.
	// Lifespan: Long-lived (7 days by default)
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions.
	// Example: "profile api.read"
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the JSON body returned by the token endpoint on failure.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
