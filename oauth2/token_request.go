package oauth2

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the /token endpoint, with the client
// credentials already resolved from either the Basic header or the form.
type TokenRequest struct {
	// GrantType selects the flow. Required.
	GrantType GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	ClientID string

	// ClientSecret is the secret credential for the client.
	// Security: Never log or expose this value
	ClientSecret string

	// Code is the authorization code received from the authorization endpoint.
	// Required: Yes (only for authorization_code grant)
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// RedirectURI must equal the registered redirect URI when present.
	// Required: No
	RedirectURI string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	RefreshToken string
}
