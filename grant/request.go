package grant

import (
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-authcode-server/clients"
	"github.com/jrsteele09/go-authcode-server/oauth2"
)

// AuthorizeRequest holds the parameters of an authorization request, as
// received on the query string (GET) or form body (POST) of /authorize.
type AuthorizeRequest struct {
	ResponseType oauth2.ResponseType
	ClientID     string
	RedirectURI  string // optional; the registered URI is used when empty
	Scope        string // whitespace delimited
	State        string // echoed back to the client untouched
}

// Query encodes the request back into authorize query parameters.
func (r AuthorizeRequest) Query() url.Values {
	q := url.Values{}
	q.Set("response_type", string(r.ResponseType))
	q.Set("client_id", r.ClientID)
	if r.RedirectURI != "" {
		q.Set("redirect_uri", r.RedirectURI)
	}
	if r.Scope != "" {
		q.Set("scope", r.Scope)
	}
	if r.State != "" {
		q.Set("state", r.State)
	}
	return q
}

// Authorization is the outcome of an authorize or consent step.
type Authorization struct {
	State       State
	Client      *clients.Client
	RedirectURI string   // validated redirect URI
	Scopes      []string // requested scopes
	ClientState string   // state parameter from the client
	Code        string   // set once the code is issued
	RedirectURL string   // where to send the user agent, for CodeIssued and Denied
}

// TokenGrant is the outcome of a successful token request.
type TokenGrant struct {
	State    State // StateTokenIssued
	ClientID string
	Subject  string
	Response *oauth2.TokenResponse
}

// RedirectError is an error that may be reported to the client because its
// redirect URI has already been validated.
type RedirectError struct {
	RedirectURL string
	Err         error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirecting error to client: %v", e.Err)
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

// callbackURL appends params to redirectURI, keeping any query the client
// registered. Empty values are skipped.
func callbackURL(redirectURI string, params map[string]string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("[callbackURL] invalid redirect URI: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
