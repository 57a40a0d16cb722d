// Package grant drives the authorization code grant: it validates the
// client and redirect URI, turns consent into a single-use code, and
// exchanges codes and refresh tokens for access tokens.
package grant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-authcode-server/clients"
	"github.com/jrsteele09/go-authcode-server/codes"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/ticket"
)

const (
	DefaultCodeExpiry         = codes.DefaultTTL
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Machine is stateless between calls; the only shared state is the code
// store, so one Machine serves all requests concurrently.
type Machine struct {
	registry           clients.Registry
	store              codes.Store
	codec              ticket.Codec
	codeExpiry         time.Duration
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowTime            func() time.Time
}

type Option func(*Machine)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Machine) {
		m.nowTime = nowFunc
	}
}

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) Option {
	return func(m *Machine) {
		if accessTokenExpiry > 0 {
			m.accessTokenExpiry = accessTokenExpiry
		}
		if refreshTokenExpiry > 0 {
			m.refreshTokenExpiry = refreshTokenExpiry
		}
	}
}

// WithCodeExpiry sets the lifetime written into code tickets. It should match
// the TTL of the code store.
func WithCodeExpiry(codeExpiry time.Duration) Option {
	return func(m *Machine) {
		if codeExpiry > 0 {
			m.codeExpiry = codeExpiry
		}
	}
}

func New(registry clients.Registry, store codes.Store, codec ticket.Codec, options ...Option) (*Machine, error) {
	if registry == nil {
		return nil, errors.New("[grant New] client registry is required")
	}
	if store == nil {
		return nil, errors.New("[grant New] code store is required")
	}
	if codec == nil {
		return nil, errors.New("[grant New] ticket codec is required")
	}

	m := &Machine{
		registry:           registry,
		store:              store,
		codec:              codec,
		codeExpiry:         DefaultCodeExpiry,
		accessTokenExpiry:  DefaultAccessTokenExpiry,
		refreshTokenExpiry: DefaultRefreshTokenExpiry,
		nowTime:            time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Authorize validates the request. Client and redirect URI failures are
// returned as plain errors and must never be redirected. Once the redirect
// URI is trusted, protocol errors come back as *RedirectError. A nil identity
// yields StateAwaitingAuthentication, otherwise StateAwaitingConsent.
func (m *Machine) Authorize(_ context.Context, req AuthorizeRequest, identity *ticket.Identity) (*Authorization, error) {
	client, redirectURI, err := m.validateClient(req)
	if err != nil {
		return nil, err
	}

	auth := &Authorization{
		State:       StateAwaitingAuthentication,
		Client:      client,
		RedirectURI: redirectURI,
		Scopes:      ticket.ParseScope(req.Scope),
		ClientState: req.State,
	}

	if req.ResponseType != oauth2.CodeResponseType {
		errCode := oauth2.ErrorUnsupportedResponseType
		if req.ResponseType == "" {
			errCode = oauth2.ErrorInvalidRequest
		}
		redirectURL, err := callbackURL(redirectURI, map[string]string{"error": errCode, "state": req.State})
		if err != nil {
			return nil, err
		}
		return nil, &RedirectError{RedirectURL: redirectURL, Err: apperrors.ErrUnsupportedResponseType}
	}

	if identity != nil {
		auth.State = StateAwaitingConsent
	}
	return auth, nil
}

// Consent records the resource owner's decision. On grant a code ticket is
// stored and the authorization carries the redirect with code and state; on
// denial it carries an access_denied redirect.
func (m *Machine) Consent(ctx context.Context, req AuthorizeRequest, identity *ticket.Identity, granted bool) (*Authorization, error) {
	auth, err := m.Authorize(ctx, req, identity)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperrors.ErrAuthenticationRequired
	}

	if !granted {
		redirectURL, err := callbackURL(auth.RedirectURI, map[string]string{"error": oauth2.ErrorAccessDenied, "state": req.State})
		if err != nil {
			return nil, err
		}
		auth.State = StateDenied
		auth.RedirectURL = redirectURL
		return auth, nil
	}

	codeTicket := ticket.New(ticket.WithScopes(*identity, auth.Scopes), auth.Client.ID,
		ticket.AuthTypeBearer, ticket.PurposeCode, m.nowTime(), m.codeExpiry)

	code, err := m.store.Issue(ctx, codeTicket)
	if err != nil {
		return nil, fmt.Errorf("[Consent] issuing code: %w", err)
	}

	redirectURL, err := callbackURL(auth.RedirectURI, map[string]string{"code": code, "state": req.State})
	if err != nil {
		return nil, err
	}
	auth.State = StateCodeIssued
	auth.Code = code
	auth.RedirectURL = redirectURL
	return auth, nil
}

// Exchange handles a token request. Client authentication happens before
// anything else in the request is looked at, so bad credentials always
// surface as ErrInvalidClientCredentials. Grant failures wrap ErrInvalidGrant.
func (m *Machine) Exchange(ctx context.Context, req oauth2.TokenRequest) (*TokenGrant, error) {
	if err := m.AuthenticateClient(req.ClientID, req.ClientSecret); err != nil {
		return nil, err
	}

	var (
		source *ticket.Ticket
		err    error
	)
	switch req.GrantType {
	case "":
		return nil, fmt.Errorf("[Exchange] missing grant_type: %w", apperrors.ErrInvalidRequest)
	case oauth2.AuthorizationCodeGrant:
		source, err = m.exchangeCode(ctx, req)
	case oauth2.RefreshTokenGrant:
		source, err = m.refresh(req)
	default:
		return nil, apperrors.ErrUnsupportedGrantType
	}
	if err != nil {
		return nil, err
	}

	resp, err := m.issueTokens(source, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenGrant{
		State:    StateTokenIssued,
		ClientID: source.ClientID,
		Subject:  source.Subject,
		Response: resp,
	}, nil
}

// AuthenticateClient checks client credentials as the token endpoint sees them.
func (m *Machine) AuthenticateClient(clientID, clientSecret string) error {
	return m.registry.ValidateCredentials(clientID, clientSecret)
}

func (m *Machine) exchangeCode(ctx context.Context, req oauth2.TokenRequest) (*ticket.Ticket, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("[exchangeCode] missing code: %w", apperrors.ErrInvalidRequest)
	}

	// The code is consumed here whatever happens next.
	codeTicket, err := m.store.Redeem(ctx, req.Code)
	if err != nil {
		if isGrantFailure(err) {
			return nil, apperrors.Join(apperrors.ErrInvalidGrant, err)
		}
		return nil, fmt.Errorf("[exchangeCode] redeeming code: %w", err)
	}

	if codeTicket.Purpose != ticket.PurposeCode || codeTicket.AuthType != ticket.AuthTypeBearer {
		return nil, apperrors.Join(apperrors.ErrInvalidGrant, errors.New("not an authorization code ticket"))
	}
	if codeTicket.ClientID != req.ClientID {
		return nil, apperrors.Join(apperrors.ErrInvalidGrant, errors.New("code was issued to another client"))
	}
	if req.RedirectURI != "" {
		registered, err := m.registry.ValidateRedirectURI(req.ClientID)
		if err != nil || registered != req.RedirectURI {
			return nil, apperrors.Join(apperrors.ErrInvalidGrant, apperrors.ErrInvalidRedirectURI)
		}
	}

	return codeTicket, nil
}

func (m *Machine) refresh(req oauth2.TokenRequest) (*ticket.Ticket, error) {
	if req.RefreshToken == "" {
		return nil, fmt.Errorf("[refresh] missing refresh_token: %w", apperrors.ErrInvalidRequest)
	}

	refreshTicket, err := m.codec.Decode(req.RefreshToken)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrInvalidGrant, err)
	}
	if refreshTicket.Purpose != ticket.PurposeRefresh || refreshTicket.AuthType != ticket.AuthTypeBearer {
		return nil, apperrors.Join(apperrors.ErrInvalidGrant, errors.New("not a refresh token"))
	}
	if refreshTicket.ClientID != req.ClientID {
		return nil, apperrors.Join(apperrors.ErrInvalidGrant, errors.New("refresh token was issued to another client"))
	}

	return refreshTicket, nil
}

// issueTokens derives an access ticket from source. A refresh ticket is
// minted only for a code; a refresh request gets its own refresh token back,
// since refresh tokens are neither stored nor rotated and keep working until
// they expire. Nothing is stored; the encoded ticket is the token.
func (m *Machine) issueTokens(source *ticket.Ticket, presentedRefreshToken string) (*oauth2.TokenResponse, error) {
	now := m.nowTime()

	accessToken, err := m.codec.Encode(source.Derive(ticket.PurposeAccess, now, m.accessTokenExpiry))
	if err != nil {
		return nil, fmt.Errorf("[issueTokens] encoding access token: %w", err)
	}

	refreshToken := presentedRefreshToken
	if source.Purpose != ticket.PurposeRefresh {
		refreshToken, err = m.codec.Encode(source.Derive(ticket.PurposeRefresh, now, m.refreshTokenExpiry))
		if err != nil {
			return nil, fmt.Errorf("[issueTokens] encoding refresh token: %w", err)
		}
	}

	return &oauth2.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    oauth2.TokenTypeBearer,
		ExpiresIn:    int(m.accessTokenExpiry.Seconds()),
		RefreshToken: &refreshToken,
		Scope:        source.Scope(),
	}, nil
}

func (m *Machine) validateClient(req AuthorizeRequest) (*clients.Client, string, error) {
	if req.ClientID == "" {
		return nil, "", apperrors.ErrUnknownClient
	}
	client, err := m.registry.Get(req.ClientID)
	if err != nil {
		return nil, "", err
	}
	registered, err := m.registry.ValidateRedirectURI(req.ClientID)
	if err != nil {
		return nil, "", err
	}
	if req.RedirectURI != "" && req.RedirectURI != registered {
		return nil, "", apperrors.ErrInvalidRedirectURI
	}
	return client, registered, nil
}

func isGrantFailure(err error) bool {
	return apperrors.Is(err, apperrors.ErrCodeNotFound) ||
		apperrors.Is(err, apperrors.ErrCodeExpired) ||
		apperrors.Is(err, apperrors.ErrMalformedTicket) ||
		apperrors.Is(err, apperrors.ErrTicketExpired)
}
