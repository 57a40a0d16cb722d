package clients

import (
	"crypto/subtle"
	"fmt"

	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// Registry validates client identities and redirect URIs.
type Registry interface {
	// Get returns the registered client or ErrUnknownClient.
	Get(clientID string) (*Client, error)

	// ValidateRedirectURI returns the redirect URI registered for clientID.
	ValidateRedirectURI(clientID string) (string, error)

	// ValidateCredentials fails with ErrInvalidClientCredentials when the
	// client is unknown or the secret does not match.
	ValidateCredentials(clientID, secret string) error
}

var _ Registry = (*StaticRegistry)(nil)

// StaticRegistry is an immutable in-memory Registry. It is safe for
// concurrent use because nothing mutates it after NewRegistry returns.
type StaticRegistry struct {
	clients map[string]*Client
}

type RegistryOption func(*registryOptions)

type registryOptions struct {
	allowInsecureHTTP bool
}

// WithAllowInsecureHTTP permits http redirect URIs. Meant for development.
func WithAllowInsecureHTTP(allow bool) RegistryOption {
	return func(o *registryOptions) {
		o.allowInsecureHTTP = allow
	}
}

// NewRegistry validates every client and builds the registry.
func NewRegistry(list []Client, opts ...RegistryOption) (*StaticRegistry, error) {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &StaticRegistry{clients: make(map[string]*Client, len(list))}
	for i := range list {
		c := list[i]
		if err := c.validate(o.allowInsecureHTTP); err != nil {
			return nil, fmt.Errorf("[NewRegistry] %w", err)
		}
		if _, dup := r.clients[c.ID]; dup {
			return nil, fmt.Errorf("[NewRegistry] duplicate client id %s", c.ID)
		}
		r.clients[c.ID] = &c
	}
	return r, nil
}

func (r *StaticRegistry) Get(clientID string) (*Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, apperrors.ErrUnknownClient
	}
	return c, nil
}

func (r *StaticRegistry) ValidateRedirectURI(clientID string) (string, error) {
	c, err := r.Get(clientID)
	if err != nil {
		return "", err
	}
	return c.RedirectURI, nil
}

func (r *StaticRegistry) ValidateCredentials(clientID, secret string) error {
	c, ok := r.clients[clientID]
	if !ok || secret == "" {
		return apperrors.ErrInvalidClientCredentials
	}

	if c.SecretHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)); err != nil {
			return apperrors.ErrInvalidClientCredentials
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) != 1 {
		return apperrors.ErrInvalidClientCredentials
	}
	return nil
}
