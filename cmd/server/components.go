package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-authcode-server/clients"
	"github.com/jrsteele09/go-authcode-server/codes"
	"github.com/jrsteele09/go-authcode-server/grant"
	"github.com/jrsteele09/go-authcode-server/internal/config"
	"github.com/jrsteele09/go-authcode-server/sessions"
	"github.com/jrsteele09/go-authcode-server/ticket"
)

const devKeyBits = 2048

// components is everything the HTTP server needs, built from configuration.
type components struct {
	codec    ticket.Codec
	registry *clients.StaticRegistry
	store    codes.Store
	machine  *grant.Machine
	sessions *sessions.CookieAuthenticator
}

func newComponents(ctx context.Context, c config.Config) (*components, error) {
	signer, err := newSigner(c)
	if err != nil {
		return nil, err
	}
	codec := ticket.NewJWTCodec(signer, ticket.WithIssuer(c.GetBaseURL()))

	registry, err := newRegistry(c)
	if err != nil {
		return nil, err
	}

	store, err := codes.Open(ctx, c, codec,
		codes.WithTTL(c.GetAuthCodeTimeout()),
		codes.WithCodeLength(c.GetCodeGenerationLength()),
	)
	if err != nil {
		return nil, fmt.Errorf("[newComponents] opening code store: %w", err)
	}
	log.Info().Str("store", string(c.GetCodeStore())).Msg("authorization code store ready")

	machine, err := grant.New(registry, store, codec,
		grant.WithCodeExpiry(c.GetAuthCodeTimeout()),
		grant.WithTokenExpiry(c.GetDefaultAccessTokenExpiry(), c.GetDefaultRefreshTokenExpiry()),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &components{
		codec:    codec,
		registry: registry,
		store:    store,
		machine:  machine,
		sessions: sessions.NewCookieAuthenticator(codec, sessions.WithMaxAge(c.GetMaxSessionAge())),
	}, nil
}

// newSigner prefers an RSA key file, then an HMAC secret. Development falls
// back to a throwaway RSA key, which invalidates every ticket on restart.
func newSigner(c config.Config) (ticket.Signer, error) {
	if path := c.GetTicketSigningKeyFile(); path != "" {
		keyPair, err := ticket.LoadKeyPairFile(c.GetTicketSigningKeyID(), path)
		if err != nil {
			return nil, fmt.Errorf("[newSigner] %w", err)
		}
		return ticket.NewKeyPairSigner(keyPair), nil
	}

	if secret := c.GetTicketSigningKey(); secret != "" {
		signer, err := ticket.NewHMACSigner([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("[newSigner] %w", err)
		}
		return signer, nil
	}

	if !c.IsDev() {
		return nil, errors.New("[newSigner] TICKET_SIGNING_KEY or TICKET_SIGNING_KEY_FILE is required outside DEV")
	}

	log.Warn().Msg("no ticket signing key configured, generating a temporary key")
	keyPair, err := ticket.GenerateRSAKeyPair(c.GetTicketSigningKeyID(), devKeyBits)
	if err != nil {
		return nil, fmt.Errorf("[newSigner] %w", err)
	}
	return ticket.NewKeyPairSigner(keyPair), nil
}

func newRegistry(c config.Config) (*clients.StaticRegistry, error) {
	var (
		list []clients.Client
		err  error
	)
	switch {
	case c.GetClientsFile() != "":
		list, err = clients.Load(c.GetClientsFile())
	case c.GetClientsJSON() != "":
		list, err = clients.Parse([]byte(c.GetClientsJSON()))
	default:
		return nil, errors.New("[newRegistry] no clients configured, set CLIENTS_FILE or CLIENTS")
	}
	if err != nil {
		return nil, fmt.Errorf("[newRegistry] %w", err)
	}

	registry, err := clients.NewRegistry(list, clients.WithAllowInsecureHTTP(c.GetAllowInsecureHTTP()))
	if err != nil {
		return nil, fmt.Errorf("[newRegistry] %w", err)
	}
	log.Info().Int("clients", len(list)).Msg("client registry loaded")
	return registry, nil
}
