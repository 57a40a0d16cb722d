// Package ticket defines the identity, claims and expiry record that backs
// authorization codes, access tokens, refresh tokens and login sessions, and
// the codec that turns it into an opaque tamper-evident string.
package ticket

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScopeClaimType is the claim type carrying one granted scope.
const ScopeClaimType = "urn:oauth:scope"

// NameClaimType is the claim type carrying the display name of the subject.
const NameClaimType = "name"

// AuthType tags the authentication context a ticket was issued in.
type AuthType string

const (
	// AuthTypeSession marks a ticket that proves a logged in browser session.
	AuthTypeSession AuthType = "session"
	// AuthTypeBearer marks a ticket handed to a client (codes and tokens).
	AuthTypeBearer AuthType = "bearer"
)

// Purpose says what a ticket may be used for. Decoders check it so that, for
// example, an access token cannot be replayed as a refresh token.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeCode    Purpose = "code"
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Claim is a single name/value pair asserted about the subject.
type Claim struct {
	Type  string `json:"t"`
	Value string `json:"v"`
}

// Identity is what the session authenticator knows about the logged in owner.
type Identity struct {
	Subject string
	Claims  []Claim
}

// Ticket is never mutated after creation; Derive builds a new one.
type Ticket struct {
	ID        string
	Subject   string
	ClientID  string
	Claims    []Claim
	AuthType  AuthType
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// New creates a ticket for identity with a fresh ID.
func New(identity Identity, clientID string, authType AuthType, purpose Purpose, issuedAt time.Time, lifetime time.Duration) *Ticket {
	return &Ticket{
		ID:        uuid.New().String(),
		Subject:   identity.Subject,
		ClientID:  clientID,
		Claims:    slices.Clone(identity.Claims),
		AuthType:  authType,
		Purpose:   purpose,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lifetime),
	}
}

// Derive returns a new bearer ticket for the same subject, client and claims
// with its own ID, purpose and expiry.
func (t *Ticket) Derive(purpose Purpose, issuedAt time.Time, lifetime time.Duration) *Ticket {
	return New(t.Identity(), t.ClientID, AuthTypeBearer, purpose, issuedAt, lifetime)
}

// Identity returns the subject and claims of the ticket.
func (t *Ticket) Identity() Identity {
	return Identity{Subject: t.Subject, Claims: slices.Clone(t.Claims)}
}

// Scopes returns the granted scopes in the order they were added.
func (t *Ticket) Scopes() []string {
	scopes := make([]string, 0)
	for _, c := range t.Claims {
		if c.Type == ScopeClaimType {
			scopes = append(scopes, c.Value)
		}
	}
	return scopes
}

// Scope returns the granted scopes as a space separated string.
func (t *Ticket) Scope() string {
	return strings.Join(t.Scopes(), " ")
}

// Expired reports whether the ticket is past its expiry at now.
func (t *Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ParseScope splits a whitespace delimited scope parameter, dropping empty
// and repeated entries. An empty parameter yields no scopes.
func ParseScope(scope string) []string {
	scopes := make([]string, 0)
	for _, s := range strings.Fields(scope) {
		if !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// WithScopes returns a copy of identity with one scope claim per scope added.
func WithScopes(identity Identity, scopes []string) Identity {
	claims := make([]Claim, 0, len(identity.Claims)+len(scopes))
	for _, c := range identity.Claims {
		if c.Type != ScopeClaimType {
			claims = append(claims, c)
		}
	}
	for _, s := range scopes {
		claims = append(claims, Claim{Type: ScopeClaimType, Value: s})
	}
	return Identity{Subject: identity.Subject, Claims: claims}
}

// Name returns the display name claim, falling back to the subject.
func (i Identity) Name() string {
	for _, c := range i.Claims {
		if c.Type == NameClaimType && c.Value != "" {
			return c.Value
		}
	}
	return i.Subject
}
