// Package codes issues and redeems single-use authorization codes.
//
// A code is an opaque random string mapped to an encoded code ticket. Redeem
// removes the mapping atomically, so at most one caller ever gets the ticket
// back, and an entry older than the configured TTL is never returned.
package codes

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/ticket"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultCodeLength = 32

	maxIssueAttempts = 3
)

var errCodeCollision = errors.New("code collision")

type Store interface {
	// Issue stores t and returns a fresh code for it.
	Issue(ctx context.Context, t *ticket.Ticket) (string, error)

	// Redeem returns the ticket for code and removes it. Fails with
	// ErrCodeNotFound for unknown or used codes and ErrCodeExpired once the
	// TTL has passed.
	Redeem(ctx context.Context, code string) (*ticket.Ticket, error)

	// Cleanup drops expired entries and reports how many were removed.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}

type Option func(*options)

type options struct {
	ttl        time.Duration
	codeLength int
	nowFunc    func() time.Time
}

// WithTTL sets how long an issued code stays redeemable.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCodeLength sets the number of random bytes in a code.
func WithCodeLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.codeLength = n
		}
	}
}

func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *options) {
		o.nowFunc = nowFunc
	}
}

// entryCodec is shared by the backends: it owns code generation and the
// conversion between tickets and their stored form.
type entryCodec struct {
	codec ticket.Codec
	options
}

func newEntryCodec(codec ticket.Codec, opts []Option) entryCodec {
	c := entryCodec{
		codec: codec,
		options: options{
			ttl:        DefaultTTL,
			codeLength: DefaultCodeLength,
			nowFunc:    time.Now,
		},
	}
	for _, opt := range opts {
		opt(&c.options)
	}
	return c
}

// GenerateCode returns n bytes from crypto/rand, base64url encoded.
func GenerateCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[GenerateCode] %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c entryCodec) encode(t *ticket.Ticket) (string, error) {
	if t == nil {
		return "", errors.New("nil ticket")
	}
	return c.codec.Encode(t)
}

func (c entryCodec) expired(issuedAt time.Time) bool {
	return !c.nowFunc().Before(issuedAt.Add(c.ttl))
}

// decode turns a removed entry back into a ticket, applying the store TTL
// before the ticket's own expiry.
func (c entryCodec) decode(encoded string, issuedAt time.Time) (*ticket.Ticket, error) {
	if c.expired(issuedAt) {
		return nil, apperrors.ErrCodeExpired
	}
	t, err := c.codec.Decode(encoded)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTicketExpired) {
			return nil, apperrors.Join(apperrors.ErrCodeExpired, err)
		}
		return nil, err
	}
	return t, nil
}
