package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
)

// DefaultIssuer is stamped into tickets when no issuer is configured.
const DefaultIssuer = "go-authcode-server"

// Codec turns tickets into opaque strings and back. Decode fails with
// ErrMalformedTicket for anything not produced by the same key, and with
// ErrTicketExpired once the ticket has lapsed.
type Codec interface {
	Encode(t *Ticket) (string, error)
	Decode(encoded string) (*Ticket, error)
}

type ticketClaims struct {
	jwt.RegisteredClaims
	ClientID string   `json:"cid,omitempty"`
	AuthType AuthType `json:"ctx"`
	Purpose  Purpose  `json:"use"`
	Claims   []Claim  `json:"clm,omitempty"`
}

// JWTCodec encodes tickets as signed compact JWTs.
type JWTCodec struct {
	signer  Signer
	issuer  string
	nowFunc func() time.Time
}

type JWTCodecOption func(*JWTCodec)

// WithNowTime overrides the clock used for expiry checks.
func WithNowTime(nowFunc func() time.Time) JWTCodecOption {
	return func(c *JWTCodec) {
		c.nowFunc = nowFunc
	}
}

// WithIssuer sets the iss claim written and required on decode.
func WithIssuer(issuer string) JWTCodecOption {
	return func(c *JWTCodec) {
		c.issuer = issuer
	}
}

// NewJWTCodec creates a codec that signs with signer.
func NewJWTCodec(signer Signer, opts ...JWTCodecOption) *JWTCodec {
	c := &JWTCodec{
		signer:  signer,
		issuer:  DefaultIssuer,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *JWTCodec) Encode(t *Ticket) (string, error) {
	if t == nil {
		return "", errors.New("[JWTCodec Encode] nil ticket")
	}
	if t.ExpiresAt.IsZero() {
		return "", errors.New("[JWTCodec Encode] ticket has no expiry")
	}

	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        t.ID,
			Issuer:    c.issuer,
			Subject:   t.Subject,
			IssuedAt:  jwt.NewNumericDate(t.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(t.ExpiresAt),
		},
		ClientID: t.ClientID,
		AuthType: t.AuthType,
		Purpose:  t.Purpose,
		Claims:   t.Claims,
	}

	encoded, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("[JWTCodec Encode] %w", err)
	}
	return encoded, nil
}

func (c *JWTCodec) Decode(encoded string) (*Ticket, error) {
	if encoded == "" {
		return nil, apperrors.ErrMalformedTicket
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.SigningMethod().Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.nowFunc),
	)

	var claims ticketClaims
	if _, err := parser.ParseWithClaims(encoded, &claims, c.signer.VerificationKey); err != nil {
		// Claims are only validated after the signature checks out, so an
		// expiry error here always concerns a genuine ticket.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Join(apperrors.ErrTicketExpired, err)
		}
		return nil, apperrors.Join(apperrors.ErrMalformedTicket, err)
	}

	if claims.ID == "" || claims.Purpose == "" || claims.IssuedAt == nil {
		return nil, apperrors.ErrMalformedTicket
	}

	return &Ticket{
		ID:        claims.ID,
		Subject:   claims.Subject,
		ClientID:  claims.ClientID,
		Claims:    claims.Claims,
		AuthType:  claims.AuthType,
		Purpose:   claims.Purpose,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
