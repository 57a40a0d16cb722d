package ticket_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newHMACCodec(t *testing.T, secret string, now func() time.Time) *ticket.JWTCodec {
	t.Helper()
	signer, err := ticket.NewHMACSigner([]byte(secret))
	require.NoError(t, err)
	return ticket.NewJWTCodec(signer, ticket.WithNowTime(now))
}

func testTicket() *ticket.Ticket {
	identity := ticket.WithScopes(ticket.Identity{
		Subject: "alice",
		Claims:  []ticket.Claim{{Type: ticket.NameClaimType, Value: "Alice"}},
	}, []string{"read", "write"})
	return ticket.New(identity, "client-1", ticket.AuthTypeBearer, ticket.PurposeCode, testNow, 5*time.Minute)
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := newHMACCodec(t, testSecret, func() time.Time { return testNow.Add(time.Minute) })
	original := testTicket()

	encoded, err := codec.Encode(original)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, original.ID, decoded.ID)
	require.Equal(t, "alice", decoded.Subject)
	require.Equal(t, "client-1", decoded.ClientID)
	require.Equal(t, ticket.AuthTypeBearer, decoded.AuthType)
	require.Equal(t, ticket.PurposeCode, decoded.Purpose)
	require.Equal(t, original.Claims, decoded.Claims)
	require.Equal(t, []string{"read", "write"}, decoded.Scopes())
	require.True(t, original.IssuedAt.Equal(decoded.IssuedAt))
	require.True(t, original.ExpiresAt.Equal(decoded.ExpiresAt))
}

func TestJWTCodec_Decode(t *testing.T) {
	codec := newHMACCodec(t, testSecret, func() time.Time { return testNow })
	encoded, err := codec.Encode(testTicket())
	require.NoError(t, err)

	t.Run("empty string", func(t *testing.T) {
		_, err := codec.Decode("")
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode("not-a-ticket")
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("flipped payload character", func(t *testing.T) {
		parts := strings.Split(encoded, ".")
		require.Len(t, parts, 3)
		payload := []byte(parts[1])
		mid := len(payload) / 2
		if payload[mid] == 'A' {
			payload[mid] = 'B'
		} else {
			payload[mid] = 'A'
		}
		tampered := strings.Join([]string{parts[0], string(payload), parts[2]}, ".")

		_, err := codec.Decode(tampered)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("different key", func(t *testing.T) {
		other := newHMACCodec(t, "fedcba9876543210fedcba9876543210", func() time.Time { return testNow })
		_, err := other.Decode(encoded)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("different issuer", func(t *testing.T) {
		signer, err := ticket.NewHMACSigner([]byte(testSecret))
		require.NoError(t, err)
		other := ticket.NewJWTCodec(signer, ticket.WithIssuer("someone-else"), ticket.WithNowTime(func() time.Time { return testNow }))
		_, err = other.Decode(encoded)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("unsigned token", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"jti": "x", "sub": "alice", "iss": ticket.DefaultIssuer, "use": "access",
			"iat": testNow.Unix(), "exp": testNow.Add(time.Hour).Unix(),
		})
		unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Decode(unsigned)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})
}

func TestJWTCodec_Expiry(t *testing.T) {
	now := testNow
	codec := newHMACCodec(t, testSecret, func() time.Time { return now })
	encoded, err := codec.Encode(testTicket())
	require.NoError(t, err)

	now = testNow.Add(5*time.Minute - time.Second)
	_, err = codec.Decode(encoded)
	require.NoError(t, err)

	now = testNow.Add(5 * time.Minute)
	_, err = codec.Decode(encoded)
	require.ErrorIs(t, err, apperrors.ErrTicketExpired)
	require.NotErrorIs(t, err, apperrors.ErrMalformedTicket)
}

func TestJWTCodec_ExpiredForeignTicket(t *testing.T) {
	foreign := newHMACCodec(t, "fedcba9876543210fedcba9876543210", func() time.Time { return testNow })
	encoded, err := foreign.Encode(testTicket())
	require.NoError(t, err)

	// A forged ticket is reported as malformed even when it has also lapsed.
	codec := newHMACCodec(t, testSecret, func() time.Time { return testNow.Add(time.Hour) })
	_, err = codec.Decode(encoded)
	require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	require.NotErrorIs(t, err, apperrors.ErrTicketExpired)
}

func TestJWTCodec_EncodeRequiresExpiry(t *testing.T) {
	codec := newHMACCodec(t, testSecret, time.Now)
	_, err := codec.Encode(&ticket.Ticket{ID: "x", Purpose: ticket.PurposeAccess})
	require.Error(t, err)
}

func TestJWTCodec_KeyPairSigner(t *testing.T) {
	keyPair, err := ticket.GenerateRSAKeyPair("key-1", 2048)
	require.NoError(t, err)

	reloaded, err := ticket.LoadKeyPairFromPEM("key-1", keyPair.ExportPrivateKeyPEM())
	require.NoError(t, err)
	require.True(t, keyPair.PrivateKey.Equal(reloaded.PrivateKey))

	nowFn := func() time.Time { return testNow }
	codec := ticket.NewJWTCodec(ticket.NewKeyPairSigner(keyPair), ticket.WithNowTime(nowFn))
	encoded, err := codec.Encode(testTicket())
	require.NoError(t, err)

	decoded, err := ticket.NewJWTCodec(ticket.NewKeyPairSigner(reloaded), ticket.WithNowTime(nowFn)).Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "alice", decoded.Subject)

	t.Run("hmac codec rejects rsa ticket", func(t *testing.T) {
		_, err := newHMACCodec(t, testSecret, nowFn).Decode(encoded)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})

	t.Run("other key pair rejects", func(t *testing.T) {
		other, err := ticket.GenerateRSAKeyPair("key-1", 2048)
		require.NoError(t, err)
		_, err = ticket.NewJWTCodec(ticket.NewKeyPairSigner(other), ticket.WithNowTime(nowFn)).Decode(encoded)
		require.ErrorIs(t, err, apperrors.ErrMalformedTicket)
	})
}

func TestNewHMACSigner_ShortSecret(t *testing.T) {
	_, err := ticket.NewHMACSigner([]byte("short"))
	require.Error(t, err)
}

func TestLoadKeyPairFromPEM_Invalid(t *testing.T) {
	_, err := ticket.LoadKeyPairFromPEM("k", []byte("not pem"))
	require.Error(t, err)
}
