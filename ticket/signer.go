package ticket

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACKeyLength is the shortest secret accepted for HS256 signing.
const MinHMACKeyLength = 32

// Signer holds the key material used to sign and verify tickets.
type Signer interface {
	// Sign serialises claims into a signed compact JWT.
	Sign(claims jwt.Claims) (string, error)

	// VerificationKey returns the key that verifies token. It is used as the
	// jwt.Keyfunc so the algorithm in the header is checked against the key.
	VerificationKey(token *jwt.Token) (any, error)

	// SigningMethod returns the JWT signing method used.
	SigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates a new HMAC signer with the given secret.
func NewHMACSigner(secret []byte) (*HMACSigner, error) {
	if len(secret) < MinHMACKeyLength {
		return nil, fmt.Errorf("[NewHMACSigner] secret must be at least %d bytes, got %d", MinHMACKeyLength, len(secret))
	}
	return &HMACSigner{secret: append([]byte(nil), secret...)}, nil
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("[HMACSigner Sign] failed to sign ticket: %w", err)
	}
	return signed, nil
}

func (h *HMACSigner) VerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

// KeyPairSigner implements Signer using an RSA key pair (RS256).
type KeyPairSigner struct {
	keyPair *KeyPair
}

// NewKeyPairSigner creates a new key pair signer with the given key pair.
func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{keyPair: keyPair}
}

func (s *KeyPairSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.keyPair.KeyID != "" {
		token.Header["kid"] = s.keyPair.KeyID
	}

	signed, err := token.SignedString(s.keyPair.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("[KeyPairSigner Sign] failed to sign ticket: %w", err)
	}
	return signed, nil
}

func (s *KeyPairSigner) VerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if kid, ok := token.Header["kid"].(string); ok && s.keyPair.KeyID != "" && kid != s.keyPair.KeyID {
		return nil, fmt.Errorf("unknown key id: %s", kid)
	}
	return s.keyPair.PublicKey, nil
}

func (s *KeyPairSigner) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

// PublicKey exposes the verification half of the pair.
func (s *KeyPairSigner) PublicKey() *rsa.PublicKey {
	return s.keyPair.PublicKey
}
