package clients_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-authcode-server/clients"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testClientID    = "client-1"
	testSecret      = "s3cret"
	testRedirectURI = "https://app.example.com/callback"
)

func setupTestRegistry(t *testing.T) *clients.StaticRegistry {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	r, err := clients.NewRegistry([]clients.Client{
		{ID: testClientID, Name: "Example App", Secret: testSecret, RedirectURI: testRedirectURI},
		{ID: "client-2", SecretHash: string(hash), RedirectURI: "https://other.example.com/cb"},
	})
	require.NoError(t, err)
	return r
}

func TestRegistry_ValidateRedirectURI(t *testing.T) {
	r := setupTestRegistry(t)

	uri, err := r.ValidateRedirectURI(testClientID)
	require.NoError(t, err)
	require.Equal(t, testRedirectURI, uri)

	_, err = r.ValidateRedirectURI("nobody")
	require.ErrorIs(t, err, apperrors.ErrUnknownClient)
}

func TestRegistry_ValidateCredentials(t *testing.T) {
	r := setupTestRegistry(t)

	t.Run("plain secret", func(t *testing.T) {
		require.NoError(t, r.ValidateCredentials(testClientID, testSecret))
	})

	t.Run("wrong secret", func(t *testing.T) {
		require.ErrorIs(t, r.ValidateCredentials(testClientID, "nope"), apperrors.ErrInvalidClientCredentials)
	})

	t.Run("empty secret", func(t *testing.T) {
		require.ErrorIs(t, r.ValidateCredentials(testClientID, ""), apperrors.ErrInvalidClientCredentials)
	})

	t.Run("unknown client", func(t *testing.T) {
		require.ErrorIs(t, r.ValidateCredentials("nobody", testSecret), apperrors.ErrInvalidClientCredentials)
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		require.NoError(t, r.ValidateCredentials("client-2", "hashed-secret"))
		require.ErrorIs(t, r.ValidateCredentials("client-2", "wrong"), apperrors.ErrInvalidClientCredentials)
	})
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		clients []clients.Client
	}{
		{"empty id", []clients.Client{{Secret: "x", RedirectURI: testRedirectURI}}},
		{"no secret", []clients.Client{{ID: "a", RedirectURI: testRedirectURI}}},
		{"no redirect", []clients.Client{{ID: "a", Secret: "x"}}},
		{"relative redirect", []clients.Client{{ID: "a", Secret: "x", RedirectURI: "/callback"}}},
		{"fragment", []clients.Client{{ID: "a", Secret: "x", RedirectURI: "https://app.example.com/cb#frag"}}},
		{"http", []clients.Client{{ID: "a", Secret: "x", RedirectURI: "http://app.example.com/cb"}}},
		{"custom scheme", []clients.Client{{ID: "a", Secret: "x", RedirectURI: "javascript://alert(1)"}}},
		{"duplicate", []clients.Client{
			{ID: "a", Secret: "x", RedirectURI: testRedirectURI},
			{ID: "a", Secret: "y", RedirectURI: testRedirectURI},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clients.NewRegistry(tt.clients)
			require.Error(t, err)
		})
	}
}

func TestNewRegistry_AllowInsecureHTTP(t *testing.T) {
	list := []clients.Client{{ID: "dev", Secret: "x", RedirectURI: "http://localhost:8081/callback"}}

	_, err := clients.NewRegistry(list)
	require.Error(t, err)

	r, err := clients.NewRegistry(list, clients.WithAllowInsecureHTTP(true))
	require.NoError(t, err)
	uri, err := r.ValidateRedirectURI("dev")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8081/callback", uri)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.json")
	data := `[{"id":"client-1","name":"Example App","secret":"s3cret","redirectUri":"https://app.example.com/callback"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	list, err := clients.Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Example App", list[0].DisplayName())
	require.Equal(t, testRedirectURI, list[0].RedirectURI)

	_, err = clients.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = clients.Parse([]byte("{"))
	require.Error(t, err)
}
