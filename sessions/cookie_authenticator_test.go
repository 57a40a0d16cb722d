package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-authcode-server/sessions"
	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testFixture struct {
	now   time.Time
	codec ticket.Codec
	auth  *sessions.CookieAuthenticator
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{now: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)}
	signer, err := ticket.NewHMACSigner([]byte(testSecret))
	require.NoError(t, err)
	f.codec = ticket.NewJWTCodec(signer, ticket.WithNowTime(func() time.Time { return f.now }))
	f.auth = sessions.NewCookieAuthenticator(f.codec,
		sessions.WithMaxAge(30*time.Minute),
		sessions.WithNowTime(func() time.Time { return f.now }),
	)
	return f
}

// signIn returns a request carrying the cookie set by SignIn.
func (f *testFixture) signIn(t *testing.T, identity ticket.Identity) (*http.Request, *sessions.Session, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	s, err := f.auth.SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), identity)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	req.AddCookie(cookies[0])
	return req, s, cookies[0]
}

func TestCookieAuthenticator_SignInAndCurrent(t *testing.T) {
	f := setupTestFixture(t)
	identity := ticket.Identity{Subject: "alice", Claims: []ticket.Claim{{Type: ticket.NameClaimType, Value: "Alice"}}}

	req, signedIn, cookie := f.signIn(t, identity)
	require.Equal(t, sessions.DefaultCookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.False(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, 1800, cookie.MaxAge)

	current, ok := f.auth.Current(req)
	require.True(t, ok)
	require.Equal(t, signedIn.ID, current.ID)
	require.Equal(t, "alice", current.Identity.Subject)
	require.Equal(t, "Alice", current.Identity.Name())
}

func TestCookieAuthenticator_Current(t *testing.T) {
	t.Run("no cookie", func(t *testing.T) {
		f := setupTestFixture(t)
		_, ok := f.auth.Current(httptest.NewRequest(http.MethodGet, "/", nil))
		require.False(t, ok)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		f := setupTestFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessions.DefaultCookieName, Value: "forged"})
		_, ok := f.auth.Current(req)
		require.False(t, ok)
	})

	t.Run("expired session", func(t *testing.T) {
		f := setupTestFixture(t)
		req, _, _ := f.signIn(t, ticket.Identity{Subject: "alice"})
		f.now = f.now.Add(31 * time.Minute)
		_, ok := f.auth.Current(req)
		require.False(t, ok)
	})

	t.Run("bearer ticket is not a session", func(t *testing.T) {
		f := setupTestFixture(t)
		access := ticket.New(ticket.Identity{Subject: "alice"}, "c1", ticket.AuthTypeBearer, ticket.PurposeAccess, f.now, time.Hour)
		encoded, err := f.codec.Encode(access)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessions.DefaultCookieName, Value: encoded})
		_, ok := f.auth.Current(req)
		require.False(t, ok)
	})
}

func TestCookieAuthenticator_SignInRequiresSubject(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.auth.SignIn(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil), ticket.Identity{})
	require.Error(t, err)
}

func TestCookieAuthenticator_SecureBehindProxy(t *testing.T) {
	f := setupTestFixture(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	_, err := f.auth.SignIn(rec, req, ticket.Identity{Subject: "alice"})
	require.NoError(t, err)
	require.True(t, rec.Result().Cookies()[0].Secure)
}

func TestCookieAuthenticator_SignOut(t *testing.T) {
	f := setupTestFixture(t)
	rec := httptest.NewRecorder()
	f.auth.SignOut(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessions.DefaultCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Less(t, cookies[0].MaxAge, 0)
}
