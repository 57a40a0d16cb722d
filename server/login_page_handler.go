package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName   string
	ReturnURL string
	Username  string // Preserve username on error
	Error     string
}

// IndexPageData contains data for rendering the landing page
type IndexPageData struct {
	AppName  string
	SignedIn bool
	Name     string
	Subject  string
}

// LoginPage displays the login page (GET /login)
func (s *Server) LoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, templateLogin, http.StatusOK, LoginPageData{
			AppName:   s.config.GetAppName(),
			ReturnURL: safeReturnURL(r.URL.Query().Get(paramReturnURL)),
		})
	}
}

// LoginSubmission signs the user in (POST /login). Any non empty user name is
// accepted; credential checking is left to a real identity provider.
func (s *Server) LoginSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		returnURL := safeReturnURL(r.PostForm.Get(paramReturnURL))
		username := strings.TrimSpace(r.PostForm.Get(paramUsername))
		if username == "" {
			s.render(w, templateLogin, http.StatusBadRequest, LoginPageData{
				AppName:   s.config.GetAppName(),
				ReturnURL: returnURL,
				Error:     "Enter a user name.",
			})
			return
		}

		identity := ticket.Identity{
			Subject: username,
			Claims:  []ticket.Claim{{Type: ticket.NameClaimType, Value: username}},
		}
		if _, err := s.sessions.SignIn(w, r, identity); err != nil {
			log.Err(err).Msg("failed to start session")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		log.Info().Str("subject", username).Msg("user signed in")
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// Logout clears the session cookie (GET /logout)
func (s *Server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.SignOut(w, r)

		target := RouteLogin
		if raw := r.URL.Query().Get(paramReturnURL); raw != "" {
			target = safeReturnURL(raw)
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (s *Server) Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := IndexPageData{AppName: s.config.GetAppName()}
		if session, ok := s.sessions.Current(r); ok {
			data.SignedIn = true
			data.Name = session.Identity.Name()
			data.Subject = session.Identity.Subject
		}
		s.render(w, templateIndex, http.StatusOK, data)
	}
}

func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// safeReturnURL only lets through local absolute paths so the login page
// cannot be used as an open redirect.
func safeReturnURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return RouteIndex
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return RouteIndex
	}
	return raw
}
