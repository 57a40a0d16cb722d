package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-authcode-server/grant"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/sessions"
	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// ConsentPageData contains data for rendering the consent page
type ConsentPageData struct {
	ClientName string
	UserName   string
	Scopes     []string
	CSRFToken  string
	Fields     url.Values // authorize parameters carried through the form
}

// AuthorizeErrorPageData is rendered when the client cannot be trusted with a redirect.
type AuthorizeErrorPageData struct {
	Title   string
	Message string
}

// Authorize handles GET and POST /authorize.
// GET shows the consent page to a signed in user. POST records the decision.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		if err := r.ParseForm(); err != nil {
			s.renderAuthorizeError(w, apperrors.ErrInvalidRequest)
			return
		}
		req := authorizeRequestFromForm(r)

		session, signedIn := s.sessions.Current(r)
		var identity *ticket.Identity
		if signedIn {
			identity = &session.Identity
		}

		auth, err := s.grant.Authorize(r.Context(), req, identity)
		if err != nil {
			s.handleAuthorizeError(w, r, err)
			return
		}

		if auth.State == grant.StateAwaitingAuthentication {
			http.Redirect(w, r, loginURL(req), http.StatusFound)
			return
		}

		if r.Method == http.MethodGet {
			s.render(w, templateConsent, http.StatusOK, ConsentPageData{
				ClientName: auth.Client.DisplayName(),
				UserName:   session.Identity.Name(),
				Scopes:     auth.Scopes,
				CSRFToken:  session.ID,
				Fields:     req.Query(),
			})
			return
		}

		s.consentSubmission(w, r, req, session)
	}
}

func (s *Server) consentSubmission(w http.ResponseWriter, r *http.Request, req grant.AuthorizeRequest, session *sessions.Session) {
	csrfToken := r.PostForm.Get(paramCSRFToken)
	if subtle.ConstantTimeCompare([]byte(csrfToken), []byte(session.ID)) != 1 {
		log.Warn().Str("client_id", req.ClientID).Msg("consent submitted with invalid csrf token")
		s.render(w, templateAuthorizeError, http.StatusForbidden, AuthorizeErrorPageData{
			Title:   "Request expired",
			Message: "The consent form is no longer valid. Start the sign in again from the application.",
		})
		return
	}

	var granted bool
	switch {
	case r.PostForm.Has(submitLogin):
		s.sessions.SignOut(w, r)
		http.Redirect(w, r, loginURL(req), http.StatusFound)
		return
	case r.PostForm.Has(submitGrant):
		granted = true
	case r.PostForm.Has(submitDeny):
		granted = false
	default:
		s.renderAuthorizeError(w, apperrors.ErrInvalidRequest)
		return
	}

	auth, err := s.grant.Consent(r.Context(), req, &session.Identity, granted)
	if err != nil {
		s.handleAuthorizeError(w, r, err)
		return
	}

	log.Info().
		Str("client_id", req.ClientID).
		Str("subject", session.Identity.Subject).
		Str("state", auth.State.String()).
		Msg("consent recorded")
	http.Redirect(w, r, auth.RedirectURL, http.StatusFound)
}

// handleAuthorizeError redirects errors the client may see and renders the
// rest in band. Unknown clients and bad redirect URIs never redirect.
func (s *Server) handleAuthorizeError(w http.ResponseWriter, r *http.Request, err error) {
	var redirectErr *grant.RedirectError
	if apperrors.As(err, &redirectErr) {
		http.Redirect(w, r, redirectErr.RedirectURL, http.StatusFound)
		return
	}
	s.renderAuthorizeError(w, err)
}

func (s *Server) renderAuthorizeError(w http.ResponseWriter, err error) {
	data := AuthorizeErrorPageData{Title: "Invalid request"}
	status := http.StatusBadRequest

	switch {
	case apperrors.Is(err, apperrors.ErrUnknownClient):
		data.Message = "The application is not registered with this server."
	case apperrors.Is(err, apperrors.ErrInvalidRedirectURI):
		data.Message = "The redirect address does not match the one registered for the application."
	case apperrors.Is(err, apperrors.ErrInvalidRequest), apperrors.Is(err, apperrors.ErrAuthenticationRequired):
		data.Message = "The authorization request is incomplete."
	default:
		log.Err(err).Msg("authorize request failed")
		data.Title = "Something went wrong"
		data.Message = "The server could not complete the request."
		status = http.StatusInternalServerError
	}
	s.render(w, templateAuthorizeError, status, data)
}

func authorizeRequestFromForm(r *http.Request) grant.AuthorizeRequest {
	return grant.AuthorizeRequest{
		ResponseType: oauth2.ResponseType(r.Form.Get("response_type")),
		ClientID:     r.Form.Get("client_id"),
		RedirectURI:  r.Form.Get("redirect_uri"),
		Scope:        r.Form.Get("scope"),
		State:        r.Form.Get("state"),
	}
}

// loginURL sends the user to the login page and back to the same authorize request.
func loginURL(req grant.AuthorizeRequest) string {
	returnURL := RouteAuthorize + "?" + req.Query().Encode()
	return RouteLogin + "?" + url.Values{paramReturnURL: {returnURL}}.Encode()
}

// Token handles POST /token for the authorization_code and refresh_token grants.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.writeTokenError(w, "", apperrors.Wrapf(apperrors.ErrInvalidRequest, "parsing form: %v", err))
			return
		}

		creds, err := clientCredentials(r)
		if err != nil {
			s.writeTokenError(w, creds.id, err)
			return
		}
		if creds.conflict != nil {
			// Bad credentials are reported as invalid_client even when the
			// request is also malformed.
			if err := s.grant.AuthenticateClient(creds.id, creds.secret); err != nil {
				s.writeTokenError(w, creds.id, err)
				return
			}
			s.writeTokenError(w, creds.id, creds.conflict)
			return
		}

		tokenReq := oauth2.TokenRequest{
			GrantType:    oauth2.GrantType(r.PostForm.Get("grant_type")),
			ClientID:     creds.id,
			ClientSecret: creds.secret,
			Code:         r.PostForm.Get("code"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			RefreshToken: r.PostForm.Get("refresh_token"),
		}

		tokenGrant, err := s.grant.Exchange(r.Context(), tokenReq)
		if err != nil {
			s.writeTokenError(w, creds.id, err)
			return
		}

		log.Info().
			Str("client_id", tokenGrant.ClientID).
			Str("subject", tokenGrant.Subject).
			Str("grant_type", string(tokenReq.GrantType)).
			Str("state", tokenGrant.State.String()).
			Msg("tokens issued")

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		_ = json.NewEncoder(w).Encode(tokenGrant.Response)
	}
}

// tokenClientCredentials are the client credentials of a token request.
// conflict is set when the client used more than one authentication method;
// id and secret then hold the Basic credentials.
type tokenClientCredentials struct {
	id       string
	secret   string
	conflict error
}

// clientCredentials reads client_secret_basic or client_secret_post
// credentials.
func clientCredentials(r *http.Request) (tokenClientCredentials, error) {
	formID := r.PostForm.Get("client_id")
	formSecret := r.PostForm.Get("client_secret")

	user, pass, ok := r.BasicAuth()
	if !ok {
		return tokenClientCredentials{id: formID, secret: formSecret}, nil
	}

	// RFC 6749 section 2.3.1 form encodes both parts before base64.
	clientID, err := url.QueryUnescape(user)
	if err != nil {
		return tokenClientCredentials{}, apperrors.Wrapf(apperrors.ErrInvalidRequest, "decoding basic client id")
	}
	clientSecret, err := url.QueryUnescape(pass)
	if err != nil {
		return tokenClientCredentials{id: clientID}, apperrors.Wrapf(apperrors.ErrInvalidRequest, "decoding basic client secret")
	}

	creds := tokenClientCredentials{id: clientID, secret: clientSecret}
	switch {
	case formSecret != "":
		creds.conflict = apperrors.Wrapf(apperrors.ErrInvalidRequest, "client authenticated with more than one method")
	case formID != "" && formID != clientID:
		creds.conflict = apperrors.Wrapf(apperrors.ErrInvalidRequest, "client_id does not match basic credentials")
	}
	return creds, nil
}

func (s *Server) writeTokenError(w http.ResponseWriter, clientID string, err error) {
	errResp, status := oauth2.NewErrorResponse(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("client_id", clientID).Str("oauth_error", errResp.Error).Msg("token request rejected")

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", s.config.GetAppName()))
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSONError(w, errResp.Error, errResp.ErrorDescription, status)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(oauth2.ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}
