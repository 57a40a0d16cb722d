// Command democlient walks through the authorization code flow against a
// running server: it prints an authorize URL, receives the callback, exchanges
// the code and then refreshes the access token once.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type demoConfig struct {
	ServerURL    string   `env:"DEMO_SERVER_URL" envDefault:"http://localhost:8080"`
	ClientID     string   `env:"DEMO_CLIENT_ID" envDefault:"demo"`
	ClientSecret string   `env:"DEMO_CLIENT_SECRET" envDefault:"demo-secret"`
	ListenAddr   string   `env:"DEMO_LISTEN_ADDR" envDefault:"localhost:9000"`
	Scopes       []string `env:"DEMO_SCOPES" envSeparator:" " envDefault:"read write"`
}

func (c demoConfig) redirectURL() string {
	return "http://" + c.ListenAddr + "/callback"
}

func (c demoConfig) oauthConfig() *oauth2.Config {
	serverURL := strings.TrimRight(c.ServerURL, "/")
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.redirectURL(),
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   serverURL + "/authorize",
			TokenURL:  serverURL + "/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("demo client failed")
	}
}

func run() error {
	_ = godotenv.Load()
	var c demoConfig
	if err := env.Parse(&c); err != nil {
		return fmt.Errorf("[democlient] %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf := c.oauthConfig()
	state, err := randomState()
	if err != nil {
		return err
	}

	codes := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", callbackHandler(state, codes))
	srv := &http.Server{Addr: c.ListenAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("callback listener stopped")
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL in a browser:\n\n  %s\n\n", conf.AuthCodeURL(state))

	var code string
	select {
	case code = <-codes:
	case <-ctx.Done():
		return ctx.Err()
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("[democlient] exchanging code: %w", err)
	}
	printToken("exchanged code", token)

	// Force a refresh by handing the token source an expired token.
	token.Expiry = time.Now().Add(-time.Minute)
	refreshed, err := conf.TokenSource(ctx, token).Token()
	if err != nil {
		return fmt.Errorf("[democlient] refreshing token: %w", err)
	}
	printToken("refreshed", refreshed)
	return nil
}

func callbackHandler(state string, codes chan<- string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			log.Warn().Str("error", errCode).Msg("authorization failed")
			fmt.Fprintf(w, "Authorization failed: %s\n", errCode)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		select {
		case codes <- code:
			fmt.Fprintln(w, "Authorization complete, you can close this window.")
		default:
			http.Error(w, "code already received", http.StatusConflict)
		}
	}
}

func printToken(label string, token *oauth2.Token) {
	log.Info().
		Str("token_type", token.Type()).
		Time("expiry", token.Expiry).
		Bool("has_refresh_token", token.RefreshToken != "").
		Interface("scope", token.Extra("scope")).
		Msg(label)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[democlient] generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
