package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetTicketSigningKey() string
	GetTicketSigningKeyFile() string
	GetTicketSigningKeyID() string
	GetAllowInsecureHTTP() bool
}

type Security struct {
	MaxSessionAge        time.Duration `env:"SESSION_MAX_AGE" envDefault:"30m"`
	TicketSigningKey     string        `env:"TICKET_SIGNING_KEY"`
	TicketSigningKeyFile string        `env:"TICKET_SIGNING_KEY_FILE"`
	TicketSigningKeyID   string        `env:"TICKET_SIGNING_KEY_ID" envDefault:"ticket-key-1"`
	AllowInsecureHTTP    *bool         `env:"ALLOW_INSECURE_HTTP"`
}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}

// GetTicketSigningKey is the HMAC secret used when no key file is configured.
func (s Security) GetTicketSigningKey() string {
	return s.TicketSigningKey
}

// GetTicketSigningKeyFile points at a PEM encoded RSA private key. When set,
// tickets are signed with RS256 instead of HMAC.
func (s Security) GetTicketSigningKeyFile() string {
	return s.TicketSigningKeyFile
}

func (s Security) GetTicketSigningKeyID() string {
	return s.TicketSigningKeyID
}

func (s Security) GetAllowInsecureHTTP() bool {
	if s.AllowInsecureHTTP == nil {
		return false
	}
	return *s.AllowInsecureHTTP
}

// GetAllowInsecureHTTP on the composed config defaults to true in DEV so that
// http://localhost redirect URIs work during development.
func (c mainConfig) GetAllowInsecureHTTP() bool {
	if c.Security.AllowInsecureHTTP == nil {
		return c.IsDev()
	}
	return *c.Security.AllowInsecureHTTP
}
