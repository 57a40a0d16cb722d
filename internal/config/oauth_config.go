package config

import "time"

type OAuthConfig interface {
	GetAuthCodeTimeout() time.Duration
	GetCodeGenerationLength() int
	GetCodeCleanupInterval() time.Duration
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
	GetClientsFile() string
	GetClientsJSON() string
}

type OAuth struct {
	AuthCodeTimeout     time.Duration `env:"AUTH_CODE_TTL" envDefault:"5m"`
	CodeLength          int           `env:"CODE_LENGTH" envDefault:"32"`
	CodeCleanupInterval time.Duration `env:"CODE_CLEANUP_INTERVAL" envDefault:"1m"`
	AccessTokenExpiry   time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry  time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
	ClientsFile         string        `env:"CLIENTS_FILE"`
	ClientsJSON         string        `env:"CLIENTS"`
}

var _ OAuthConfig = OAuth{}

const minCodeLength = 16 // 128 bits

func (o OAuth) GetAuthCodeTimeout() time.Duration {
	return o.AuthCodeTimeout
}

func (o OAuth) GetCodeGenerationLength() int {
	if o.CodeLength < minCodeLength {
		return minCodeLength
	}
	return o.CodeLength
}

func (o OAuth) GetCodeCleanupInterval() time.Duration {
	return o.CodeCleanupInterval
}

func (o OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return o.AccessTokenExpiry
}

func (o OAuth) GetDefaultRefreshTokenExpiry() time.Duration {
	return o.RefreshTokenExpiry
}

// GetClientsFile is the path of the JSON client registry loaded at startup.
func (o OAuth) GetClientsFile() string {
	return o.ClientsFile
}

// GetClientsJSON holds an inline JSON client registry, used when no file is set.
func (o OAuth) GetClientsJSON() string {
	return o.ClientsJSON
}
