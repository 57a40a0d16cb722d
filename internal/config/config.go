package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StoreConfig
	LogConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	IsDev() bool
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Store
	Logging
}

var _ Config = mainConfig{}

// New loads a .env file when one is present and then parses the process
// environment. Values already set in the environment win over the file.
func New() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config Parse] %w", err)
	}
	return c, nil
}
