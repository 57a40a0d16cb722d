// Package clients holds the registry of OAuth2 clients allowed to request
// authorization codes. The registry is loaded once at startup and never
// changes afterwards.
package clients

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Client struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Secret      string `json:"secret,omitempty"`     // plain text secret, compared in constant time
	SecretHash  string `json:"secretHash,omitempty"` // bcrypt hash, takes precedence over Secret
	RedirectURI string `json:"redirectUri"`
}

// DisplayName returns the name shown on the consent page.
func (c *Client) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

func (c *Client) validate(allowInsecureHTTP bool) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("client id is required")
	}
	if c.Secret == "" && c.SecretHash == "" {
		return fmt.Errorf("client %s: a secret or secretHash is required", c.ID)
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("client %s: redirectUri is required", c.ID)
	}

	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return fmt.Errorf("client %s: invalid redirectUri: %w", c.ID, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("client %s: redirectUri must be absolute", c.ID)
	}
	if u.Fragment != "" || strings.Contains(c.RedirectURI, "#") {
		return fmt.Errorf("client %s: redirectUri must not contain a fragment", c.ID)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !allowInsecureHTTP {
			return fmt.Errorf("client %s: redirectUri must use https", c.ID)
		}
	default:
		return fmt.Errorf("client %s: unsupported redirectUri scheme %q", c.ID, u.Scheme)
	}
	return nil
}

// Parse decodes a JSON array of client definitions.
func Parse(data []byte) ([]Client, error) {
	var list []Client
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("[clients Parse] decoding client list: %w", err)
	}
	return list, nil
}

// Load reads a JSON array of client definitions from path.
func Load(path string) ([]Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[clients Load] reading %s: %w", path, err)
	}
	return Parse(data)
}
