package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	EnvAPIKey    = "MAPQUEST_API_KEY"
	EnvAPISecret = "MAPQUEST_API_SECRET"
)

// Credentials is the MapQuest consumer key/secret pair used to sign
// nearby-places requests.
type Credentials struct {
	APIKey    string
	APISecret string
}

func (c Credentials) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvAPIKey)
	}
	return nil
}

// String never prints the secret.
func (c Credentials) String() string {
	if c.APIKey == "" {
		return "<none>"
	}
	return fmt.Sprintf("key=%s secret=%s", mask(c.APIKey), mask(c.APISecret))
}

// CredentialsFromEnv reads the key pair from the process environment.
func CredentialsFromEnv() Credentials {
	v := viper.New()
	_ = v.BindEnv("api_key", EnvAPIKey)
	_ = v.BindEnv("api_secret", EnvAPISecret)
	return Credentials{
		APIKey:    v.GetString("api_key"),
		APISecret: v.GetString("api_secret"),
	}
}

// merge keeps c's values and fills the blanks from fallback.
func (c Credentials) merge(fallback Credentials) Credentials {
	if c.APIKey == "" {
		c.APIKey = fallback.APIKey
	}
	if c.APISecret == "" {
		c.APISecret = fallback.APISecret
	}
	return c
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
