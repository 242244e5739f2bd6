package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	SameSiteLax    = "Lax"
	SameSiteStrict = "Strict"
	SameSiteNone   = "None"
)

// Config holds all configuration for the auth module.
type Config struct {
	// JWT Configuration
	JWTSecretKey string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"volunteer-hub"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// Environment decides the cookie defaults; "production" means cross-site.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Cookie Configuration
	CookieName   string `env:"COOKIE_NAME" envDefault:"token"`
	CookiePath   string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`
	// Empty values fall back to the environment defaults.
	CookieSecure   string `env:"COOKIE_SECURE" envDefault:""`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:""`
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load auth configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parsed values and normalizes the SameSite mode.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	if c.JWTIssuer == "" {
		return errors.New("jwt_issuer cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name cannot be empty")
	}
	if c.CookieSecure != "" {
		if _, err := strconv.ParseBool(c.CookieSecure); err != nil {
			return fmt.Errorf("cookie_secure must be a boolean: %w", err)
		}
	}
	if c.CookieSameSite != "" {
		normalized, ok := normalizeSameSite(c.CookieSameSite)
		if !ok {
			return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
		}
		c.CookieSameSite = normalized
	}
	if c.SameSite() == SameSiteNone && !c.Secure() {
		return errors.New("cookie_same_site 'None' requires a secure cookie")
	}
	return nil
}

// IsProduction reports whether the service runs behind a cross-site front-end.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Secure returns the Secure attribute of the session cookie.
func (c *Config) Secure() bool {
	if c.CookieSecure != "" {
		v, err := strconv.ParseBool(c.CookieSecure)
		if err == nil {
			return v
		}
	}
	return c.IsProduction()
}

// SameSite returns the SameSite attribute of the session cookie.
func (c *Config) SameSite() string {
	if c.CookieSameSite != "" {
		if v, ok := normalizeSameSite(c.CookieSameSite); ok {
			return v
		}
	}
	if c.IsProduction() {
		return SameSiteNone
	}
	return SameSiteStrict
}

func normalizeSameSite(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return SameSiteLax, true
	case "strict":
		return SameSiteStrict, true
	case "none":
		return SameSiteNone, true
	}
	return "", false
}
