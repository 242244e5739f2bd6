package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// DefaultOwnershipRule lets only the owning organization mutate an opportunity.
const DefaultOwnershipRule = "auth.email == resource.organizationEmail"

// Config holds all configuration for the volunteer module.
type Config struct {
	// MongoDB Configuration
	MongoDBURI            string `env:"MONGODB_URI,required"`
	DatabaseName          string `env:"DATABASE_NAME" envDefault:"volunteer_hub"`
	OpportunityCollection string `env:"OPPORTUNITY_COLLECTION" envDefault:"volunteer"`
	ApplicationCollection string `env:"APPLICATION_COLLECTION" envDefault:"becomeVolunteer"`

	// Listing
	SearchFields []string `env:"SEARCH_FIELDS" envSeparator:"," envDefault:"title"`
	MaxPageSize  int      `env:"MAX_PAGE_SIZE" envDefault:"100"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Ownership policy on PATCH and DELETE of opportunities
	EnforceOwnership bool   `env:"ENFORCE_OWNERSHIP" envDefault:"true"`
	OwnershipRule    string `env:"OWNERSHIP_RULE" envDefault:"auth.email == resource.organizationEmail"`
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load volunteer configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parsed values and fills empty optional ones.
func (c *Config) Validate() error {
	if c.DatabaseName == "" {
		return errors.New("database_name cannot be empty")
	}
	if c.OpportunityCollection == "" || c.ApplicationCollection == "" {
		return errors.New("collection names cannot be empty")
	}
	if c.MaxPageSize <= 0 {
		return errors.New("max_page_size must be positive")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}

	fields := make([]string, 0, len(c.SearchFields))
	for _, f := range c.SearchFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = []string{"title"}
	}
	c.SearchFields = fields

	if strings.TrimSpace(c.OwnershipRule) == "" {
		c.OwnershipRule = DefaultOwnershipRule
	}
	return nil
}

// Default returns a configuration for tests and local wiring.
func Default() *Config {
	return &Config{
		DatabaseName:          "volunteer_hub",
		OpportunityCollection: "volunteer",
		ApplicationCollection: "becomeVolunteer",
		SearchFields:          []string{"title"},
		MaxPageSize:           100,
		RequestTimeout:        10 * time.Second,
		EnforceOwnership:      true,
		OwnershipRule:         DefaultOwnershipRule,
	}
}
