package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "volunteer_hub", cfg.DatabaseName)
	assert.Equal(t, "volunteer", cfg.OpportunityCollection)
	assert.Equal(t, "becomeVolunteer", cfg.ApplicationCollection)
	assert.Equal(t, []string{"title"}, cfg.SearchFields)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.EnforceOwnership)
	assert.Equal(t, DefaultOwnershipRule, cfg.OwnershipRule)
}

func TestLoadConfig_SearchFields(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SEARCH_FIELDS", "title, category,,location")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "category", "location"}, cfg.SearchFields)
}

func TestLoadConfig_MissingURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	require.NoError(t, os.Unsetenv("MONGODB_URI"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxPageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SearchFields = []string{" "}
	cfg.OwnershipRule = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"title"}, cfg.SearchFields)
	assert.Equal(t, DefaultOwnershipRule, cfg.OwnershipRule)
}
