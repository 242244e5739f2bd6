package di

import (
	"context"
	"testing"

	"volunteer-hub/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_InitializeRequiresConfig(t *testing.T) {
	c := NewContainer(logger.NoopLogger{})

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration must be loaded")
	assert.Nil(t, c.GetAuthModule())
	assert.Nil(t, c.GetVolunteerModule())
}

func TestContainer_LoadConfigRequiresSecretAndURI(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("MONGODB_URI", "")

	c := NewContainer(logger.NoopLogger{})
	assert.Error(t, c.LoadConfig())
}

func TestContainer_EmptyLifecycle(t *testing.T) {
	c := NewContainer(nil)
	require.NotNil(t, c.Logger)

	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
