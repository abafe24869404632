// server/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("OSRM_BASE_URL", "http://osrm.internal:5000")

	// No config file in a temp dir: env vars and defaults only.
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "http://osrm.internal:5000", cfg.OSRM.BaseURL)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "disaster_relief", cfg.Mongo.DBName)
	assert.Equal(t, "24h", cfg.JWT.Expiration)
	assert.Equal(t, 10, cfg.OSRM.TimeoutSeconds)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
}
