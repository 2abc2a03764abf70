package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "recipe_item_DB", cfg.Store.Collection)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Compat.EmptyListError)
	assert.True(t, cfg.Compat.UpdateReturnsPatch)
	assert.Equal(t, "recipes-backup", cfg.MinIO.Bucket)
	assert.False(t, cfg.MinIO.Enabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_TIMEOUT", "3")
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_USE_REDIS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("COMPAT_EMPTY_LIST_ERROR", "false")
	t.Setenv("KEYCLOAK_URL", "https://sso.example/")
	t.Setenv("KEYCLOAK_REALM", "kitchen")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.MongoDB.Timeout)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.RateLimit.UseRedis)
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Compat.EmptyListError)
	assert.Equal(t, "https://sso.example/realms/kitchen", cfg.Keycloak.Issuer())
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri":         {"STORE_BACKEND": "mongo", "MONGODB_URI": ""},
		"firestore without project": {"STORE_BACKEND": "firestore", "FIRESTORE_PROJECT_ID": ""},
		"unknown backend":           {"STORE_BACKEND": "sqlite"},
		"redis limiter sans redis":  {"RATE_LIMIT_ENABLED": "true", "RATE_LIMIT_USE_REDIS": "true", "REDIS_HOST": ""},
		"auth without verifier":     {"AUTH_REQUIRE_WRITES": "true", "JWT_SECRET": "", "KEYCLOAK_URL": "", "ALLOW_INSECURE_TOKEN": ""},
		"minio without keys":        {"MINIO_ENDPOINT": "localhost:9000", "MINIO_ACCESS_KEY": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
