package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Firestore FirestoreConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	Auth      AuthConfig
	MinIO     MinIOConfig
	CORS      CORSConfig
	Compat    CompatConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr is the listen address, host:port.
func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

// IsProduction hides store error detail from responses.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type LogConfig struct {
	Level string
}

type StoreConfig struct {
	Backend    string
	Collection string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

// Issuer is the realm issuer URL, empty when Keycloak is not configured.
func (k KeycloakConfig) Issuer() string {
	if k.URL == "" || k.Realm == "" {
		return ""
	}
	return strings.TrimRight(k.URL, "/") + "/realms/" + k.Realm
}

type JWTConfig struct {
	Secret string
}

type AuthConfig struct {
	RequireWrites      bool
	AllowInsecureToken bool
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether backups can be written.
func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

type CORSConfig struct {
	AllowedOrigins []string
}

type CompatConfig struct {
	EmptyListError     bool
	UpdateReturnsPatch bool
}

type TracingConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("RECIPES_COLLECTION", "recipe_item_DB")
	v.SetDefault("MONGODB_DATABASE", "recipes")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "recipes-backup")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("COMPAT_EMPTY_LIST_ERROR", true)
	v.SetDefault("COMPAT_UPDATE_RETURNS_PATCH", true)
	v.SetDefault("TRACING_ENABLED", false)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: v.GetString("LOG_LEVEL")},
		Store: StoreConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
			Collection: v.GetString("RECIPES_COLLECTION"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Firestore: FirestoreConfig{
			ProjectID:       v.GetString("FIRESTORE_PROJECT_ID"),
			CredentialsFile: v.GetString("FIRESTORE_CREDENTIALS_FILE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		JWT: JWTConfig{Secret: v.GetString("JWT_SECRET")},
		Auth: AuthConfig{
			RequireWrites:      v.GetBool("AUTH_REQUIRE_WRITES"),
			AllowInsecureToken: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		CORS: CORSConfig{AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"))},
		Compat: CompatConfig{
			EmptyListError:     v.GetBool("COMPAT_EMPTY_LIST_ERROR"),
			UpdateReturnsPatch: v.GetBool("COMPAT_UPDATE_RETURNS_PATCH"),
		},
		Tracing: TracingConfig{Enabled: v.GetBool("TRACING_ENABLED")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_BACKEND=mongo"))
		}
	case BackendFirestore:
		if c.Firestore.ProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required when STORE_BACKEND=firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}
	if c.Store.Collection == "" {
		errs = append(errs, errors.New("RECIPES_COLLECTION must not be empty"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
		}
		if c.RateLimit.UseRedis && !c.Redis.Enabled() {
			errs = append(errs, errors.New("REDIS_HOST is required when RATE_LIMIT_USE_REDIS is set"))
		}
		if c.RateLimit.UseRedis && c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW_SECONDS must be positive"))
		}
	}
	if c.Auth.RequireWrites && c.Keycloak.Issuer() == "" && c.JWT.Secret == "" && !c.Auth.AllowInsecureToken {
		errs = append(errs, errors.New("AUTH_REQUIRE_WRITES needs KEYCLOAK_URL/KEYCLOAK_REALM, JWT_SECRET or ALLOW_INSECURE_TOKEN"))
	}
	if c.MinIO.Enabled() && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
