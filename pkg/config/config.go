package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "EMBERGLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	Square       SquareConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Admin.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EMBERGLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"EMBERGLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EMBERGLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EMBERGLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"EMBERGLOW_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"EMBERGLOW_DB_DSN" default:"emberglow.db"`

	MaxOpenConns    int           `envconfig:"EMBERGLOW_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"EMBERGLOW_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"EMBERGLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EMBERGLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EMBERGLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EMBERGLOW_REDIS_ADDR"`
	Password     string        `envconfig:"EMBERGLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"EMBERGLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EMBERGLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EMBERGLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EMBERGLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EMBERGLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EMBERGLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig tunes the remote catalog client and the background poller.
type CatalogConfig struct {
	RemoteBaseURL  string        `envconfig:"EMBERGLOW_CATALOG_REMOTE_URL" required:"true"`
	RemoteAPIKey   string        `envconfig:"EMBERGLOW_CATALOG_REMOTE_API_KEY"`
	RequestTimeout time.Duration `envconfig:"EMBERGLOW_CATALOG_REQUEST_TIMEOUT" default:"5s"`
	PollInterval   time.Duration `envconfig:"EMBERGLOW_CATALOG_POLL_INTERVAL" default:"30s"`
	PollMaxBackoff time.Duration `envconfig:"EMBERGLOW_CATALOG_POLL_MAX_BACKOFF" default:"8m"`
	Debounce       time.Duration `envconfig:"EMBERGLOW_CATALOG_DEBOUNCE" default:"2s"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"EMBERGLOW_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"EMBERGLOW_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"EMBERGLOW_SQUARE_ENV" default:"sandbox"`
	Currency    string `envconfig:"EMBERGLOW_SQUARE_CURRENCY" default:"USD"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// AdminConfig guards the admin surface: allow-listed source IPs plus a
// short-lived session token minted once the allow-list check passes.
type AdminConfig struct {
	AllowedIPs []string      `envconfig:"EMBERGLOW_ADMIN_ALLOWED_IPS"`
	JWTSecret  string        `envconfig:"EMBERGLOW_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer  string        `envconfig:"EMBERGLOW_ADMIN_JWT_ISSUER" default:"emberglow"`
	SessionTTL time.Duration `envconfig:"EMBERGLOW_ADMIN_SESSION_TTL" default:"2h"`
}

func (a AdminConfig) validate() error {
	for _, raw := range a.AllowedIPs {
		if net.ParseIP(strings.TrimSpace(raw)) == nil {
			return fmt.Errorf("invalid admin allow-list ip %q", raw)
		}
	}
	return nil
}

// Allows reports whether the given remote IP is on the admin allow-list.
func (a AdminConfig) Allows(remoteIP string) bool {
	ip := net.ParseIP(strings.TrimSpace(remoteIP))
	if ip == nil {
		return false
	}
	for _, raw := range a.AllowedIPs {
		if allowed := net.ParseIP(strings.TrimSpace(raw)); allowed != nil && allowed.Equal(ip) {
			return true
		}
	}
	return false
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EMBERGLOW_AUTO_MIGRATE" default:"false"`
	SeedContent bool `envconfig:"EMBERGLOW_SEED_CONTENT" default:"true"`
}
