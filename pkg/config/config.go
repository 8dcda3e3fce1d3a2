package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WARUNGKU"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv     = "WARUNGKU_APP_ENV"
	EnvPort       = "WARUNGKU_APP_PORT"
	EnvDBDSN      = "WARUNGKU_DB_DSN"
	EnvDBHost     = "WARUNGKU_DB_HOST"
	EnvDBUser     = "WARUNGKU_DB_USER"
	EnvDBName     = "WARUNGKU_DB_NAME"
	EnvRedisURL   = "WARUNGKU_REDIS_URL"
	EnvJWTSecret  = "WARUNGKU_JWT_SECRET"
	EnvJWTIssuer  = "WARUNGKU_JWT_ISSUER"
	EnvJWTExpMins = "WARUNGKU_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Features FeaturesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WARUNGKU_APP_ENV" required:"true"`
	Port         string `envconfig:"WARUNGKU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WARUNGKU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WARUNGKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WARUNGKU_DB_DSN"`
	Driver string `envconfig:"WARUNGKU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WARUNGKU_DB_HOST"`
	LegacyPort     int    `envconfig:"WARUNGKU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WARUNGKU_DB_USER"`
	LegacyPassword string `envconfig:"WARUNGKU_DB_PASSWORD"`
	LegacyName     string `envconfig:"WARUNGKU_DB_NAME"`
	LegacySSLMode  string `envconfig:"WARUNGKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WARUNGKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WARUNGKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WARUNGKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WARUNGKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WARUNGKU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WARUNGKU_REDIS_ADDR"`
	Password     string        `envconfig:"WARUNGKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"WARUNGKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WARUNGKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WARUNGKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WARUNGKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WARUNGKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WARUNGKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WARUNGKU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WARUNGKU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WARUNGKU_JWT_EXPIRATION_MINUTES" required:"true"`
}

// CartConfig tunes the per-session cart stores.
type CartConfig struct {
	// SessionIdleTTL bounds how long an untouched per-user store is kept
	// before the registry evicts it. Zero disables eviction.
	SessionIdleTTL time.Duration `envconfig:"WARUNGKU_CART_SESSION_IDLE_TTL" default:"2h"`
	SweepInterval  time.Duration `envconfig:"WARUNGKU_CART_SWEEP_INTERVAL" default:"15m"`

	RateLimit       int           `envconfig:"WARUNGKU_CART_RATE_LIMIT" default:"120"`
	RateLimitWindow time.Duration `envconfig:"WARUNGKU_CART_RATE_LIMIT_WINDOW" default:"1m"`
}

// FeaturesConfig holds startup feature toggles.
type FeaturesConfig struct {
	// AutoMigrate runs pending goose migrations at boot in dev mode.
	AutoMigrate bool `envconfig:"WARUNGKU_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   "/" + db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
