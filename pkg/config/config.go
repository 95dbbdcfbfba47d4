package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"MARKETLOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETLOOP_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"MARKETLOOP_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"MARKETLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETLOOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETLOOP_DB_DSN"`
	Driver string `envconfig:"MARKETLOOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARKETLOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"MARKETLOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARKETLOOP_DB_USER"`
	LegacyPassword string `envconfig:"MARKETLOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARKETLOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARKETLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MARKETLOOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MARKETLOOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MARKETLOOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MARKETLOOP_STRIPE_API_KEY"`
	Env    string `envconfig:"MARKETLOOP_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessPath string `envconfig:"MARKETLOOP_CHECKOUT_SUCCESS_PATH" default:"/api/v1/orders/confirm-payment"`
	CancelPath  string `envconfig:"MARKETLOOP_CHECKOUT_CANCEL_PATH" default:"/api/v1/orders/cancel-payment"`
	Currency    string `envconfig:"MARKETLOOP_CHECKOUT_CURRENCY" default:"usd"`

	// Per-IP throttle on the public confirmation redirect.
	ConfirmRateLimit  int           `envconfig:"MARKETLOOP_CHECKOUT_CONFIRM_RATE_LIMIT" default:"30"`
	ConfirmRateWindow time.Duration `envconfig:"MARKETLOOP_CHECKOUT_CONFIRM_RATE_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETLOOP_AUTO_MIGRATE" default:"false"`
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
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
