package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "MARKETLOOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "MARKETLOOP_APP_ENV"
	EnvPort       = "MARKETLOOP_APP_PORT"
	EnvDBDSN      = "MARKETLOOP_DB_DSN"
	EnvDBHost     = "MARKETLOOP_DB_HOST"
	EnvDBUser     = "MARKETLOOP_DB_USER"
	EnvDBName     = "MARKETLOOP_DB_NAME"
	EnvRedisURL   = "MARKETLOOP_REDIS_URL"
	EnvJWTSecret  = "MARKETLOOP_JWT_SECRET"
	EnvJWTIssuer  = "MARKETLOOP_JWT_ISSUER"
	EnvJWTExpMins = "MARKETLOOP_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
