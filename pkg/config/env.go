package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "CARTWRIGHT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "CARTWRIGHT_APP_ENV"
	EnvPort   = "CARTWRIGHT_APP_PORT"

	EnvDBDSN  = "CARTWRIGHT_DB_DSN"
	EnvDBHost = "CARTWRIGHT_DB_HOST"
	EnvDBUser = "CARTWRIGHT_DB_USER"
	EnvDBName = "CARTWRIGHT_DB_NAME"

	EnvRedisURL  = "CARTWRIGHT_REDIS_URL"
	EnvJWTSecret = "CARTWRIGHT_JWT_SECRET"
	EnvJWTIssuer = "CARTWRIGHT_JWT_ISSUER"
	EnvJWTExpiry = "CARTWRIGHT_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
