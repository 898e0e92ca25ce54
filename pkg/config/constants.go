package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "OPS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load, DSN assembly, and tests.
const (
	EnvAppEnv   = "OPS_APP_ENV"
	EnvPort     = "OPS_APP_PORT"
	EnvDBDSN    = "OPS_DB_DSN"
	EnvDBHost   = "OPS_DB_HOST"
	EnvDBUser   = "OPS_DB_USER"
	EnvDBName   = "OPS_DB_NAME"
	EnvRedisURL = "OPS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
