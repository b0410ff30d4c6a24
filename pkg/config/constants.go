package config

const (
	EnvPrefix = "LAUNDRY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:laundry.db?_foreign_keys=on"
)

// Environment variable names referenced by tests and error messages.
const (
	EnvAppEnv  = "LAUNDRY_APP_ENV"
	EnvPort    = "LAUNDRY_APP_PORT"
	EnvLogLvl  = "LAUNDRY_LOG_LEVEL"
	EnvLogFmt  = "LAUNDRY_LOG_FORMAT"
	EnvDBDSN   = "LAUNDRY_DB_DSN"
	EnvDBDrv   = "LAUNDRY_DB_DRIVER"
	EnvDBHost  = "LAUNDRY_DB_HOST"
	EnvDBPort  = "LAUNDRY_DB_PORT"
	EnvDBUser  = "LAUNDRY_DB_USER"
	EnvDBPass  = "LAUNDRY_DB_PASSWORD"
	EnvDBName  = "LAUNDRY_DB_NAME"
	EnvDBSSL   = "LAUNDRY_DB_SSLMODE"
	EnvMinKg   = "LAUNDRY_PRICING_MIN_COURIER_WEIGHT_KG"
	EnvMigrate = "LAUNDRY_AUTO_MIGRATE"

	EnvRedisEnabled = "LAUNDRY_REDIS_ENABLED"
	EnvRedisURL     = "LAUNDRY_REDIS_URL"
	EnvRedisAddr    = "LAUNDRY_REDIS_ADDR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
