package config

// Environment variable names read by Load. The nested sections of Config are
// looked up by these full names.
const (
	EnvPrefix = "STOCKROOM"

	EnvAppEnv         = "STOCKROOM_APP_ENV"
	EnvPort           = "STOCKROOM_APP_PORT"
	EnvLogLevel       = "STOCKROOM_LOG_LEVEL"
	EnvLogWarnStack   = "STOCKROOM_LOG_WARN_STACK"
	EnvReportTimezone = "STOCKROOM_REPORT_TIMEZONE"
	EnvCORSOrigins    = "STOCKROOM_CORS_ALLOWED_ORIGINS"

	EnvDBDSN      = "STOCKROOM_DB_DSN"
	EnvDBHost     = "STOCKROOM_DB_HOST"
	EnvDBPort     = "STOCKROOM_DB_PORT"
	EnvDBUser     = "STOCKROOM_DB_USER"
	EnvDBPassword = "STOCKROOM_DB_PASSWORD"
	EnvDBName     = "STOCKROOM_DB_NAME"
	EnvDBSSLMode  = "STOCKROOM_DB_SSLMODE"

	EnvRedisURL = "STOCKROOM_REDIS_URL"

	EnvUseSQLite   = "STOCKROOM_USE_SQLITE"
	EnvSQLitePath  = "STOCKROOM_SQLITE_PATH"
	EnvAutoMigrate = "STOCKROOM_AUTO_MIGRATE"

	EnvSummaryCacheTTL = "STOCKROOM_SUMMARY_CACHE_TTL"
	EnvIdempotencyTTL  = "STOCKROOM_IDEMPOTENCY_TTL"
	EnvCronInterval    = "STOCKROOM_CRON_INTERVAL"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
