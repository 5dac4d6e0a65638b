package config

const EnvPrefix = "TILLBOOK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "TILLBOOK_APP_ENV"
	EnvPort     = "TILLBOOK_APP_PORT"
	EnvLogLevel = "TILLBOOK_LOG_LEVEL"

	EnvDBDSN  = "TILLBOOK_DB_DSN"
	EnvDBHost = "TILLBOOK_DB_HOST"
	EnvDBUser = "TILLBOOK_DB_USER"
	EnvDBName = "TILLBOOK_DB_NAME"

	EnvRedisURL = "TILLBOOK_REDIS_URL"

	EnvUseSQLite = "TILLBOOK_USE_SQLITE"

	EnvPricingPolicy        = "TILLBOOK_PRICING_POLICY"
	EnvPricingCacheEnabled  = "TILLBOOK_PRICING_CACHE_ENABLED"
	EnvPricingCacheTTL      = "TILLBOOK_PRICING_CACHE_TTL"
	EnvPricingMaxBatchLines = "TILLBOOK_PRICING_MAX_BATCH_LINES"

	EnvCronInterval   = "TILLBOOK_CRON_INTERVAL"
	EnvCronLockTTL    = "TILLBOOK_CRON_LOCK_TTL"
	EnvCronJobTimeout = "TILLBOOK_CRON_JOB_TIMEOUT"
)

// legacyDBEnvVars must all be present when no DSN is configured.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
