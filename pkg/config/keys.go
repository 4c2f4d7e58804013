package config

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"

	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
)

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvLogLevel          = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat         = "STOREFRONT_LOG_FORMAT"
	EnvAPIBaseURL        = "STOREFRONT_API_BASE_URL"
	EnvAPIRequestTimeout = "STOREFRONT_API_REQUEST_TIMEOUT"
	EnvCacheDriver       = "STOREFRONT_CACHE_DRIVER"
	EnvCacheStaleTime    = "STOREFRONT_CACHE_STALE_TIME"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvRedisAddr         = "STOREFRONT_REDIS_ADDR"
	EnvTokenStoreDriver  = "STOREFRONT_TOKEN_STORE_DRIVER"
	EnvTokenStorePath    = "STOREFRONT_TOKEN_STORE_PATH"
	EnvSessionMerge      = "STOREFRONT_SESSION_MERGE_GUEST"
)
