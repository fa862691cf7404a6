package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvBackendBaseURL = "STOREFRONT_BACKEND_BASE_URL"
	EnvSessionTTL     = "STOREFRONT_SESSION_TTL"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
)
