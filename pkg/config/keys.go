package config

const (
	EnvPrefix = "printhub"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "PRINTHUB_APP_ENV"
	EnvPort       = "PRINTHUB_APP_PORT"
	EnvDBDSN      = "PRINTHUB_DB_DSN"
	EnvDBHost     = "PRINTHUB_DB_HOST"
	EnvDBUser     = "PRINTHUB_DB_USER"
	EnvDBName     = "PRINTHUB_DB_NAME"
	EnvRedisURL   = "PRINTHUB_REDIS_URL"
	EnvJWTSecret  = "PRINTHUB_JWT_SECRET"
	EnvJWTIssuer  = "PRINTHUB_JWT_ISSUER"
	EnvJWTExpMins = "PRINTHUB_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID        = "PRINTHUB_GCP_PROJECT_ID"
	EnvPubSubNotifications = "PRINTHUB_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvPubSubAnalytics     = "PRINTHUB_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
