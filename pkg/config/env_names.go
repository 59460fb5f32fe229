package config

// EnvPrefix is passed to envconfig; explicit tags carry the HIREKIT_ prefix
// so the prefix only matters for untagged fields.
const EnvPrefix = "hirekit"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (error messages,
// tests, tooling).
const (
	EnvAppEnv   = "HIREKIT_APP_ENV"
	EnvPort     = "HIREKIT_APP_PORT"
	EnvLogLevel = "HIREKIT_LOG_LEVEL"

	EnvDBDSN  = "HIREKIT_DB_DSN"
	EnvDBHost = "HIREKIT_DB_HOST"
	EnvDBUser = "HIREKIT_DB_USER"
	EnvDBName = "HIREKIT_DB_NAME"

	EnvRedisURL = "HIREKIT_REDIS_URL"

	EnvJWTSecret  = "HIREKIT_JWT_SECRET"
	EnvJWTIssuer  = "HIREKIT_JWT_ISSUER"
	EnvJWTExpMins = "HIREKIT_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "HIREKIT_GCP_PROJECT_ID"

	EnvGCSBucket         = "HIREKIT_GCS_BUCKET_NAME"
	EnvGCSDownloadExpiry = "HIREKIT_GCS_DOWNLOAD_URL_EXPIRY"

	EnvPubSubExportsTopic    = "HIREKIT_PUBSUB_EXPORTS_TOPIC"
	EnvPubSubExportsSub      = "HIREKIT_PUBSUB_EXPORTS_SUBSCRIPTION"
	EnvPubSubDomainTopic     = "HIREKIT_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubNotificationSub = "HIREKIT_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvPubSubAnalyticsSub    = "HIREKIT_PUBSUB_ANALYTICS_SUBSCRIPTION"

	EnvStripeAPIKey        = "HIREKIT_STRIPE_API_KEY"
	EnvStripeSigningSecret = "HIREKIT_STRIPE_SIGNING_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
