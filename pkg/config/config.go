package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	OpenAI       OpenAIConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Stripe       StripeConfig
	Sendgrid     SendgridConfig
	Outbox       OutboxConfig
	Plans        PlansConfig
	Exports      ExportsConfig
	Cron         CronConfig
	Bootstrap    BootstrapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HIREKIT_APP_ENV" required:"true"`
	Port         string `envconfig:"HIREKIT_APP_PORT" required:"true"`
	MetricsPort  string `envconfig:"HIREKIT_APP_METRICS_PORT" default:"9090"`
	LogLevel     string `envconfig:"HIREKIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HIREKIT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HIREKIT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HIREKIT_DB_DSN"`
	Driver string `envconfig:"HIREKIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HIREKIT_DB_HOST"`
	LegacyPort     int    `envconfig:"HIREKIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HIREKIT_DB_USER"`
	LegacyPassword string `envconfig:"HIREKIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"HIREKIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"HIREKIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HIREKIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HIREKIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HIREKIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HIREKIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HIREKIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HIREKIT_REDIS_ADDR"`
	Password     string        `envconfig:"HIREKIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"HIREKIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HIREKIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HIREKIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HIREKIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HIREKIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HIREKIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies access tokens minted by the identity flow. The same
// secret is used by local tooling to mint tokens for development.
type JWTConfig struct {
	Secret            string `envconfig:"HIREKIT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HIREKIT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HIREKIT_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HIREKIT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HIREKIT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HIREKIT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HIREKIT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HIREKIT_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HIREKIT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HIREKIT_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"HIREKIT_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type OpenAIConfig struct {
	APIKey         string        `envconfig:"HIREKIT_OPENAI_API_KEY"`
	Model          string        `envconfig:"HIREKIT_OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL        string        `envconfig:"HIREKIT_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	RequestTimeout time.Duration `envconfig:"HIREKIT_OPENAI_REQUEST_TIMEOUT" default:"90s"`
	MaxAttempts    int           `envconfig:"HIREKIT_OPENAI_MAX_ATTEMPTS" default:"3"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HIREKIT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"HIREKIT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HIREKIT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"HIREKIT_GCS_BUCKET_NAME" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"HIREKIT_GCS_DOWNLOAD_URL_EXPIRY" required:"true"`
}

// PubSubConfig names the broker resources. DomainTopic carries the outbox
// stream; the notification and analytics consumers fan out via their own
// subscriptions on that topic.
type PubSubConfig struct {
	ExportsTopic             string `envconfig:"HIREKIT_PUBSUB_EXPORTS_TOPIC" required:"true"`
	ExportsSubscription      string `envconfig:"HIREKIT_PUBSUB_EXPORTS_SUBSCRIPTION" required:"true"`
	DomainTopic              string `envconfig:"HIREKIT_PUBSUB_DOMAIN_TOPIC" required:"true"`
	NotificationSubscription string `envconfig:"HIREKIT_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription    string `envconfig:"HIREKIT_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"HIREKIT_BIGQUERY_DATASET" default:"hirekit"`
	OrderEventsTable string `envconfig:"HIREKIT_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HIREKIT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HIREKIT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HIREKIT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"HIREKIT_STRIPE_API_KEY"`
	SigningSecret string `envconfig:"HIREKIT_STRIPE_SIGNING_SECRET"`
	Env           string `envconfig:"HIREKIT_STRIPE_ENV" default:"test"`
	SuccessURL    string `envconfig:"HIREKIT_STRIPE_SUCCESS_URL" default:"https://app.hirekit.io/checkout/success"`
	CancelURL     string `envconfig:"HIREKIT_STRIPE_CANCEL_URL" default:"https://app.hirekit.io/checkout/cancel"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey      string `envconfig:"HIREKIT_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"HIREKIT_SENDGRID_FROM_EMAIL" default:"kits@hirekit.io"`
	FromName    string `envconfig:"HIREKIT_SENDGRID_FROM_NAME" default:"HireKit"`
	AdminEmail  string `envconfig:"HIREKIT_SENDGRID_ADMIN_EMAIL"`
}

// PlansConfig is the plan catalog. Amounts are minor units (cents); orders at
// or above ReviewThresholdCents are premium and require admin review.
type PlansConfig struct {
	StandardPriceCents   int64  `envconfig:"HIREKIT_PLAN_STANDARD_PRICE_CENTS" default:"4900"`
	PremiumPriceCents    int64  `envconfig:"HIREKIT_PLAN_PREMIUM_PRICE_CENTS" default:"12900"`
	ReviewThresholdCents int64  `envconfig:"HIREKIT_PLAN_REVIEW_THRESHOLD_CENTS" default:"10000"`
	Currency             string `envconfig:"HIREKIT_PLAN_CURRENCY" default:"usd"`
	FreeRegenLimit       int    `envconfig:"HIREKIT_PLAN_FREE_REGEN_LIMIT" default:"3"`
}

type ExportsConfig struct {
	RendererURL        string        `envconfig:"HIREKIT_EXPORT_RENDERER_URL"`
	RendererToken      string        `envconfig:"HIREKIT_EXPORT_RENDERER_TOKEN"`
	RenderTimeout      time.Duration `envconfig:"HIREKIT_EXPORT_RENDER_TIMEOUT" default:"8s"`
	SyncSizeLimitBytes int64         `envconfig:"HIREKIT_EXPORT_SYNC_SIZE_LIMIT_BYTES" default:"2097152"`
	CacheTTL           time.Duration `envconfig:"HIREKIT_EXPORT_CACHE_TTL" default:"24h"`
	RetentionGrace     time.Duration `envconfig:"HIREKIT_EXPORT_RETENTION_GRACE" default:"168h"`
	JobProcessingTTL   time.Duration `envconfig:"HIREKIT_EXPORT_JOB_PROCESSING_TTL" default:"10m"`
	JobQueuedTTL       time.Duration `envconfig:"HIREKIT_EXPORT_JOB_QUEUED_TTL" default:"30m"`
}

type CronConfig struct {
	TickInterval         time.Duration `envconfig:"HIREKIT_CRON_TICK_INTERVAL" default:"1m"`
	LockKey              string        `envconfig:"HIREKIT_CRON_LOCK_KEY" default:"hk:cron:leader"`
	LockTTL              time.Duration `envconfig:"HIREKIT_CRON_LOCK_TTL" default:"5m"`
	ExportTimeoutEvery   time.Duration `envconfig:"HIREKIT_CRON_EXPORT_TIMEOUT_EVERY" default:"1m"`
	ExportRetentionEvery time.Duration `envconfig:"HIREKIT_CRON_EXPORT_RETENTION_EVERY" default:"1h"`
	OutboxRetentionEvery time.Duration `envconfig:"HIREKIT_CRON_OUTBOX_RETENTION_EVERY" default:"24h"`
	OutboxRetentionAge   time.Duration `envconfig:"HIREKIT_CRON_OUTBOX_RETENTION_AGE" default:"336h"`
}

// BootstrapConfig seeds the first admin user on startup when set.
type BootstrapConfig struct {
	AdminEmail    string `envconfig:"HIREKIT_BOOTSTRAP_ADMIN_EMAIL"`
	AdminName     string `envconfig:"HIREKIT_BOOTSTRAP_ADMIN_NAME" default:"HireKit Admin"`
	AdminPassword string `envconfig:"HIREKIT_BOOTSTRAP_ADMIN_PASSWORD"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
