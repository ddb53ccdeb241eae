package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Square        SquareConfig
	Cron          CronConfig
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
	Env          string `envconfig:"PRINTHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRINTHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PRINTHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTHUB_DB_DSN"`
	Driver string `envconfig:"PRINTHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTHUB_DB_USER"`
	LegacyPassword string `envconfig:"PRINTHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRINTHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRINTHUB_REDIS_ADDR"`
	Password     string        `envconfig:"PRINTHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRINTHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRINTHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRINTHUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PRINTHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRINTHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRINTHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRINTHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRINTHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PRINTHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PRINTHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PRINTHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite                    bool `envconfig:"PRINTHUB_USE_SQLITE" default:"false"`
	AutoMigrate                  bool `envconfig:"PRINTHUB_AUTO_MIGRATE" default:"false"`
	CreditCommissionOnCompletion bool `envconfig:"PRINTHUB_FEATURE_CREDIT_COMMISSION_ON_COMPLETION" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PRINTHUB_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRINTHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"PRINTHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PRINTHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic          string `envconfig:"PRINTHUB_PUBSUB_ORDER_EVENTS_TOPIC" default:"ph-order-events"`
	NotificationSubscription  string `envconfig:"PRINTHUB_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription     string `envconfig:"PRINTHUB_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
	EarningsTopic             string `envconfig:"PRINTHUB_PUBSUB_EARNINGS_TOPIC" default:"ph-earnings-events"`
	EarningsSubscription      string `envconfig:"PRINTHUB_PUBSUB_EARNINGS_SUBSCRIPTION"`
	NotificationEventsEnabled bool   `envconfig:"PRINTHUB_PUBSUB_NOTIFICATION_EVENTS_ENABLED" default:"true"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"PRINTHUB_BIGQUERY_DATASET" default:"printhub"`
	OrderEventsTable string `envconfig:"PRINTHUB_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PRINTHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PRINTHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PRINTHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"PRINTHUB_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"PRINTHUB_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"PRINTHUB_SQUARE_ENV" default:"sandbox"`
	RedirectURL string `envconfig:"PRINTHUB_SQUARE_REDIRECT_URL"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type CronConfig struct {
	StaleRequestAfter time.Duration `envconfig:"PRINTHUB_CRON_STALE_REQUEST_AFTER" default:"72h"`
	StaleRequestBatch int           `envconfig:"PRINTHUB_CRON_STALE_REQUEST_BATCH" default:"100"`
	LockTTL           time.Duration `envconfig:"PRINTHUB_CRON_LOCK_TTL" default:"5m"`
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
