package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FULFILMENT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "FULFILMENT_APP_ENV"
	EnvPort        = "FULFILMENT_APP_PORT"
	EnvDBDSN       = "FULFILMENT_DB_DSN"
	EnvDBHost      = "FULFILMENT_DB_HOST"
	EnvDBUser      = "FULFILMENT_DB_USER"
	EnvDBName      = "FULFILMENT_DB_NAME"
	EnvRedisURL    = "FULFILMENT_REDIS_URL"
	EnvGCPProject  = "FULFILMENT_GCP_PROJECT_ID"
	EnvLegacyTopic = "FULFILMENT_PUBSUB_LEGACY_SYNC_TOPIC"
	EnvLegacySub   = "FULFILMENT_PUBSUB_LEGACY_SYNC_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Locks        LockConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"FULFILMENT_APP_ENV" required:"true"`
	Port         string `envconfig:"FULFILMENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FULFILMENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FULFILMENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FULFILMENT_DB_DSN"`
	Driver string `envconfig:"FULFILMENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FULFILMENT_DB_HOST"`
	LegacyPort     int    `envconfig:"FULFILMENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FULFILMENT_DB_USER"`
	LegacyPassword string `envconfig:"FULFILMENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FULFILMENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FULFILMENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FULFILMENT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FULFILMENT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FULFILMENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FULFILMENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FULFILMENT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FULFILMENT_REDIS_ADDR"`
	Password     string        `envconfig:"FULFILMENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FULFILMENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FULFILMENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FULFILMENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FULFILMENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FULFILMENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FULFILMENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LockConfig tunes the per-key locks that serialize validate-then-write
// sequences against the same aggregate.
type LockConfig struct {
	TTL           time.Duration `envconfig:"FULFILMENT_MUTATION_LOCK_TTL" default:"10s"`
	RetryInterval time.Duration `envconfig:"FULFILMENT_MUTATION_LOCK_RETRY_INTERVAL" default:"25ms"`
	MaxWait       time.Duration `envconfig:"FULFILMENT_MUTATION_LOCK_MAX_WAIT" default:"2s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FULFILMENT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FULFILMENT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FULFILMENT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FULFILMENT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LegacySyncTopic        string `envconfig:"FULFILMENT_PUBSUB_LEGACY_SYNC_TOPIC" default:"fulfilment-legacy-store-sync"`
	LegacySyncSubscription string `envconfig:"FULFILMENT_PUBSUB_LEGACY_SYNC_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FULFILMENT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FULFILMENT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FULFILMENT_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
