package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "artvault"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ARTVAULT_DB_DSN"
	EnvDBHost = "ARTVAULT_DB_HOST"
	EnvDBUser = "ARTVAULT_DB_USER"
	EnvDBName = "ARTVAULT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Import       ImportConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"ARTVAULT_APP_ENV" required:"true"`
	Port         string `envconfig:"ARTVAULT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARTVAULT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARTVAULT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ARTVAULT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ARTVAULT_DB_DSN"`
	Driver string `envconfig:"ARTVAULT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARTVAULT_DB_HOST"`
	LegacyPort     int    `envconfig:"ARTVAULT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARTVAULT_DB_USER"`
	LegacyPassword string `envconfig:"ARTVAULT_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARTVAULT_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARTVAULT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARTVAULT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARTVAULT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARTVAULT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARTVAULT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARTVAULT_REDIS_URL"`
	Address      string        `envconfig:"ARTVAULT_REDIS_ADDR"`
	Password     string        `envconfig:"ARTVAULT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARTVAULT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARTVAULT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARTVAULT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARTVAULT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARTVAULT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARTVAULT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ARTVAULT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ARTVAULT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ARTVAULT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"ARTVAULT_GCS_BUCKET_NAME"`
}

type PubSubConfig struct {
	ImportTopic        string `envconfig:"ARTVAULT_PUBSUB_IMPORT_TOPIC" default:"av-import-requests"`
	ImportSubscription string `envconfig:"ARTVAULT_PUBSUB_IMPORT_SUBSCRIPTION" default:"av-import-requests-worker"`
}

// ImportConfig bounds the bulk-import pipeline. The defaults match the
// extraction ceilings the pipeline was designed around; the env overrides
// exist for staging environments with smaller disks.
type ImportConfig struct {
	MaxArchiveBytes     int64         `envconfig:"ARTVAULT_IMPORT_MAX_ARCHIVE_BYTES" default:"2147483648"`
	MaxCompressionRatio float64       `envconfig:"ARTVAULT_IMPORT_MAX_COMPRESSION_RATIO" default:"100"`
	ProgressCacheTTL    time.Duration `envconfig:"ARTVAULT_IMPORT_PROGRESS_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARTVAULT_AUTO_MIGRATE" default:"false"`
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
