package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	Ingest IngestConfig
	Ledger LedgerConfig
	Email  EmailConfig
}

// EmailConfig holds manual-intervention notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	OpsAddress  string `mapstructure:"ops_address"`
}

// IngestConfig holds import pipeline settings.
type IngestConfig struct {
	DevelopmentMode    bool   `mapstructure:"development_mode"`
	DevTenantID        string `mapstructure:"dev_tenant_id"`
	MinAutoCreateScore int    `mapstructure:"min_auto_create_score"`
	ArchiveBucket      string `mapstructure:"archive_bucket"`
	BatchConcurrency   int    `mapstructure:"batch_concurrency"`
}

// LedgerConfig selects and tunes the import ledger backend.
type LedgerConfig struct {
	Backend        string        `mapstructure:"backend"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	RedisKeyPrefix string        `mapstructure:"redis_key_prefix"`
	BoltPath       string        `mapstructure:"bolt_path"`
	RetentionDays  int           `mapstructure:"retention_days"`
	PurgeInterval  time.Duration `mapstructure:"purge_interval"`
}

// DBConfig holds store connection settings. Driver "memory" keeps
// customers, vehicles and jobs in process.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the COLLISIONOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COLLISIONOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "collisionos")
	v.SetDefault("db.password", "collisionos_secret")
	v.SetDefault("db.name", "collisionos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "collisionos-estimates")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Ingest defaults
	v.SetDefault("ingest.development_mode", false)
	v.SetDefault("ingest.dev_tenant_id", "00000000-0000-0000-0000-000000000001")
	v.SetDefault("ingest.min_auto_create_score", 0)
	v.SetDefault("ingest.archive_bucket", "")
	v.SetDefault("ingest.batch_concurrency", 4)

	// Ledger defaults
	v.SetDefault("ledger.backend", "memory")
	v.SetDefault("ledger.redis_addr", "localhost:6379")
	v.SetDefault("ledger.redis_password", "")
	v.SetDefault("ledger.redis_db", 0)
	v.SetDefault("ledger.redis_key_prefix", "collisionos:imports")
	v.SetDefault("ledger.bolt_path", "imports.db")
	v.SetDefault("ledger.retention_days", 0)
	v.SetDefault("ledger.purge_interval", "1h")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@collisionos.local")
	v.SetDefault("email.from_name", "CollisionOS")
	v.SetDefault("email.ops_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"db.driver":                    "COLLISIONOS_DB_DRIVER",
		"db.host":                      "COLLISIONOS_DB_HOST",
		"db.port":                      "COLLISIONOS_DB_PORT",
		"db.user":                      "COLLISIONOS_DB_USER",
		"db.password":                  "COLLISIONOS_DB_PASSWORD",
		"db.name":                      "COLLISIONOS_DB_NAME",
		"db.sslmode":                   "COLLISIONOS_DB_SSLMODE",
		"db.max_open":                  "COLLISIONOS_DB_MAX_OPEN",
		"db.max_idle":                  "COLLISIONOS_DB_MAX_IDLE",
		"s3.region":                    "COLLISIONOS_S3_REGION",
		"s3.bucket":                    "COLLISIONOS_S3_BUCKET",
		"s3.endpoint":                  "COLLISIONOS_S3_ENDPOINT",
		"s3.access_key":                "COLLISIONOS_S3_ACCESS_KEY",
		"s3.secret_key":                "COLLISIONOS_S3_SECRET_KEY",
		"log.level":                    "COLLISIONOS_LOG_LEVEL",
		"log.format":                   "COLLISIONOS_LOG_FORMAT",
		"ingest.development_mode":      "COLLISIONOS_INGEST_DEVELOPMENT_MODE",
		"ingest.dev_tenant_id":         "COLLISIONOS_INGEST_DEV_TENANT_ID",
		"ingest.min_auto_create_score": "COLLISIONOS_INGEST_MIN_AUTO_CREATE_SCORE",
		"ingest.archive_bucket":        "COLLISIONOS_INGEST_ARCHIVE_BUCKET",
		"ingest.batch_concurrency":     "COLLISIONOS_INGEST_BATCH_CONCURRENCY",
		"ledger.backend":               "COLLISIONOS_LEDGER_BACKEND",
		"ledger.redis_addr":            "COLLISIONOS_LEDGER_REDIS_ADDR",
		"ledger.redis_password":        "COLLISIONOS_LEDGER_REDIS_PASSWORD",
		"ledger.redis_db":              "COLLISIONOS_LEDGER_REDIS_DB",
		"ledger.redis_key_prefix":      "COLLISIONOS_LEDGER_REDIS_KEY_PREFIX",
		"ledger.bolt_path":             "COLLISIONOS_LEDGER_BOLT_PATH",
		"ledger.retention_days":        "COLLISIONOS_LEDGER_RETENTION_DAYS",
		"ledger.purge_interval":        "COLLISIONOS_LEDGER_PURGE_INTERVAL",
		"email.provider":               "COLLISIONOS_EMAIL_PROVIDER",
		"email.region":                 "COLLISIONOS_EMAIL_REGION",
		"email.from_address":           "COLLISIONOS_EMAIL_FROM_ADDRESS",
		"email.from_name":              "COLLISIONOS_EMAIL_FROM_NAME",
		"email.ops_address":            "COLLISIONOS_EMAIL_OPS_ADDRESS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Ingest = IngestConfig{
		DevelopmentMode:    v.GetBool("ingest.development_mode"),
		DevTenantID:        v.GetString("ingest.dev_tenant_id"),
		MinAutoCreateScore: v.GetInt("ingest.min_auto_create_score"),
		ArchiveBucket:      v.GetString("ingest.archive_bucket"),
		BatchConcurrency:   v.GetInt("ingest.batch_concurrency"),
	}
	cfg.Ledger = LedgerConfig{
		Backend:        v.GetString("ledger.backend"),
		RedisAddr:      v.GetString("ledger.redis_addr"),
		RedisPassword:  v.GetString("ledger.redis_password"),
		RedisDB:        v.GetInt("ledger.redis_db"),
		RedisKeyPrefix: v.GetString("ledger.redis_key_prefix"),
		BoltPath:       v.GetString("ledger.bolt_path"),
		RetentionDays:  v.GetInt("ledger.retention_days"),
		PurgeInterval:  v.GetDuration("ledger.purge_interval"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		OpsAddress:  v.GetString("email.ops_address"),
	}

	switch cfg.Ledger.Backend {
	case "memory", "redis", "bolt":
	default:
		return nil, fmt.Errorf("config: unknown ledger backend %q", cfg.Ledger.Backend)
	}
	switch cfg.DB.Driver {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("config: unknown db driver %q", cfg.DB.Driver)
	}
	if cfg.Ingest.MinAutoCreateScore < 0 || cfg.Ingest.MinAutoCreateScore > 100 {
		return nil, fmt.Errorf("config: min_auto_create_score must be within 0-100, got %d", cfg.Ingest.MinAutoCreateScore)
	}

	return cfg, nil
}
