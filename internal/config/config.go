package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	// Application
	AppName string `envconfig:"APP_NAME" default:"Flowdata Importer"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	// Database
	DBDriver          string        `envconfig:"DB_DRIVER" default:"mysql"`
	DBHost            string        `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort            string        `envconfig:"DB_PORT" default:"3306"`
	DBDatabase        string        `envconfig:"DB_DATABASE" default:"flowdata"`
	DBUsername        string        `envconfig:"DB_USERNAME" default:"flowdata"`
	DBPassword        string        `envconfig:"DB_PASSWORD"`
	DBPath            string        `envconfig:"DB_PATH" default:"./storage/flowdata.db"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"127.0.0.1"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Asynq
	AsynqRedisAddr     string `envconfig:"ASYNQ_REDIS_ADDR" default:"127.0.0.1:6379"`
	AsynqRedisPassword string `envconfig:"ASYNQ_REDIS_PASSWORD"`
	AsynqRedisDB       int    `envconfig:"ASYNQ_REDIS_DB" default:"0"`
	WorkerConcurrency  int    `envconfig:"WORKER_CONCURRENCY" default:"1"`

	// Import
	ImportProjectName string        `envconfig:"IMPORT_PROJECT_NAME" default:"New Imported Project"`
	UploadPath        string        `envconfig:"UPLOAD_PATH" default:"./storage/uploads"`
	StatusTTL         time.Duration `envconfig:"IMPORT_STATUS_TTL" default:"168h"`

	// Object storage for workbooks referenced as s3://bucket/key
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE" default:"true"`

	// Observability
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()
	_ = godotenv.Load("../../.env") // For when running from cmd/importer or cmd/worker

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return &cfg, nil
}

// GetDSN returns the data source name for the configured driver.
func (c *Config) GetDSN() string {
	if c.DBDriver == DriverSQLite {
		return SQLiteDSN(c.DBPath)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local&multiStatements=true",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBDatabase,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// SQLiteDSN turns a file path into a modernc sqlite DSN with foreign keys
// enforced on every connection.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}
