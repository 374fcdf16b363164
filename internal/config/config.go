package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port string

	DatabaseURL      string
	DBMaxConns       int32
	DBQueueLimit     int64
	DBAcquireTimeout time.Duration

	BlobBackend   string // "disk" or "s3"
	UploadDir     string
	MaxUploadSize int
	S3Bucket      string
	S3Prefix      string

	AllowedOrigins string

	RabbitMQURL   string
	RabbitMQQueue string

	PasswordMode string // "plaintext" or "bcrypt"
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Port:             "3000",
		DBMaxConns:       10,
		DBQueueLimit:     100,
		DBAcquireTimeout: 5 * time.Second,
		BlobBackend:      "disk",
		UploadDir:        "./uploads",
		MaxUploadSize:    25 * 1024 * 1024,
		S3Prefix:         "uploads",
		AllowedOrigins:   "*",
		RabbitMQQueue:    "chat-messages",
		PasswordMode:     "plaintext",
	}
}

// Load reads the configuration from environment variables, falling back to
// Default for anything unset or unparsable.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			cfg.DBMaxConns = int32(n)
		}
	}
	if v := os.Getenv("DB_QUEUE_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.DBQueueLimit = n
		}
	}
	cfg.DBAcquireTimeout = parseDuration(os.Getenv("DB_ACQUIRE_TIMEOUT"), cfg.DBAcquireTimeout)

	if v := strings.ToLower(os.Getenv("BLOB_BACKEND")); v != "" {
		cfg.BlobBackend = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxUploadSize = n
		}
	}
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.S3Prefix = strings.Trim(v, "/")
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
	}

	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitMQQueue = v
	}

	if v := strings.ToLower(os.Getenv("PASSWORD_MODE")); v == "bcrypt" || v == "plaintext" {
		cfg.PasswordMode = v
	}

	return cfg
}

// parseDuration accepts Go durations ("3s") or a bare number of seconds.
func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
