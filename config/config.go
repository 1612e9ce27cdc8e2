package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/qs-lzh/troupe/internal/util"
)

type Config struct {
	DatabaseDSN string
	Addr        string

	CacheURL      string
	CachePassword string
	MQURL         string

	LogLevel string
	Env      string // dev|prod

	SessionTTL time.Duration
	// OrganizerBootstrapSuffix upgrades a user to organizer when the login password ends with it.
	// Empty disables the mechanism.
	OrganizerBootstrapSuffix string

	FileStorage    string // local|minio
	FileStorageDir string
	Minio          MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	sessionTTL, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if sessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL: must be positive")
	}
	minioSSL, err := strconv.ParseBool(getenv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}

	cfg := &Config{
		DatabaseDSN:              os.Getenv("DATABASE_DSN"),
		Addr:                     getenv("ADDR", ":4000"),
		CacheURL:                 os.Getenv("CACHE_URL"),
		CachePassword:            os.Getenv("CACHE_PASSWORD"),
		MQURL:                    os.Getenv("RABBIT_MQ_URL"),
		LogLevel:                 getenv("LOG_LEVEL", "info"),
		Env:                      getenv("ENV", "dev"),
		SessionTTL:               sessionTTL,
		OrganizerBootstrapSuffix: os.Getenv("ORGANIZER_BOOTSTRAP_SUFFIX"),
		FileStorage:              getenv("FILE_STORAGE", "local"),
		FileStorageDir:           getenv("FILE_STORAGE_DIR", "./data/files"),
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenv("MINIO_BUCKET", "troupe-files"),
			UseSSL:    minioSSL,
		},
	}
	if cfg.FileStorage != "local" && cfg.FileStorage != "minio" {
		return nil, fmt.Errorf("FILE_STORAGE: unknown backend %q", cfg.FileStorage)
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.CacheURL == "" {
		return errors.New("CACHE_URL is required")
	}
	if c.FileStorage == "minio" && c.Minio.Endpoint == "" {
		return errors.New("MINIO_ENDPOINT is required when FILE_STORAGE=minio")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
