package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Data backends for the exported collections.
const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendElastic   = "elastic"
	BackendDatastore = "datastore"
)

type envConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	DATA_BACKEND string

	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	ELASTIC_URL   string
	ELASTIC_INDEX string

	GCP_PROJECT_ID string

	XLS_LOCALE       string
	XLS_LOCALE_DIR   string
	XLS_EXPORTS_FILE string
}

// DefaultEnvConfig is populated by LoadEnvConfig.
var DefaultEnvConfig = defaults()

func defaults() envConfig {
	return envConfig{
		APP_PORT:             "8080",
		LOG_LEVEL:            "info",
		DATA_BACKEND:         BackendMemory,
		DB_PORT:              5432,
		DB_SSL_MODE:          "disable",
		DB_MAX_OPEN_CONNS:    10,
		DB_MAX_IDLE_CONNS:    5,
		DB_CONN_MAX_LIFETIME: 5 * time.Minute,
		ELASTIC_INDEX:        "posts",
		XLS_LOCALE:           "en",
	}
}

// LoadEnvConfig reads a .env file when present, then the process
// environment, into DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	var err error

	cfg.APP_PORT = getString("APP_PORT", cfg.APP_PORT)
	cfg.LOG_FILE_PATH = getString("LOG_FILE_PATH", cfg.LOG_FILE_PATH)
	cfg.LOG_LEVEL = getString("LOG_LEVEL", cfg.LOG_LEVEL)
	cfg.DATA_BACKEND = getString("DATA_BACKEND", cfg.DATA_BACKEND)

	cfg.DB_HOST = getString("DB_HOST", cfg.DB_HOST)
	cfg.DB_USER = getString("DB_USER", cfg.DB_USER)
	cfg.DB_PASSWORD = getString("DB_PASSWORD", cfg.DB_PASSWORD)
	cfg.DB_NAME = getString("DB_NAME", cfg.DB_NAME)
	cfg.DB_SSL_MODE = getString("DB_SSL_MODE", cfg.DB_SSL_MODE)
	if cfg.DB_PORT, err = getInt("DB_PORT", cfg.DB_PORT); err != nil {
		return err
	}
	if cfg.DB_MAX_OPEN_CONNS, err = getInt("DB_MAX_OPEN_CONNS", cfg.DB_MAX_OPEN_CONNS); err != nil {
		return err
	}
	if cfg.DB_MAX_IDLE_CONNS, err = getInt("DB_MAX_IDLE_CONNS", cfg.DB_MAX_IDLE_CONNS); err != nil {
		return err
	}
	if cfg.DB_CONN_MAX_LIFETIME, err = getDuration("DB_CONN_MAX_LIFETIME", cfg.DB_CONN_MAX_LIFETIME); err != nil {
		return err
	}

	cfg.ELASTIC_URL = getString("ELASTIC_URL", cfg.ELASTIC_URL)
	cfg.ELASTIC_INDEX = getString("ELASTIC_INDEX", cfg.ELASTIC_INDEX)
	cfg.GCP_PROJECT_ID = getString("GCP_PROJECT_ID", cfg.GCP_PROJECT_ID)

	cfg.XLS_LOCALE = getString("XLS_LOCALE", cfg.XLS_LOCALE)
	cfg.XLS_LOCALE_DIR = getString("XLS_LOCALE_DIR", cfg.XLS_LOCALE_DIR)
	cfg.XLS_EXPORTS_FILE = getString("XLS_EXPORTS_FILE", cfg.XLS_EXPORTS_FILE)

	switch cfg.DATA_BACKEND {
	case BackendMemory, BackendPostgres, BackendElastic, BackendDatastore:
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", cfg.DATA_BACKEND)
	}

	DefaultEnvConfig = cfg
	return nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
