// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatastoreID is returned by Load when AHI_DATASTORE_ID is unset.
var ErrMissingDatastoreID = errors.New("AHI_DATASTORE_ID is required")

// Config holds application configuration.
type Config struct {
	ListenAddress     string
	DatastoreID       string // AHI_DATASTORE_ID
	AWSRegion         string // empty = SDK default chain
	HttpClientTimeout time.Duration
	Debug             bool
	S3URI             string // only used by ahi-probe speed

	OtelEndpoint       string // e.g., OTEL_EXPORTER_OTLP_ENDPOINT; empty disables export
	OtelServiceName    string // e.g., OTEL_SERVICE_NAME
	OtelServiceVersion string // e.g., OTEL_SERVICE_VERSION
}

// Load reads configuration from a .env file in the working directory (if
// present) and then from environment variables. Variables already set in
// the environment win over the file.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		ListenAddress: GetEnv("LISTEN_ADDRESS", ":8000"),
		DatastoreID:   GetEnv("AHI_DATASTORE_ID", ""),
		AWSRegion:     GetEnv("AWS_REGION", ""),
		S3URI:         GetEnv("S3_URI", ""),

		OtelEndpoint:       GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelServiceName:    GetEnv("OTEL_SERVICE_NAME", "ahi-gateway"),
		OtelServiceVersion: GetEnv("OTEL_SERVICE_VERSION", "0.1.0"),
	}

	timeoutStr := GetEnv("HTTP_CLIENT_TIMEOUT_SECONDS", "30")
	timeoutSec, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSec <= 0 {
		cfg.HttpClientTimeout = 30 * time.Second // Default on error
	} else {
		cfg.HttpClientTimeout = time.Duration(timeoutSec) * time.Second
	}

	debugStr := GetEnv("DEBUG", "false")
	cfg.Debug, _ = strconv.ParseBool(debugStr) // Ignore error, default to false

	if cfg.DatastoreID == "" {
		return nil, ErrMissingDatastoreID
	}

	return cfg, nil
}

// GetEnv retrieves an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
