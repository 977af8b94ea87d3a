package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LISTEN_ADDRESS",
	"AHI_DATASTORE_ID",
	"AWS_REGION",
	"S3_URI",
	"HTTP_CLIENT_TIMEOUT_SECONDS",
	"DEBUG",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_SERVICE_NAME",
	"OTEL_SERVICE_VERSION",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AHI_DATASTORE_ID", "ds-1")

	cfg, err := LoadFrom(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "ds-1", cfg.DatastoreID)
	assert.Equal(t, ":8000", cfg.ListenAddress)
	assert.Equal(t, 30*time.Second, cfg.HttpClientTimeout)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.AWSRegion)
	assert.Empty(t, cfg.OtelEndpoint)
	assert.Equal(t, "ahi-gateway", cfg.OtelServiceName)
	assert.Equal(t, "0.1.0", cfg.OtelServiceVersion)
}

func TestLoad_MissingDatastoreID(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(noEnvFile(t))
	assert.ErrorIs(t, err, ErrMissingDatastoreID)
	assert.Nil(t, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AHI_DATASTORE_ID", "ds-2")
	t.Setenv("LISTEN_ADDRESS", "127.0.0.1:9000")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("HTTP_CLIENT_TIMEOUT_SECONDS", "5")
	t.Setenv("DEBUG", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	cfg, err := LoadFrom(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, 5*time.Second, cfg.HttpClientTimeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "localhost:4317", cfg.OtelEndpoint)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	for _, value := range []string{"soon", "0", "-3"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("AHI_DATASTORE_ID", "ds-1")
			t.Setenv("HTTP_CLIENT_TIMEOUT_SECONDS", value)

			cfg, err := LoadFrom(noEnvFile(t))
			require.NoError(t, err)
			assert.Equal(t, 30*time.Second, cfg.HttpClientTimeout)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDRESS", ":7000")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "AHI_DATASTORE_ID=ds-from-file\nLISTEN_ADDRESS=:6000\nS3_URI=s3://bucket/key.dcm\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := LoadFrom(envFile)
	require.NoError(t, err)

	assert.Equal(t, "ds-from-file", cfg.DatastoreID)
	assert.Equal(t, "s3://bucket/key.dcm", cfg.S3URI)
	// Process environment wins over the file.
	assert.Equal(t, ":7000", cfg.ListenAddress)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("AHI_TEST_GETENV", "value")
	assert.Equal(t, "value", GetEnv("AHI_TEST_GETENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("AHI_TEST_GETENV_UNSET", "fallback"))
}
