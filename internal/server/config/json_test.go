package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":   "www.example:9000",
		"database_dsn":         "postgres://db",
		"secret_key":           "my_secret_key",
		"s3_root_user":         "user",
		"s3_root_password":     "password",
		"s3_bucket":            "bucket",
		"s3_region":            "region",
		"s3_base_endpoint":     "base_endpoint",
		"s3_public_base_url":   "https://cdn",
		"namespace":            "acme",
		"textgen_api_key":      "key",
		"textgen_model":        "model",
		"textgen_language":     "English",
		"textgen_timeout":      "15s",
		"max_upload_bytes":     1024,
		"photos_required":      false,
		"session_idle_timeout": "5m",
		"log_level":            "warn",
		"shutdown_timeout":     "3s",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{PhotosRequired: true}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "https://cdn", cfg.S3PublicBaseURL)
		assert.Equal(t, "acme", cfg.Namespace)
		assert.Equal(t, "key", cfg.TextGenAPIKey)
		assert.Equal(t, "model", cfg.TextGenModel)
		assert.Equal(t, "English", cfg.TextGenLanguage)
		assert.Equal(t, 15*time.Second, cfg.TextGenTimeout)
		assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
		assert.False(t, cfg.PhotosRequired)
		assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("partial json keeps earlier layers", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"s3_bucket": "other"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other", cfg.S3Bucket)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.True(t, cfg.PhotosRequired)
		assert.Equal(t, 30*time.Second, cfg.TextGenTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP: "defaults:1234",
			DatabaseDSN:      "dsn",
			S3Bucket:         "s3bucket",
			TextGenTimeout:   2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "dsn", cfg.DatabaseDSN)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
		assert.Equal(t, 2*time.Minute, cfg.TextGenTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
