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
		"endpoint_addr":           "www.example:9000",
		"cert_file":               "tls.crt",
		"private_key_file":        "tls.key",
		"database_dsn":            "postgres://example/rfile",
		"secret_key":              "my_secret_key",
		"token_validity_duration": "12h",
		"storage_backend":         "s3",
		"storage_dir":             "/var/blocks",
		"s3_root_user":            "user",
		"s3_root_password":        "password",
		"s3_bucket":               "bucket",
		"s3_region":               "region",
		"s3_base_endpoint":        "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "tls.crt", cfg.CertFile)
		assert.Equal(t, "tls.key", cfg.PrivateKeyFile)
		assert.Equal(t, "postgres://example/rfile", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 12*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, "s3", cfg.StorageBackend)
		assert.Equal(t, "/var/blocks", cfg.StorageDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddr: "defaults:1234",
			DatabaseDSN:  "postgres://defaults/rfile",
			SecretKey:    "default_secret",
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, "postgres://defaults/rfile", cfg.DatabaseDSN)
		assert.Equal(t, "default_secret", cfg.SecretKey)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		cfg := &Config{}
		assert.Panics(t, func() { parseJson(cfg) })
	})
}
