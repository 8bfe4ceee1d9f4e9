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
		"addr":             "www.example:9000",
		"base_url":         "https://drop.example.com",
		"database_dsn":     "clouddrop.db",
		"max_upload_size":  1048576,
		"shutdown_timeout": "15s",
		"blob_backend":     "s3",
		"upload_dir":       "/var/lib/clouddrop",
		"s3_root_user":     "user",
		"s3_root_password": "password",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
		"smtp_host":        "smtp.example.com",
		"smtp_port":        587,
		"smtp_username":    "mailer",
		"smtp_password":    "mailerpass",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.Addr)
		assert.Equal(t, "https://drop.example.com", cfg.BaseURL)
		assert.Equal(t, "clouddrop.db", cfg.DatabaseDSN)
		assert.Equal(t, int64(1048576), cfg.MaxUploadSize)
		assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "s3", cfg.BlobBackend)
		assert.Equal(t, "/var/lib/clouddrop", cfg.UploadDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
		assert.Equal(t, 587, cfg.SMTPPort)
		assert.Equal(t, "mailer", cfg.SMTPUsername)
		assert.Equal(t, "mailerpass", cfg.SMTPPassword)
	})

	t.Run("keys absent from json keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"addr": "partial:8080",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "partial:8080", cfg.Addr)
		assert.Equal(t, "http://localhost:3030", cfg.BaseURL)
		assert.Equal(t, int64(100<<20), cfg.MaxUploadSize)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			Addr:        "defaults:1234",
			BaseURL:     "http://defaults",
			DatabaseDSN: "clouddrop.db",
			BlobBackend: "fs",
			SMTPHost:    "mail",
			SMTPPort:    25,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.Addr)
		assert.Equal(t, "http://defaults", cfg.BaseURL)
		assert.Equal(t, "clouddrop.db", cfg.DatabaseDSN)
		assert.Equal(t, "fs", cfg.BlobBackend)
		assert.Equal(t, "mail", cfg.SMTPHost)
		assert.Equal(t, 25, cfg.SMTPPort)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
