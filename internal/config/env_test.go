// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CONFIG":   "/path/to/config.json",
		"ENV_FILE": "/path/to/.env",

		"APP_HASH_KEY":    "security_hash",
		"APP_DEVICE_NAME": "laptop",

		"ADAPTER_ADDRESS":         "localhost:8080",
		"ADAPTER_REQUEST_TIMEOUT": "30s",
		"ADAPTER_TOKEN":           "tok",

		"STORAGE_DB_DATABASE_URI":   "/var/lib/conn-sync/client.db",
		"STORAGE_SECRET_PASSPHRASE": "long-passphrase",

		"SYNC_UPLOAD_BATCH_SIZE":   "50",
		"SYNC_DOWNLOAD_BATCH_SIZE": "75",
		"SYNC_MAX_RETRIES":         "5",
		"SYNC_RETRY_BASE_DELAY":    "250ms",
		"SYNC_TIE_BREAK":           "local",
		"SYNC_HISTORY_LIMIT":       "20",

		"WORKERS_SYNC_INTERVAL": "1m",

		"LOG_LEVEL":        "warn",
		"LOG_OUTPUT":       "both",
		"LOG_FILE":         "/tmp/client.log",
		"LOG_MAX_SIZE_MB":  "5",
		"LOG_MAX_BACKUPS":  "2",
		"LOG_MAX_AGE_DAYS": "7",
		"LOG_COMPRESS":     "true",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "/path/to/.env", cfg.EnvFilePath)
	assert.Equal(t, "security_hash", cfg.App.HashKey)
	assert.Equal(t, "laptop", cfg.App.DeviceName)
	assert.Equal(t, "localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "tok", cfg.Adapter.Token)
	assert.Equal(t, "/var/lib/conn-sync/client.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "long-passphrase", cfg.Storage.SecretPassphrase)
	assert.Equal(t, 50, cfg.Sync.UploadBatchSize)
	assert.Equal(t, 75, cfg.Sync.DownloadBatchSize)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.RetryBaseDelay)
	assert.Equal(t, "local", cfg.Sync.TieBreak)
	assert.Equal(t, 20, cfg.Sync.HistoryLimit)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "both", cfg.Log.Output)
	assert.Equal(t, "/tmp/client.log", cfg.Log.File)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.Equal(t, 2, cfg.Log.MaxBackups)
	assert.Equal(t, 7, cfg.Log.MaxAgeDays)
	assert.True(t, cfg.Log.Compress)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{"WORKERS_SYNC_INTERVAL": "soon"})

	err := parseEnv(&StructuredConfig{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}

func TestParseEnv_InvalidInt(t *testing.T) {
	setEnvVars(t, map[string]string{"SYNC_UPLOAD_BATCH_SIZE": "many"})

	require.Error(t, parseEnv(&StructuredConfig{}))
}

// ── .env loading ─────────────────────────────────────────────────────────────

func TestLoadDotEnv_SetsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONNSYNC_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("CONNSYNC_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("CONNSYNC_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv("CONNSYNC_TEST_DOTENV"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONNSYNC_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("CONNSYNC_TEST_KEEP", "from-env")

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "from-env", os.Getenv("CONNSYNC_TEST_KEEP"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadDotEnv(""))
}
