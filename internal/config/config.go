// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-conn-sync client. It aggregates all sub-configurations and is populated
// by merging defaults, a .env file, environment variables, command-line flags
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and integrity settings.
	App App `envPrefix:"APP_"`

	// Adapter holds the remote sync service endpoint settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds batch, retry and conflict policy settings of the engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds logger output and rotation settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`

	// EnvFilePath is the .env file loaded before environment parsing.
	// Env: ENV_FILE
	EnvFilePath string `env:"ENV_FILE"`

	// Args holds the positional command-line arguments left after flags,
	// i.e. the client command and its operands.
	Args []string
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used to sign request bodies (HashSHA256
	// header). Signing is skipped when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// DeviceName is a human-readable label stored with the device identity.
	// Defaults to the host name.
	// Env: APP_DEVICE_NAME
	DeviceName string `env:"DEVICE_NAME"`
}

// Adapter holds the remote sync service endpoint settings.
type Adapter struct {
	// HTTPAddress is the base address of the sync service
	// (e.g. "localhost:8080" or "https://sync.example.com").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request (e.g. "30s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the service.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`

	// SecretPassphrase enables at-rest sealing of entity payloads when set.
	// Env: STORAGE_SECRET_PASSPHRASE
	SecretPassphrase string `env:"SECRET_PASSPHRASE"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path or file: URI.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds sync engine tuning.
type Sync struct {
	// UploadBatchSize bounds the number of changes per upload request.
	// Env: SYNC_UPLOAD_BATCH_SIZE
	UploadBatchSize int `env:"UPLOAD_BATCH_SIZE"`

	// DownloadBatchSize bounds the number of entities per download request.
	// Env: SYNC_DOWNLOAD_BATCH_SIZE
	DownloadBatchSize int `env:"DOWNLOAD_BATCH_SIZE"`

	// MaxRetries is the number of retries of one batch on transient failures.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// RetryBaseDelay is the first backoff delay; it doubles on every retry.
	// Env: SYNC_RETRY_BASE_DELAY
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY"`

	// TieBreak is the side recommended when both sides were updated at the
	// same instant: "remote" or "local".
	// Env: SYNC_TIE_BREAK
	TieBreak string `env:"TIE_BREAK"`

	// HistoryLimit is the default number of sync log entries returned.
	// Env: SYNC_HISTORY_LIMIT
	HistoryLimit int `env:"HISTORY_LIMIT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the background sync worker.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
	// ProbeInterval is how often the service is probed while offline.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Log holds logger output and rotation settings.
type Log struct {
	Level      string `env:"LEVEL"`
	Output     string `env:"OUTPUT"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB"`
	MaxBackups int    `env:"MAX_BACKUPS"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS"`
	Compress   bool   `env:"COMPRESS"`
}

// Defaults returns the configuration used for every field no source sets.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout: 30 * time.Second,
		},
		Sync: Sync{
			UploadBatchSize:   200,
			DownloadBatchSize: 500,
			MaxRetries:        3,
			RetryBaseDelay:    500 * time.Millisecond,
			TieBreak:          "remote",
			HistoryLimit:      50,
		},
		Workers: Workers{
			SyncInterval:  5 * time.Minute,
			ProbeInterval: 15 * time.Second,
		},
		Log: Log{
			Level:      "info",
			Output:     "file",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		EnvFilePath: ".env",
	}
}

// GetStructuredConfig loads and merges the configuration from all available
// sources in the following priority order (later sources override earlier
// non-zero fields):
//  1. Defaults
//  2. Environment variables (after loading the .env file)
//  3. Command-line flags
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withDotEnv().
		withEnv().
		withFlags().
		withJSON().
		build()
}
