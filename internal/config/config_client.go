// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
	// DeviceName labels this installation.
	DeviceName string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the HTTP endpoint address used by the client.
	HTTPAddress string `validate:"required"`
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration `validate:"gt=0"`
	// Token is the bearer token used for authenticated requests.
	Token string
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string used by the client.
	DSN string `validate:"required"`
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// SecretPassphrase enables at-rest payload sealing when non-empty.
	SecretPassphrase string `validate:"omitempty,min=8"`
}

// ClientSync holds sync engine tuning.
type ClientSync struct {
	UploadBatchSize   int           `validate:"gte=1,lte=10000"`
	DownloadBatchSize int           `validate:"gte=1,lte=10000"`
	MaxRetries        int           `validate:"gte=0,lte=20"`
	RetryBaseDelay    time.Duration `validate:"gt=0"`
	TieBreak          string        `validate:"oneof=remote local"`
	HistoryLimit      int           `validate:"gte=1"`
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often client sync workers should run.
	SyncInterval time.Duration `validate:"gt=0"`
	// ProbeInterval defines how often an offline client checks the service.
	ProbeInterval time.Duration `validate:"gt=0"`
}

// ClientLog contains logger settings.
type ClientLog struct {
	Level      string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Output     string `validate:"omitempty,oneof=stdout stderr file both"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
	Compress   bool
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains engine batch and retry settings.
	Sync ClientSync
	// Workers contains background job settings.
	Workers ClientWorkers
	// Log contains logger settings.
	Log ClientLog
	// Args holds the positional command-line arguments.
	Args []string
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps a merged [StructuredConfig] onto the client view.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey:    cfg.App.HashKey,
			DeviceName: cfg.App.DeviceName,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			SecretPassphrase: cfg.Storage.SecretPassphrase,
		},
		Sync: ClientSync{
			UploadBatchSize:   cfg.Sync.UploadBatchSize,
			DownloadBatchSize: cfg.Sync.DownloadBatchSize,
			MaxRetries:        cfg.Sync.MaxRetries,
			RetryBaseDelay:    cfg.Sync.RetryBaseDelay,
			TieBreak:          cfg.Sync.TieBreak,
			HistoryLimit:      cfg.Sync.HistoryLimit,
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			ProbeInterval: cfg.Workers.ProbeInterval,
		},
		Log: ClientLog{
			Level:      cfg.Log.Level,
			Output:     cfg.Log.Output,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
		Args: cfg.Args,
	}
}
