// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of the configuration.
type StructuredJSONConfig struct {
	App struct {
		HashKey    string `json:"hash_key"`
		DeviceName string `json:"device_name"`
	} `json:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string    `json:"http_address"`
		RequestTimeout *Duration `json:"request_timeout"`
		Token          string    `json:"token"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		SecretPassphrase string `json:"secret_passphrase"`
	} `json:"storage,omitempty"`

	Sync struct {
		UploadBatchSize   int       `json:"upload_batch_size"`
		DownloadBatchSize int       `json:"download_batch_size"`
		MaxRetries        int       `json:"max_retries"`
		RetryBaseDelay    *Duration `json:"retry_base_delay"`
		TieBreak          string    `json:"tie_break"`
		HistoryLimit      int       `json:"history_limit"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval  *Duration `json:"sync_interval"`
		ProbeInterval *Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`

	Log struct {
		Level      string `json:"level"`
		Output     string `json:"output"`
		File       string `json:"file"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
		MaxAgeDays int    `json:"max_age_days"`
		Compress   bool   `json:"compress"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey:    jsonCfg.App.HashKey,
			DeviceName: jsonCfg.App.DeviceName,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: durationOrZero(jsonCfg.Adapter.RequestTimeout),
			Token:          jsonCfg.Adapter.Token,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			SecretPassphrase: jsonCfg.Storage.SecretPassphrase,
		},
		Sync: Sync{
			UploadBatchSize:   jsonCfg.Sync.UploadBatchSize,
			DownloadBatchSize: jsonCfg.Sync.DownloadBatchSize,
			MaxRetries:        jsonCfg.Sync.MaxRetries,
			RetryBaseDelay:    durationOrZero(jsonCfg.Sync.RetryBaseDelay),
			TieBreak:          jsonCfg.Sync.TieBreak,
			HistoryLimit:      jsonCfg.Sync.HistoryLimit,
		},
		Workers: Workers{
			SyncInterval:  durationOrZero(jsonCfg.Workers.SyncInterval),
			ProbeInterval: durationOrZero(jsonCfg.Workers.ProbeInterval),
		},
		Log: Log{
			Level:      jsonCfg.Log.Level,
			Output:     jsonCfg.Log.Output,
			File:       jsonCfg.Log.File,
			MaxSizeMB:  jsonCfg.Log.MaxSizeMB,
			MaxBackups: jsonCfg.Log.MaxBackups,
			MaxAgeDays: jsonCfg.Log.MaxAgeDays,
			Compress:   jsonCfg.Log.Compress,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" and from integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// durationOrZero converts an optional JSON duration.
func durationOrZero(d *Duration) time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}
