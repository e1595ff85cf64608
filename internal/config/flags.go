// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// ParseFlags parses the process command line.
func ParseFlags() (*StructuredConfig, error) {
	return parseFlags(os.Args[1:])
}

// parseFlags parses configuration flags from args.
//
// Flags:
//
//	-a sync service address (host:port or URL)
//	-d local database DSN
//	-c/-config json file path with configs
//	-env-file .env file path
//	-k HMAC hash key
//	-token bearer token
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-interval background sync period (e.g., "5m")
//	-probe-interval connectivity probe period while offline (e.g., "15s")
//	-upload-batch changes per upload request
//	-download-batch entities per download request
//	-max-retries retries per batch
//	-retry-delay first backoff delay
//	-tie-break recommended side on equal timestamps (remote|local)
//	-device-name device label
//	-log-level, -log-output, -log-file logger settings
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-conn-sync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfg StructuredConfig
	fs.StringVar(&cfg.Adapter.HTTPAddress, "a", "", "Sync service address")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "Local database DSN")
	fs.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&cfg.EnvFilePath, "env-file", "", ".env file path")
	fs.StringVar(&cfg.App.HashKey, "k", "", "Request HMAC key")
	fs.StringVar(&cfg.Adapter.Token, "token", "", "Bearer token")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&cfg.Workers.SyncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	fs.DurationVar(&cfg.Workers.ProbeInterval, "probe-interval", 0, "Connectivity probe interval while offline (e.g., 15s)")
	fs.IntVar(&cfg.Sync.UploadBatchSize, "upload-batch", 0, "Changes per upload request")
	fs.IntVar(&cfg.Sync.DownloadBatchSize, "download-batch", 0, "Entities per download request")
	fs.IntVar(&cfg.Sync.MaxRetries, "max-retries", 0, "Retries per batch")
	fs.DurationVar(&cfg.Sync.RetryBaseDelay, "retry-delay", 0, "First retry delay (e.g., 500ms)")
	fs.StringVar(&cfg.Sync.TieBreak, "tie-break", "", "Recommended side on equal timestamps (remote|local)")
	fs.StringVar(&cfg.App.DeviceName, "device-name", "", "Device label")
	fs.StringVar(&cfg.Log.Level, "log-level", "", "Log level")
	fs.StringVar(&cfg.Log.Output, "log-output", "", "Log output (stdout|stderr|file|both)")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Log file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		cfg.Args = rest
	}

	return &cfg, nil
}
