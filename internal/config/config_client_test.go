// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStructured() *StructuredConfig {
	cfg := Defaults()
	cfg.Adapter.HTTPAddress = "localhost:8080"
	cfg.Storage.DB.DSN = "client.db"
	return cfg
}

func TestNewClientConfig_MapsFields(t *testing.T) {
	cfg := validStructured()
	cfg.App.HashKey = "hk"
	cfg.Adapter.Token = "tok"
	cfg.Args = []string{"status"}

	client := NewClientConfig(cfg)

	assert.Equal(t, "hk", client.App.HashKey)
	assert.Equal(t, "localhost:8080", client.Adapter.HTTPAddress)
	assert.Equal(t, "tok", client.Adapter.Token)
	assert.Equal(t, "client.db", client.Storage.DB.DSN)
	assert.Equal(t, 200, client.Sync.UploadBatchSize)
	assert.Equal(t, 500, client.Sync.DownloadBatchSize)
	assert.Equal(t, 3, client.Sync.MaxRetries)
	assert.Equal(t, "remote", client.Sync.TieBreak)
	assert.Equal(t, 5*time.Minute, client.Workers.SyncInterval)
	assert.Equal(t, 15*time.Second, client.Workers.ProbeInterval)
	assert.Equal(t, []string{"status"}, client.Args)
	assert.NoError(t, client.validate())
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr error
	}{
		{name: "missing address", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "" }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero timeout", mutate: func(c *ClientConfig) { c.Adapter.RequestTimeout = 0 }, wantErr: ErrInvalidAdapterConfigs},
		{name: "missing dsn", mutate: func(c *ClientConfig) { c.Storage.DB.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "memory dsn", mutate: func(c *ClientConfig) { c.Storage.DB.DSN = "file::memory:?cache=shared" }, wantErr: ErrInvalidStorageConfigs},
		{name: "short passphrase", mutate: func(c *ClientConfig) { c.Storage.SecretPassphrase = "short" }, wantErr: ErrInvalidStorageConfigs},
		{name: "zero upload batch", mutate: func(c *ClientConfig) { c.Sync.UploadBatchSize = 0 }, wantErr: ErrInvalidSyncConfigs},
		{name: "huge download batch", mutate: func(c *ClientConfig) { c.Sync.DownloadBatchSize = 100000 }, wantErr: ErrInvalidSyncConfigs},
		{name: "negative retries", mutate: func(c *ClientConfig) { c.Sync.MaxRetries = -1 }, wantErr: ErrInvalidSyncConfigs},
		{name: "bad tie break", mutate: func(c *ClientConfig) { c.Sync.TieBreak = "newest" }, wantErr: ErrInvalidSyncConfigs},
		{name: "zero interval", mutate: func(c *ClientConfig) { c.Workers.SyncInterval = 0 }, wantErr: ErrInvalidWorkerConfigs},
		{name: "zero probe interval", mutate: func(c *ClientConfig) { c.Workers.ProbeInterval = 0 }, wantErr: ErrInvalidWorkerConfigs},
		{name: "bad log output", mutate: func(c *ClientConfig) { c.Log.Output = "syslog" }, wantErr: ErrInvalidLogConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClientConfig(validStructured())
			tt.mutate(c)

			err := c.validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
