// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/crypto"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
)

// sealSaltKey is the settings key holding the base64 Argon2id salt.
const sealSaltKey = "seal.salt"

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer.
type ClientStorages struct {
	Entities  LocalStore
	Changes   ChangeRepository
	Conflicts ConflictRepository
	Metadata  MetadataRepository
	Device    DeviceRepository
	SyncLog   SyncLogRepository
	Settings  SettingsRepository

	db *DB
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Builds the payload sealer. With a passphrase configured, the salt is
//     read from the settings table, or generated and stored on first run.
//  4. Constructs every repository on the shared connection.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	storages, err := newClientStorages(ctx, db, cfg.SecretPassphrase, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return storages, nil
}

func newClientStorages(ctx context.Context, db *DB, passphrase string, logger *logger.Logger) (*ClientStorages, error) {
	settings := NewSettingsRepository(db, logger)

	sealer, err := newSealer(ctx, settings, passphrase)
	if err != nil {
		return nil, fmt.Errorf("payload sealer: %w", err)
	}

	return &ClientStorages{
		Entities:  NewEntityRepository(db, sealer, logger),
		Changes:   NewChangeRepository(db, logger),
		Conflicts: NewConflictRepository(db, sealer, logger),
		Metadata:  NewMetadataRepository(db, logger),
		Device:    NewDeviceRepository(db, logger),
		SyncLog:   NewSyncLogRepository(db, logger),
		Settings:  settings,
		db:        db,
	}, nil
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func newSealer(ctx context.Context, settings SettingsRepository, passphrase string) (crypto.SecretSealer, error) {
	if passphrase == "" {
		return crypto.NewPlainSealer(), nil
	}

	salt, err := loadOrCreateSalt(ctx, settings)
	if err != nil {
		return nil, err
	}
	return crypto.NewSecretSealer(passphrase, salt)
}

func loadOrCreateSalt(ctx context.Context, settings SettingsRepository) ([]byte, error) {
	encoded, err := settings.Get(ctx, sealSaltKey)
	switch {
	case err == nil:
		salt, decErr := base64.StdEncoding.DecodeString(encoded)
		if decErr != nil {
			return nil, fmt.Errorf("stored salt is corrupt: %w", decErr)
		}
		return salt, nil
	case !errors.Is(err, ErrSettingNotFound):
		return nil, err
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err = settings.Set(ctx, sealSaltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}
