// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
)

const settingsTable = "settings"

type settingsRepository struct {
	*DB
	logger *logger.Logger
}

// NewSettingsRepository returns the SQLite [SettingsRepository].
func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{DB: db, logger: logger}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	row, err := r.queryRow(ctx, r.builder.Select("value").From(settingsTable).Where(sq.Eq{"key": key}))
	if err != nil {
		return "", err
	}

	var value string
	err = row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.Get").
			Str("key", key).
			Msg("failed to scan setting")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.exec(ctx, r.builder.Insert(settingsTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value"))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.Set").
			Str("key", key).
			Msg("failed to save setting")
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}

	return nil
}
