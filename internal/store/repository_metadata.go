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
	"github.com/MKhiriev/go-conn-sync/models"
)

const syncMetadataTable = "sync_metadata"

var metadataColumns = []string{
	"device_id", "cursor", "last_sync_at", "in_flight", "state",
	"last_error", "last_error_kind", "consecutive_failures", "paused",
}

const upsertMetadataSuffix = `ON CONFLICT(device_id) DO UPDATE SET
	cursor = excluded.cursor,
	last_sync_at = excluded.last_sync_at,
	in_flight = excluded.in_flight,
	state = excluded.state,
	last_error = excluded.last_error,
	last_error_kind = excluded.last_error_kind,
	consecutive_failures = excluded.consecutive_failures,
	paused = excluded.paused`

type metadataRepository struct {
	*DB
	logger *logger.Logger
}

// NewMetadataRepository returns the SQLite [MetadataRepository].
func NewMetadataRepository(db *DB, logger *logger.Logger) MetadataRepository {
	return &metadataRepository{DB: db, logger: logger}
}

func (r *metadataRepository) Load(ctx context.Context, deviceID string) (models.SyncMetadata, bool, error) {
	log := logger.FromContext(ctx)

	row, err := r.queryRow(ctx, r.builder.Select(metadataColumns...).
		From(syncMetadataTable).
		Where(sq.Eq{"device_id": deviceID}))
	if err != nil {
		return models.SyncMetadata{}, false, err
	}

	var (
		meta       models.SyncMetadata
		lastSyncAt sql.NullTime
		state      string
		errKind    string
	)
	err = row.Scan(&meta.DeviceID, &meta.Cursor, &lastSyncAt, &meta.InFlight, &state,
		&meta.LastError, &errKind, &meta.ConsecutiveFailures, &meta.Paused)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncMetadata{DeviceID: deviceID, State: models.StateIdle}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "metadataRepository.Load").
			Str("device_id", deviceID).
			Msg("failed to scan sync metadata row")
		return models.SyncMetadata{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	meta.LastSyncAt = timePtr(lastSyncAt)
	meta.State = models.SyncState(state)
	meta.LastErrorKind = models.ErrorKind(errKind)

	return meta, true, nil
}

func (r *metadataRepository) Save(ctx context.Context, meta models.SyncMetadata) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Insert(syncMetadataTable).
		Columns(metadataColumns...).
		Values(meta.DeviceID, meta.Cursor, nullTime(meta.LastSyncAt), meta.InFlight, string(meta.State),
			meta.LastError, string(meta.LastErrorKind), meta.ConsecutiveFailures, meta.Paused).
		Suffix(upsertMetadataSuffix))
	if err != nil {
		log.Err(err).
			Str("func", "metadataRepository.Save").
			Str("device_id", meta.DeviceID).
			Msg("failed to save sync metadata")
		return fmt.Errorf("failed to save sync metadata: %w", err)
	}

	return nil
}
