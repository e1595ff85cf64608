// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/models"
)

const syncLogTable = "sync_log"

var syncLogColumns = []string{"id", "device_id", "state", "pushed", "pulled", "conflicts", "error", "synced_at"}

type syncLogRepository struct {
	*DB
	logger *logger.Logger
}

// NewSyncLogRepository returns the SQLite [SyncLogRepository].
func NewSyncLogRepository(db *DB, logger *logger.Logger) SyncLogRepository {
	return &syncLogRepository{DB: db, logger: logger}
}

func (r *syncLogRepository) Append(ctx context.Context, entry models.SyncLog) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Insert(syncLogTable).
		Columns(syncLogColumns...).
		Values(entry.ID, entry.DeviceID, string(entry.State), entry.Pushed, entry.Pulled,
			entry.Conflicts, entry.Error, entry.SyncedAt.UTC()))
	if err != nil {
		log.Err(err).
			Str("func", "syncLogRepository.Append").
			Str("id", entry.ID).
			Msg("failed to append sync log entry")
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}

	return nil
}

func (r *syncLogRepository) List(ctx context.Context, limit int) ([]models.SyncLog, error) {
	log := logger.FromContext(ctx)

	q := r.builder.Select(syncLogColumns...).
		From(syncLogTable).
		OrderBy("synced_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := r.query(ctx, q)
	if err != nil {
		log.Err(err).
			Str("func", "syncLogRepository.List").
			Msg("failed to execute query for sync log")
		return nil, fmt.Errorf("failed to list sync log: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLog
	for rows.Next() {
		var (
			entry models.SyncLog
			state string
		)
		if scanErr := rows.Scan(&entry.ID, &entry.DeviceID, &state, &entry.Pushed, &entry.Pulled,
			&entry.Conflicts, &entry.Error, &entry.SyncedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "syncLogRepository.List").
				Msg("failed to scan sync log row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		entry.State = models.SyncState(state)
		entry.SyncedAt = entry.SyncedAt.UTC()
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating sync log rows: %w", rowsErr)
	}

	return entries, nil
}

func (r *syncLogRepository) Prune(ctx context.Context, keep int) error {
	log := logger.FromContext(ctx)
	if keep <= 0 {
		return nil
	}

	newest := r.builder.Select("id").
		From(syncLogTable).
		OrderBy("synced_at DESC", "id DESC").
		Limit(uint64(keep))
	sub, args, err := newest.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	_, err = r.exec(ctx, r.builder.Delete(syncLogTable).
		Where(sq.Expr("id NOT IN ("+sub+")", args...)))
	if err != nil {
		log.Err(err).
			Str("func", "syncLogRepository.Prune").
			Int("keep", keep).
			Msg("failed to prune sync log")
		return fmt.Errorf("failed to prune sync log: %w", err)
	}

	return nil
}
