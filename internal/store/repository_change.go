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

const pendingChangesTable = "pending_changes"

var changeColumns = []string{
	"entity_id", "entity_type", "operation", "local_version", "base_version", "captured_at",
}

const upsertChangeSuffix = `ON CONFLICT(entity_id) DO UPDATE SET
	entity_type = excluded.entity_type,
	operation = excluded.operation,
	local_version = excluded.local_version,
	base_version = excluded.base_version,
	captured_at = excluded.captured_at`

type changeRepository struct {
	*DB
	logger *logger.Logger
}

// NewChangeRepository returns the SQLite [ChangeRepository].
func NewChangeRepository(db *DB, logger *logger.Logger) ChangeRepository {
	return &changeRepository{DB: db, logger: logger}
}

func (r *changeRepository) Upsert(ctx context.Context, record models.ChangeRecord) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Insert(pendingChangesTable).
		Columns(changeColumns...).
		Values(record.EntityID, string(record.EntityType), string(record.Operation),
			record.LocalVersion, record.BaseVersion, record.CapturedAt.UTC()).
		Suffix(upsertChangeSuffix))
	if err != nil {
		log.Err(err).
			Str("func", "changeRepository.Upsert").
			Str("entity_id", record.EntityID).
			Str("operation", string(record.Operation)).
			Msg("failed to upsert pending change")
		return fmt.Errorf("failed to save pending change (entity_id=%s): %w", record.EntityID, err)
	}

	return nil
}

func (r *changeRepository) Get(ctx context.Context, entityID string) (models.ChangeRecord, error) {
	log := logger.FromContext(ctx)

	row, err := r.queryRow(ctx, r.builder.Select(changeColumns...).
		From(pendingChangesTable).
		Where(sq.Eq{"entity_id": entityID}))
	if err != nil {
		return models.ChangeRecord{}, err
	}

	record, err := scanChange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChangeRecord{}, ErrChangeNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "changeRepository.Get").
			Str("entity_id", entityID).
			Msg("failed to scan pending change row")
		return models.ChangeRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

func (r *changeRepository) List(ctx context.Context) ([]models.ChangeRecord, error) {
	log := logger.FromContext(ctx)

	rows, err := r.query(ctx, r.builder.Select(changeColumns...).
		From(pendingChangesTable).
		OrderBy("captured_at", "entity_id"))
	if err != nil {
		log.Err(err).
			Str("func", "changeRepository.List").
			Msg("failed to execute query for pending changes")
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	defer rows.Close()

	var records []models.ChangeRecord
	for rows.Next() {
		record, scanErr := scanChange(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "changeRepository.List").
				Msg("failed to scan pending change row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "changeRepository.List").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating pending change rows: %w", rowsErr)
	}

	return records, nil
}

func (r *changeRepository) Delete(ctx context.Context, entityID string) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Delete(pendingChangesTable).Where(sq.Eq{"entity_id": entityID}))
	if err != nil {
		log.Err(err).
			Str("func", "changeRepository.Delete").
			Str("entity_id", entityID).
			Msg("failed to delete pending change")
		return fmt.Errorf("failed to delete pending change (entity_id=%s): %w", entityID, err)
	}

	return nil
}

func (r *changeRepository) DeleteAcked(ctx context.Context, acks ...models.ChangeAck) (int64, error) {
	log := logger.FromContext(ctx)
	if len(acks) == 0 {
		return 0, nil
	}

	var removed int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		removed = 0
		for _, ack := range acks {
			res, err := execTx(ctx, tx, r.builder.Delete(pendingChangesTable).
				Where(sq.Eq{"entity_id": ack.EntityID, "local_version": ack.LocalVersion}))
			if err != nil {
				return fmt.Errorf("failed to acknowledge change (entity_id=%s): %w", ack.EntityID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				removed += n
			}
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "changeRepository.DeleteAcked").
			Int("acks", len(acks)).
			Msg("failed to acknowledge pending changes")
		return 0, err
	}

	return removed, nil
}

func scanChange(row rowScanner) (models.ChangeRecord, error) {
	var (
		record     models.ChangeRecord
		entityType string
		operation  string
	)
	err := row.Scan(&record.EntityID, &entityType, &operation, &record.LocalVersion, &record.BaseVersion, &record.CapturedAt)
	if err != nil {
		return models.ChangeRecord{}, err
	}
	record.EntityType = models.EntityType(entityType)
	record.Operation = models.Operation(operation)
	record.CapturedAt = record.CapturedAt.UTC()
	return record, nil
}
