// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-conn-sync/internal/crypto"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/models"
)

const conflictsTable = "conflicts"

var conflictColumns = []string{"entity_id", "entity_type", "body", "detected_at"}

type conflictRepository struct {
	*DB
	sealer crypto.SecretSealer
	logger *logger.Logger
	now    func() time.Time
}

// NewConflictRepository returns the SQLite [ConflictRepository]. A conflict
// holds the full local entity, secrets included, so its body is sealed like
// entity payloads.
func NewConflictRepository(db *DB, sealer crypto.SecretSealer, logger *logger.Logger) ConflictRepository {
	if sealer == nil {
		sealer = crypto.NewPlainSealer()
	}
	return &conflictRepository{DB: db, sealer: sealer, logger: logger, now: time.Now}
}

func (r *conflictRepository) Save(ctx context.Context, conflict models.Conflict) error {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(conflict)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	body, err := r.sealer.Seal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	_, err = r.exec(ctx, r.builder.Insert(conflictsTable).
		Columns(conflictColumns...).
		Values(conflict.EntityID, string(conflict.EntityType), body, r.now().UTC()).
		Suffix("ON CONFLICT(entity_id) DO UPDATE SET entity_type = excluded.entity_type, body = excluded.body"))
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Save").
			Str("entity_id", conflict.EntityID).
			Msg("failed to save conflict")
		return fmt.Errorf("failed to save conflict (entity_id=%s): %w", conflict.EntityID, err)
	}

	return nil
}

func (r *conflictRepository) Get(ctx context.Context, entityID string) (models.Conflict, error) {
	log := logger.FromContext(ctx)

	row, err := r.queryRow(ctx, r.builder.Select(conflictColumns...).
		From(conflictsTable).
		Where(sq.Eq{"entity_id": entityID}))
	if err != nil {
		return models.Conflict{}, err
	}

	conflict, err := r.scanConflict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conflict{}, ErrConflictNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Get").
			Str("entity_id", entityID).
			Msg("failed to scan conflict row")
		return models.Conflict{}, err
	}

	return conflict, nil
}

func (r *conflictRepository) List(ctx context.Context) ([]models.Conflict, error) {
	log := logger.FromContext(ctx)

	rows, err := r.query(ctx, r.builder.Select(conflictColumns...).
		From(conflictsTable).
		OrderBy("detected_at", "entity_id"))
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.List").
			Msg("failed to execute query for conflicts")
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []models.Conflict
	for rows.Next() {
		conflict, scanErr := r.scanConflict(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "conflictRepository.List").
				Msg("failed to scan conflict row")
			return nil, scanErr
		}
		conflicts = append(conflicts, conflict)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating conflict rows: %w", rowsErr)
	}

	return conflicts, nil
}

func (r *conflictRepository) Delete(ctx context.Context, entityID string) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Delete(conflictsTable).Where(sq.Eq{"entity_id": entityID}))
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Delete").
			Str("entity_id", entityID).
			Msg("failed to delete conflict")
		return fmt.Errorf("failed to delete conflict (entity_id=%s): %w", entityID, err)
	}

	return nil
}

func (r *conflictRepository) scanConflict(row rowScanner) (models.Conflict, error) {
	var (
		entityID   string
		entityType string
		body       string
		detectedAt time.Time
	)
	if err := row.Scan(&entityID, &entityType, &body, &detectedAt); err != nil {
		return models.Conflict{}, err
	}

	raw, err := r.sealer.Open(body)
	if err != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
	}
	var conflict models.Conflict
	if err = json.Unmarshal(raw, &conflict); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
	}
	return conflict, nil
}
