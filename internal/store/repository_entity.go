// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-conn-sync/internal/crypto"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/models"
)

const entitiesTable = "entities"

var entityColumns = []string{
	"id", "type", "owner_device_id", "sync_version", "updated_at", "deleted_at", "payload",
}

const upsertEntitySuffix = `ON CONFLICT(id) DO UPDATE SET
	type = excluded.type,
	owner_device_id = excluded.owner_device_id,
	sync_version = excluded.sync_version,
	updated_at = excluded.updated_at,
	deleted_at = excluded.deleted_at,
	payload = excluded.payload`

type entityRepository struct {
	*DB
	sealer crypto.SecretSealer
	logger *logger.Logger
}

// NewEntityRepository returns the SQLite [LocalStore]. Payloads are sealed
// with sealer before they are written; a nil sealer stores plain JSON.
func NewEntityRepository(db *DB, sealer crypto.SecretSealer, logger *logger.Logger) LocalStore {
	if sealer == nil {
		sealer = crypto.NewPlainSealer()
	}
	return &entityRepository{
		DB:     db,
		sealer: sealer,
		logger: logger,
	}
}

func (r *entityRepository) Apply(ctx context.Context, entities ...models.SyncableEntity) error {
	log := logger.FromContext(ctx)
	if len(entities) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entities {
			payload, err := r.encodePayload(e.Payload)
			if err != nil {
				log.Err(err).
					Str("func", "entityRepository.Apply").
					Str("entity_id", e.ID).
					Msg("failed to encode entity payload")
				return fmt.Errorf("failed to save entity (id=%s): %w", e.ID, err)
			}

			q := r.builder.Insert(entitiesTable).
				Columns(entityColumns...).
				Values(e.ID, string(e.Type), e.OwnerDeviceID, e.SyncVersion, e.UpdatedAt.UTC(), nullTime(e.DeletedAt), payload).
				Suffix(upsertEntitySuffix)

			res, err := execTx(ctx, tx, q)
			if err != nil {
				log.Err(err).
					Str("func", "entityRepository.Apply").
					Str("entity_id", e.ID).
					Msg("failed to execute upsert for entity")
				return fmt.Errorf("failed to save entity (id=%s): %w", e.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("%w (id=%s)", ErrEntityNotSaved, e.ID)
			}
		}
		return nil
	})
}

func (r *entityRepository) Get(ctx context.Context, id string) (models.SyncableEntity, error) {
	log := logger.FromContext(ctx)

	row, err := r.queryRow(ctx, r.builder.Select(entityColumns...).
		From(entitiesTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		log.Err(err).Str("func", "entityRepository.Get").Str("entity_id", id).Msg("failed to build query")
		return models.SyncableEntity{}, err
	}

	entity, err := r.scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncableEntity{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.Get").
			Str("entity_id", id).
			Msg("failed to scan entity row")
		return models.SyncableEntity{}, fmt.Errorf("failed to get entity (id=%s): %w", id, err)
	}

	return entity, nil
}

func (r *entityRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	res, err := r.exec(ctx, r.builder.Delete(entitiesTable).Where(sq.Eq{"id": id}))
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.Delete").
			Str("entity_id", id).
			Msg("failed to delete entity")
		return fmt.Errorf("failed to delete entity (id=%s): %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrEntityNotFound
	}

	return nil
}

func (r *entityRepository) List(ctx context.Context, filter EntityFilter) ([]models.SyncableEntity, error) {
	log := logger.FromContext(ctx)

	q := r.builder.Select(entityColumns...).From(entitiesTable).OrderBy("id")
	if filter.Type != "" {
		q = q.Where(sq.Eq{"type": string(filter.Type)})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(sq.Eq{"id": filter.IDs})
	}
	if !filter.IncludeDeleted {
		q = q.Where(sq.Eq{"deleted_at": nil})
	}

	rows, err := r.query(ctx, q)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.List").
			Str("type", string(filter.Type)).
			Msg("failed to execute query for listing entities")
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []models.SyncableEntity
	for rows.Next() {
		entity, scanErr := r.scanEntity(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "entityRepository.List").
				Msg("failed to scan entity row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		entities = append(entities, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "entityRepository.List").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating entity rows: %w", rowsErr)
	}

	return entities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *entityRepository) scanEntity(row rowScanner) (models.SyncableEntity, error) {
	var (
		e         models.SyncableEntity
		entType   string
		deletedAt sql.NullTime
		payload   string
	)
	if err := row.Scan(&e.ID, &entType, &e.OwnerDeviceID, &e.SyncVersion, &e.UpdatedAt, &deletedAt, &payload); err != nil {
		return models.SyncableEntity{}, err
	}
	e.Type = models.EntityType(entType)
	e.UpdatedAt = e.UpdatedAt.UTC()
	e.DeletedAt = timePtr(deletedAt)

	p, err := r.decodePayload(payload)
	if err != nil {
		return models.SyncableEntity{}, fmt.Errorf("entity %s: %w", e.ID, err)
	}
	e.Payload = p
	return e, nil
}

func (r *entityRepository) encodePayload(p models.Payload) (string, error) {
	if p == nil {
		p = models.Payload{}
	}
	raw, err := p.Marshal()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	sealed, err := r.sealer.Seal(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	return sealed, nil
}

func (r *entityRepository) decodePayload(stored string) (models.Payload, error) {
	raw, err := r.sealer.Open(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
	}
	p, err := models.UnmarshalPayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
	}
	return p, nil
}
