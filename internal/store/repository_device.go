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

const deviceIdentityTable = "device_identity"

type deviceRepository struct {
	*DB
	logger *logger.Logger
}

// NewDeviceRepository returns the SQLite [DeviceRepository].
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{DB: db, logger: logger}
}

func (r *deviceRepository) Load(ctx context.Context) (models.DeviceIdentity, bool, error) {
	log := logger.FromContext(ctx)

	row, err := r.queryRow(ctx, r.builder.Select("id", "name", "created_at").
		From(deviceIdentityTable).
		Where(sq.Eq{"singleton": 1}))
	if err != nil {
		return models.DeviceIdentity{}, false, err
	}

	var identity models.DeviceIdentity
	err = row.Scan(&identity.ID, &identity.Name, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceIdentity{}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.Load").
			Msg("failed to scan device identity row")
		return models.DeviceIdentity{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	identity.CreatedAt = identity.CreatedAt.UTC()

	return identity, true, nil
}

func (r *deviceRepository) Create(ctx context.Context, identity models.DeviceIdentity) (models.DeviceIdentity, error) {
	log := logger.FromContext(ctx)

	res, err := r.exec(ctx, r.builder.Insert(deviceIdentityTable).
		Columns("singleton", "id", "name", "created_at").
		Values(1, identity.ID, identity.Name, identity.CreatedAt.UTC()).
		Suffix("ON CONFLICT(singleton) DO NOTHING"))
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.Create").
			Str("device_id", identity.ID).
			Msg("failed to insert device identity")
		return models.DeviceIdentity{}, fmt.Errorf("failed to save device identity: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 1 {
		identity.New = true
		return identity, nil
	}

	// Another writer got there first; the stored identity wins.
	stored, found, err := r.Load(ctx)
	if err != nil {
		return models.DeviceIdentity{}, err
	}
	if !found {
		return models.DeviceIdentity{}, fmt.Errorf("device identity vanished after insert")
	}
	return stored, nil
}

func (r *deviceRepository) Rename(ctx context.Context, name string) error {
	log := logger.FromContext(ctx)

	_, err := r.exec(ctx, r.builder.Update(deviceIdentityTable).
		Set("name", name).
		Where(sq.Eq{"singleton": 1}))
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.Rename").
			Msg("failed to rename device")
		return fmt.Errorf("failed to rename device: %w", err)
	}

	return nil
}
