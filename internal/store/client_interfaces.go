// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-conn-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// EntityFilter narrows [LocalStore.List].
type EntityFilter struct {
	// Type limits the result to one entity kind. Empty means all kinds.
	Type models.EntityType
	// IDs limits the result to the given ids. Empty means all ids.
	IDs []string
	// IncludeDeleted also returns tombstoned entities.
	IncludeDeleted bool
}

// LocalStore persists syncable entities on this device.
type LocalStore interface {
	// Apply upserts entities atomically.
	Apply(ctx context.Context, entities ...models.SyncableEntity) error
	// Get returns the entity with id, tombstoned or not, or [ErrEntityNotFound].
	Get(ctx context.Context, id string) (models.SyncableEntity, error)
	// Delete removes the entity row. Syncable deletes are tombstones written
	// through Apply; Delete is for records that never left the device.
	Delete(ctx context.Context, id string) error
	// List returns entities ordered by id.
	List(ctx context.Context, filter EntityFilter) ([]models.SyncableEntity, error)
}

// ChangeRepository persists the pending change set.
type ChangeRepository interface {
	Upsert(ctx context.Context, record models.ChangeRecord) error
	Get(ctx context.Context, entityID string) (models.ChangeRecord, error)
	// List returns records ordered by CapturedAt, ties by entity id.
	List(ctx context.Context) ([]models.ChangeRecord, error)
	Delete(ctx context.Context, entityID string) error
	// DeleteAcked removes records whose LocalVersion still matches the ack and
	// returns the number removed.
	DeleteAcked(ctx context.Context, acks ...models.ChangeAck) (int64, error)
}

// ConflictRepository persists unresolved conflicts keyed by entity id.
type ConflictRepository interface {
	Save(ctx context.Context, conflict models.Conflict) error
	Get(ctx context.Context, entityID string) (models.Conflict, error)
	List(ctx context.Context) ([]models.Conflict, error)
	Delete(ctx context.Context, entityID string) error
}

// MetadataRepository persists [models.SyncMetadata] per device.
type MetadataRepository interface {
	// Load returns the metadata of deviceID; found is false when none was
	// saved yet.
	Load(ctx context.Context, deviceID string) (meta models.SyncMetadata, found bool, err error)
	Save(ctx context.Context, meta models.SyncMetadata) error
}

// DeviceRepository persists the single device identity.
type DeviceRepository interface {
	Load(ctx context.Context) (identity models.DeviceIdentity, found bool, err error)
	// Create stores identity unless one exists and returns the stored one.
	Create(ctx context.Context, identity models.DeviceIdentity) (models.DeviceIdentity, error)
	Rename(ctx context.Context, name string) error
}

// SyncLogRepository persists the sync history.
type SyncLogRepository interface {
	Append(ctx context.Context, entry models.SyncLog) error
	// List returns the newest entries first.
	List(ctx context.Context, limit int) ([]models.SyncLog, error)
	// Prune keeps the newest keep entries and removes the rest.
	Prune(ctx context.Context, keep int) error
}

// SettingsRepository is a small key/value store for local settings such as
// the sealing salt.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
