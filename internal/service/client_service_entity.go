// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

// entityWriter serializes read-modify-write sequences on local entities.
// User edits and the sync engine share one writer so that a merge or an
// acknowledgment never overwrites an edit made in between.
type entityWriter struct {
	mu    sync.Mutex
	store store.LocalStore
}

func newEntityWriter(s store.LocalStore) *entityWriter {
	return &entityWriter{store: s}
}

// locked runs fn while holding the writer lock.
func (w *entityWriter) locked(fn func(s store.LocalStore) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.store)
}

type clientEntityService struct {
	writer    *entityWriter
	tracker   ChangeTracker
	validator validators.Validator
	ids       IDGenerator
	deviceID  string
	now       func() time.Time
}

// NewClientEntityService returns a [ClientEntityService] writing to entities
// and recording into tracker on behalf of deviceID.
func NewClientEntityService(entities store.LocalStore, tracker ChangeTracker, validator validators.Validator, ids IDGenerator, deviceID string) ClientEntityService {
	return newClientEntityService(newEntityWriter(entities), tracker, validator, ids, deviceID)
}

func newClientEntityService(writer *entityWriter, tracker ChangeTracker, validator validators.Validator, ids IDGenerator, deviceID string) *clientEntityService {
	return &clientEntityService{
		writer:    writer,
		tracker:   tracker,
		validator: validator,
		ids:       ids,
		deviceID:  deviceID,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *clientEntityService) Create(ctx context.Context, entityType models.EntityType, payload models.Payload) (models.SyncableEntity, error) {
	log := logger.FromContext(ctx)

	if !entityType.Valid() {
		return models.SyncableEntity{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}

	entity := models.SyncableEntity{
		ID:            s.ids.Generate(),
		Type:          entityType,
		OwnerDeviceID: s.deviceID,
		UpdatedAt:     s.now(),
		Payload:       payload.Clone(),
	}
	if err := s.validate(ctx, entity); err != nil {
		return models.SyncableEntity{}, err
	}

	err := s.writer.locked(func(st store.LocalStore) error {
		if err := st.Apply(ctx, entity); err != nil {
			return fmt.Errorf("save entity: %w", err)
		}
		if _, _, err := s.tracker.Record(ctx, entity.Type, entity.ID, models.OperationCreate, 0); err != nil {
			if delErr := st.Delete(ctx, entity.ID); delErr != nil {
				log.Err(delErr).
					Str("func", "clientEntityService.Create").
					Str("entity_id", entity.ID).
					Msg("failed to roll back unrecorded entity")
			}
			return fmt.Errorf("record create: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.SyncableEntity{}, err
	}

	log.Info().
		Str("func", "clientEntityService.Create").
		Str("entity_id", entity.ID).
		Str("entity_type", string(entity.Type)).
		Msg("entity created")

	return entity, nil
}

func (s *clientEntityService) Update(ctx context.Context, id string, payload models.Payload) (models.SyncableEntity, error) {
	var updated models.SyncableEntity

	err := s.writer.locked(func(st store.LocalStore) error {
		current, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return ErrEntityDeleted
		}

		next := current.Clone()
		next.Payload = payload.Clone()
		next.UpdatedAt = s.now()
		next.OwnerDeviceID = s.deviceID
		if err = s.validate(ctx, next); err != nil {
			return err
		}

		if _, _, err = s.tracker.Record(ctx, next.Type, next.ID, models.OperationUpdate, current.SyncVersion); err != nil {
			return fmt.Errorf("record update: %w", err)
		}
		if err = st.Apply(ctx, next); err != nil {
			return fmt.Errorf("save entity: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return models.SyncableEntity{}, err
	}

	return updated, nil
}

func (s *clientEntityService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	return s.writer.locked(func(st store.LocalStore) error {
		current, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return ErrEntityDeleted
		}

		_, pending, err := s.tracker.Record(ctx, current.Type, current.ID, models.OperationDelete, current.SyncVersion)
		if err != nil {
			return fmt.Errorf("record delete: %w", err)
		}

		if !pending {
			// Never uploaded: nothing remote to tombstone.
			log.Debug().
				Str("func", "clientEntityService.Delete").
				Str("entity_id", id).
				Msg("removing entity that never left the device")
			return st.Delete(ctx, id)
		}

		now := s.now()
		tomb := current.Clone()
		tomb.DeletedAt = &now
		tomb.UpdatedAt = now
		tomb.OwnerDeviceID = s.deviceID
		if err = st.Apply(ctx, tomb); err != nil {
			return fmt.Errorf("save tombstone: %w", err)
		}
		return nil
	})
}

func (s *clientEntityService) Get(ctx context.Context, id string) (models.SyncableEntity, error) {
	e, err := s.writer.store.Get(ctx, id)
	if err != nil {
		return models.SyncableEntity{}, err
	}
	if e.IsDeleted() {
		return models.SyncableEntity{}, ErrEntityDeleted
	}
	return e, nil
}

func (s *clientEntityService) List(ctx context.Context, entityType models.EntityType) ([]models.SyncableEntity, error) {
	if entityType != "" && !entityType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	return s.writer.store.List(ctx, store.EntityFilter{Type: entityType})
}

func (s *clientEntityService) validate(ctx context.Context, e models.SyncableEntity) error {
	fields := []string{
		validators.FieldID,
		validators.FieldType,
		validators.FieldSyncVersion,
		validators.FieldUpdatedAt,
		validators.FieldPayload,
		validators.FieldTypedPayload,
	}
	if err := s.validator.Validate(ctx, e, fields...); err != nil {
		return fmt.Errorf("invalid %s: %w", e.Type, err)
	}
	return nil
}

// isNotFound reports whether err means the entity does not exist locally.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrEntityNotFound)
}
