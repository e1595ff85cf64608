// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

type changeTracker struct {
	repo      store.ChangeRepository
	validator validators.Validator
	now       func() time.Time

	mu     sync.Mutex
	loaded bool
	cache  map[string]models.ChangeRecord
}

// NewChangeTracker returns a [ChangeTracker] persisted in repo. The pending set
// is read from repo once and then served from memory.
func NewChangeTracker(repo store.ChangeRepository, validator validators.Validator) ChangeTracker {
	return &changeTracker{
		repo:      repo,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
		cache:     make(map[string]models.ChangeRecord),
	}
}

// load fills the cache on first use. The caller holds t.mu.
func (t *changeTracker) load(ctx context.Context) error {
	if t.loaded {
		return nil
	}

	records, err := t.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load pending changes: %w", err)
	}
	for _, r := range records {
		t.cache[r.EntityID] = r
	}
	t.loaded = true

	return nil
}

func (t *changeTracker) Record(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, baseVersion int64) (models.ChangeRecord, bool, error) {
	log := logger.FromContext(ctx)
	if !op.Valid() {
		return models.ChangeRecord{}, false, validators.ErrInvalidOperation
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return models.ChangeRecord{}, false, err
	}

	existing, ok := t.cache[entityID]
	var next models.ChangeRecord
	if !ok {
		next = models.ChangeRecord{
			EntityType:   entityType,
			EntityID:     entityID,
			Operation:    op,
			LocalVersion: 1,
			BaseVersion:  baseVersion,
			CapturedAt:   t.now(),
		}
	} else {
		if existing.Operation == models.OperationDelete {
			return existing, true, ErrEntityDeleted
		}
		// A create already in flight is re-deleted by the engine once the
		// service acknowledges it.
		if existing.Operation == models.OperationCreate && op == models.OperationDelete {
			if err := t.repo.Delete(ctx, entityID); err != nil {
				return models.ChangeRecord{}, false, err
			}
			delete(t.cache, entityID)
			log.Debug().
				Str("func", "changeTracker.Record").
				Str("entity_id", entityID).
				Msg("create cancelled by delete before upload")
			return models.ChangeRecord{}, false, nil
		}

		// create absorbs later updates; update escalates to delete.
		next = existing
		next.LocalVersion++
		if existing.Operation == models.OperationUpdate && op == models.OperationDelete {
			next.Operation = models.OperationDelete
		}
	}

	if err := t.validator.Validate(ctx, next); err != nil {
		return models.ChangeRecord{}, false, err
	}

	if err := t.repo.Upsert(ctx, next); err != nil {
		return models.ChangeRecord{}, false, err
	}
	t.cache[entityID] = next

	log.Debug().
		Str("func", "changeTracker.Record").
		Str("entity_id", entityID).
		Str("operation", string(next.Operation)).
		Int64("local_version", next.LocalVersion).
		Msg("change recorded")

	return next, true, nil
}

func (t *changeTracker) Pending(ctx context.Context) ([]models.ChangeRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return nil, err
	}

	records := make([]models.ChangeRecord, 0, len(t.cache))
	for _, r := range t.cache {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b models.ChangeRecord) int {
		if c := a.CapturedAt.Compare(b.CapturedAt); c != 0 {
			return c
		}
		return strings.Compare(a.EntityID, b.EntityID)
	})

	return records, nil
}

func (t *changeTracker) Acknowledge(ctx context.Context, acks ...models.ChangeAck) (int, error) {
	if len(acks) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return 0, err
	}

	if _, err := t.repo.DeleteAcked(ctx, acks...); err != nil {
		return 0, fmt.Errorf("acknowledge changes: %w", err)
	}

	removed := 0
	for _, ack := range acks {
		if r, ok := t.cache[ack.EntityID]; ok && r.LocalVersion == ack.LocalVersion {
			delete(t.cache, ack.EntityID)
			removed++
		}
	}

	return removed, nil
}

func (t *changeTracker) Discard(ctx context.Context, entityID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return err
	}
	if _, ok := t.cache[entityID]; !ok {
		return nil
	}
	if err := t.repo.Delete(ctx, entityID); err != nil {
		return err
	}
	delete(t.cache, entityID)

	return nil
}

func (t *changeTracker) Rebase(ctx context.Context, entityID string, baseVersion int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return err
	}
	r, ok := t.cache[entityID]
	if !ok {
		return store.ErrChangeNotFound
	}
	r.BaseVersion = baseVersion
	if r.Operation == models.OperationCreate && baseVersion > 0 {
		r.Operation = models.OperationUpdate
	}
	if err := t.repo.Upsert(ctx, r); err != nil {
		return err
	}
	t.cache[entityID] = r

	return nil
}

func (t *changeTracker) Get(ctx context.Context, entityID string) (models.ChangeRecord, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return models.ChangeRecord{}, false, err
	}
	r, ok := t.cache[entityID]
	return r, ok, nil
}

// isChangeNotFound reports whether err means there was nothing to change.
func isChangeNotFound(err error) bool {
	return errors.Is(err, store.ErrChangeNotFound)
}
