// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/sanitizer"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/models"
)

func (e *syncEngine) ResolveConflict(ctx context.Context, entityID string, strategy models.Strategy) (models.Resolution, error) {
	if !strategy.Valid() {
		return models.Resolution{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	res, err := e.resolve(ctx, entityID, strategy)
	if err != nil {
		return models.Resolution{}, err
	}
	if err = e.settle(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (e *syncEngine) ResolveAll(ctx context.Context, strategy models.Strategy) ([]models.Resolution, error) {
	if strategy != "" && !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	open, err := e.conflicts.List(ctx)
	if err != nil {
		return nil, err
	}

	resolutions := make([]models.Resolution, 0, len(open))
	for _, c := range open {
		s := strategy
		if s == "" {
			s = recommendedStrategy(c)
		}
		res, err := e.resolve(ctx, c.EntityID, s)
		if err != nil {
			return resolutions, err
		}
		resolutions = append(resolutions, res)
	}

	return resolutions, e.settle(ctx)
}

// resolve applies one resolution. The caller holds e.cycleMu.
func (e *syncEngine) resolve(ctx context.Context, entityID string, strategy models.Strategy) (models.Resolution, error) {
	log := logger.FromContext(ctx)

	c, err := e.conflicts.Get(ctx, entityID)
	if errors.Is(err, store.ErrConflictNotFound) {
		return models.Resolution{}, fmt.Errorf("%w: %s", ErrConflictNotFound, entityID)
	}
	if err != nil {
		return models.Resolution{}, err
	}

	var res models.Resolution
	err = e.writer.locked(func(st store.LocalStore) error {
		// Edits made after detection belong to the local side.
		current, err := st.Get(ctx, entityID)
		switch {
		case err == nil:
			c.Local = current
		case !isNotFound(err):
			return err
		}

		res, err = e.resolver.Resolve(c, strategy)
		if err != nil {
			return err
		}

		switch strategy {
		case models.StrategyLocal:
			return e.keepLocal(ctx, st, c, res)
		default:
			return e.adoptRemote(ctx, st, c, res)
		}
	})
	if err != nil {
		return models.Resolution{}, fmt.Errorf("resolve conflict %s: %w", entityID, err)
	}

	if err = e.conflicts.Delete(ctx, entityID); err != nil {
		return models.Resolution{}, err
	}

	log.Info().
		Str("func", "syncEngine.resolve").
		Str("entity_id", entityID).
		Str("strategy", string(strategy)).
		Msg("conflict resolved")

	return res, nil
}

// keepLocal stores the local side on top of the remote version and leaves a
// change pending that carries it to the service next cycle. The stored
// SyncVersion stays at the remote one until the upload is acknowledged with
// res.Entity.SyncVersion.
func (e *syncEngine) keepLocal(ctx context.Context, st store.LocalStore, c models.Conflict, res models.Resolution) error {
	stored := res.Entity.Clone()
	stored.SyncVersion = c.Remote.SyncVersion
	if err := st.Apply(ctx, stored); err != nil {
		return err
	}

	err := e.tracker.Rebase(ctx, stored.ID, c.Remote.SyncVersion)
	if isChangeNotFound(err) {
		op := models.OperationUpdate
		if stored.IsDeleted() {
			op = models.OperationDelete
		}
		_, _, err = e.tracker.Record(ctx, stored.Type, stored.ID, op, c.Remote.SyncVersion)
	}
	return err
}

// adoptRemote stores the remote side, keeping local secrets the remote copy
// only carries redacted, and drops the pending local change. A keep-both copy
// is stored as a fresh local create.
func (e *syncEngine) adoptRemote(ctx context.Context, st store.LocalStore, c models.Conflict, res models.Resolution) error {
	adopted := res.Entity.Clone()
	adopted.Payload = sanitizer.Restore(adopted.Payload, c.Local.Payload)
	if err := st.Apply(ctx, adopted); err != nil {
		return err
	}
	if err := e.tracker.Discard(ctx, adopted.ID); err != nil {
		return err
	}

	if res.Copy == nil {
		return nil
	}
	if err := st.Apply(ctx, *res.Copy); err != nil {
		return err
	}
	_, _, err := e.tracker.Record(ctx, res.Copy.Type, res.Copy.ID, models.OperationCreate, 0)
	return err
}

// settle leaves ConflictsPending once the queue is empty.
func (e *syncEngine) settle(ctx context.Context) error {
	state, err := e.settledState(ctx)
	if err != nil {
		return err
	}
	if e.Metadata().State != models.StateConflictsPending || state == models.StateConflictsPending {
		return nil
	}
	return e.updateMeta(ctx, func(m *models.SyncMetadata) { m.State = state })
}

func recommendedStrategy(c models.Conflict) models.Strategy {
	if c.Recommended == models.SideLocal {
		return models.StrategyLocal
	}
	return models.StrategyRemote
}
