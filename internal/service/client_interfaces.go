// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-conn-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// ChangeTracker holds the pending local change set. Every mutation of a
// syncable entity goes through it, and only the sync engine acknowledges
// records.
type ChangeTracker interface {
	// Record captures a local mutation and coalesces it with any pending
	// record for the same entity:
	//   - create then delete cancels the record; pending is false;
	//   - update then delete becomes delete;
	//   - create then update stays create;
	//   - anything after delete fails with ErrEntityDeleted.
	// LocalVersion grows with every coalesced edit. CapturedAt and
	// BaseVersion are kept from the first capture.
	Record(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, baseVersion int64) (record models.ChangeRecord, pending bool, err error)

	// Pending returns all records ordered by CapturedAt, ties by entity id.
	// It has no side effects.
	Pending(ctx context.Context) ([]models.ChangeRecord, error)

	// Acknowledge removes records whose LocalVersion still matches the ack.
	// Records edited after the upload snapshot stay pending. It returns the
	// number of records removed.
	Acknowledge(ctx context.Context, acks ...models.ChangeAck) (int, error)

	// Discard drops the record of entityID, if any.
	Discard(ctx context.Context, entityID string) error

	// Rebase moves the base version of a pending record. A create rebased
	// past version 0 already exists remotely and becomes an update.
	// Returns store.ErrChangeNotFound when nothing is pending for entityID.
	Rebase(ctx context.Context, entityID string, baseVersion int64) error

	// Get returns the pending record of entityID.
	Get(ctx context.Context, entityID string) (record models.ChangeRecord, ok bool, err error)
}

// ClientDeviceService owns the stable identity of this installation.
type ClientDeviceService interface {
	// Identity returns the stored identity, generating and persisting a new
	// one on first run.
	Identity(ctx context.Context) (models.DeviceIdentity, error)

	// Rename changes the human-readable device name.
	Rename(ctx context.Context, name string) error
}

// ClientEntityService is the editing API for connection profiles and saved
// queries. It writes to the local store and records every change in the
// [ChangeTracker]; it never talks to the network.
type ClientEntityService interface {
	// Create stores a new entity under a fresh id and records a create.
	Create(ctx context.Context, entityType models.EntityType, payload models.Payload) (models.SyncableEntity, error)

	// Update replaces the payload of a live entity and records an update.
	// Returns ErrEntityDeleted for tombstones.
	Update(ctx context.Context, id string, payload models.Payload) (models.SyncableEntity, error)

	// Delete tombstones the entity and records a delete. An entity created
	// and deleted before it was ever uploaded is removed outright.
	Delete(ctx context.Context, id string) error

	// Get returns a live entity. Returns ErrEntityDeleted for tombstones.
	Get(ctx context.Context, id string) (models.SyncableEntity, error)

	// List returns the live entities of entityType, or of every type when
	// entityType is empty.
	List(ctx context.Context, entityType models.EntityType) ([]models.SyncableEntity, error)
}

// SyncEngine reconciles the local store with the remote sync service.
//
// At most one cycle runs at a time. Concurrent SyncNow calls join the cycle in
// flight and receive its summary.
type SyncEngine interface {
	// SyncNow runs a cycle, or joins the running one, and returns its
	// summary. Returns ErrSyncPaused while paused after an auth failure and
	// ErrRequiresOnline when the service is unreachable.
	SyncNow(ctx context.Context) (models.Summary, error)

	// Trigger requests a cycle from the background worker without waiting.
	Trigger()

	// Triggers delivers the requests made with Trigger.
	Triggers() <-chan struct{}

	// Resume clears the auth pause.
	Resume(ctx context.Context) error

	// Metadata returns a copy of the current sync metadata.
	Metadata() models.SyncMetadata

	// Snapshot returns metadata, pending count and open conflicts.
	Snapshot(ctx context.Context) (models.SyncSnapshot, error)

	// Conflicts returns the open conflicts ordered by detection time.
	Conflicts(ctx context.Context) ([]models.Conflict, error)

	// ResolveConflict applies strategy to the open conflict of entityID.
	ResolveConflict(ctx context.Context, entityID string, strategy models.Strategy) (models.Resolution, error)

	// ResolveAll resolves every open conflict with strategy, or with each
	// conflict's recommendation when strategy is empty.
	ResolveAll(ctx context.Context, strategy models.Strategy) ([]models.Resolution, error)

	// History returns up to limit finished cycles, newest first.
	History(ctx context.Context, limit int) ([]models.SyncLog, error)
}
