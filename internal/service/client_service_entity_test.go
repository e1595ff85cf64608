// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-conn-sync/internal/mock"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

func newTestEntityService(t *testing.T) (ClientEntityService, ChangeTracker, *store.ClientStorages) {
	t.Helper()
	storages := newTestStorages(t)
	validator := validators.NewEntityValidator()
	tracker := NewChangeTracker(storages.Changes, validator)
	svc := NewClientEntityService(storages.Entities, tracker, validator, &seqIDs{prefix: "e"}, testDeviceID)
	return svc, tracker, storages
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestClientEntityService_Create(t *testing.T) {
	svc, tracker, storages := newTestEntityService(t)
	ctx := testContext()

	created, err := svc.Create(ctx, models.EntityConnection, connectionPayload("Prod-East"))
	require.NoError(t, err)
	assert.Equal(t, "e-1", created.ID)
	assert.Equal(t, testDeviceID, created.OwnerDeviceID)
	assert.Equal(t, int64(0), created.SyncVersion)
	assert.False(t, created.UpdatedAt.IsZero())

	stored, err := storages.Entities.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prod-East", stored.Title())
	assert.Equal(t, "s3cret", stored.Payload["password"], "secrets stay in the local store")

	rec, ok, err := tracker.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OperationCreate, rec.Operation)
	assert.Equal(t, int64(0), rec.BaseVersion)
}

func TestClientEntityService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		entityType models.EntityType
		payload    models.Payload
		wantErr    error
	}{
		{"unknown type", "widget", connectionPayload("x"), ErrInvalidEntityType},
		{"empty payload", models.EntityConnection, models.Payload{}, validators.ErrEmptyPayload},
		{"no title", models.EntitySavedQuery, models.Payload{"query": "select 1"}, validators.ErrMissingTitle},
		{"missing driver", models.EntityConnection, models.Payload{"name": "Prod"}, validators.ErrInvalidPayload},
		{"missing query", models.EntitySavedQuery, models.Payload{"title": "q"}, validators.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tracker, _ := newTestEntityService(t)

			_, err := svc.Create(testContext(), tt.entityType, tt.payload)
			assert.ErrorIs(t, err, tt.wantErr)

			pending, err := tracker.Pending(testContext())
			require.NoError(t, err)
			assert.Empty(t, pending, "rejected input leaves no change behind")
		})
	}
}

func TestClientEntityService_Create_RollsBackWhenRecordFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	entities := mock.NewMockLocalStore(ctrl)
	tracker := mock.NewMockChangeTracker(ctrl)
	svc := NewClientEntityService(entities, tracker, validators.NewEntityValidator(), &seqIDs{prefix: "e"}, testDeviceID)

	gomock.InOrder(
		entities.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil),
		tracker.EXPECT().Record(gomock.Any(), models.EntitySavedQuery, "e-1", models.OperationCreate, int64(0)).
			Return(models.ChangeRecord{}, false, errors.New("database is locked")),
		entities.EXPECT().Delete(gomock.Any(), "e-1").Return(nil),
	)

	_, err := svc.Create(testContext(), models.EntitySavedQuery, queryPayload("Daily"))
	assert.ErrorContains(t, err, "record create")
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestClientEntityService_Update(t *testing.T) {
	svc, tracker, storages := newTestEntityService(t)
	ctx := testContext()

	created, err := svc.Create(ctx, models.EntitySavedQuery, queryPayload("Daily"))
	require.NoError(t, err)

	// имитируем подтверждённую версию 3
	synced := created.Clone()
	synced.SyncVersion = 3
	require.NoError(t, storages.Entities.Apply(ctx, synced))
	rec, _, err := tracker.Get(ctx, created.ID)
	require.NoError(t, err)
	_, err = tracker.Acknowledge(ctx, rec.Ack())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, queryPayload("Daily v2"))
	require.NoError(t, err)
	assert.Equal(t, "Daily v2", updated.Title())
	assert.Equal(t, int64(3), updated.SyncVersion, "local edits never bump SyncVersion")

	rec, ok, err := tracker.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OperationUpdate, rec.Operation)
	assert.Equal(t, int64(3), rec.BaseVersion)
}

func TestClientEntityService_Update_Errors(t *testing.T) {
	svc, _, _ := newTestEntityService(t)
	ctx := testContext()

	_, err := svc.Update(ctx, "missing", queryPayload("x"))
	assert.ErrorIs(t, err, store.ErrEntityNotFound)

	created, err := svc.Create(ctx, models.EntitySavedQuery, queryPayload("Daily"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, models.Payload{"title": "no query"})
	assert.ErrorIs(t, err, validators.ErrInvalidPayload)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daily", got.Title(), "invalid update leaves the entity untouched")
}

// ── Delete ───────────────────────────────────────────────────────────────────

// Созданная и удалённая до синхронизации сущность не оставляет следов.
func TestClientEntityService_Delete_NeverUploaded(t *testing.T) {
	svc, tracker, storages := newTestEntityService(t)
	ctx := testContext()

	created, err := svc.Create(ctx, models.EntityConnection, connectionPayload("Temp"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = storages.Entities.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrEntityNotFound)

	pending, err := tracker.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestClientEntityService_Delete_Tombstones(t *testing.T) {
	svc, tracker, storages := newTestEntityService(t)
	ctx := testContext()

	created, err := svc.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)
	synced := created.Clone()
	synced.SyncVersion = 1
	require.NoError(t, storages.Entities.Apply(ctx, synced))
	rec, _, err := tracker.Get(ctx, created.ID)
	require.NoError(t, err)
	_, err = tracker.Acknowledge(ctx, rec.Ack())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	tomb, err := storages.Entities.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, tomb.IsDeleted())

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEntityDeleted)
	_, err = svc.Update(ctx, created.ID, connectionPayload("again"))
	assert.ErrorIs(t, err, ErrEntityDeleted)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrEntityDeleted)

	list, err := svc.List(ctx, models.EntityConnection)
	require.NoError(t, err)
	assert.Empty(t, list)

	rec, ok, err := tracker.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OperationDelete, rec.Operation)
	assert.Equal(t, int64(1), rec.BaseVersion)
}

// ── List ─────────────────────────────────────────────────────────────────────

func TestClientEntityService_List(t *testing.T) {
	svc, _, _ := newTestEntityService(t)
	ctx := testContext()

	_, err := svc.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.EntitySavedQuery, queryPayload("Daily"))
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queries, err := svc.List(ctx, models.EntitySavedQuery)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "Daily", queries[0].Title())

	_, err = svc.List(ctx, "widget")
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}
