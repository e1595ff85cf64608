// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/app"
	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/sanitizer"
	"github.com/MKhiriev/go-conn-sync/models"
)

// ── SyncOptions ──────────────────────────────────────────────────────────────

func TestNewSyncOptions_Defaults(t *testing.T) {
	opts := NewSyncOptions(config.ClientSync{MaxRetries: -1}, config.ClientAdapter{})

	assert.Equal(t, DefaultUploadBatchSize, opts.UploadBatchSize)
	assert.Equal(t, DefaultDownloadBatchSize, opts.DownloadBatchSize)
	assert.Equal(t, DefaultMaxRetries, opts.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelay, opts.RetryBaseDelay)
	assert.Equal(t, DefaultRequestTimeout, opts.RequestTimeout)
	assert.Equal(t, models.SideRemote, opts.TieBreak)
	assert.Equal(t, DefaultHistoryLimit, opts.HistoryLimit)
}

func TestNewSyncOptions_FromConfig(t *testing.T) {
	opts := NewSyncOptions(config.ClientSync{
		UploadBatchSize:   10,
		DownloadBatchSize: 20,
		MaxRetries:        0,
		RetryBaseDelay:    time.Second,
		TieBreak:          "local",
		HistoryLimit:      5,
	}, config.ClientAdapter{RequestTimeout: 3 * time.Second})

	assert.Equal(t, 10, opts.UploadBatchSize)
	assert.Equal(t, 20, opts.DownloadBatchSize)
	assert.Equal(t, 0, opts.MaxRetries, "zero retries is a valid setting")
	assert.Equal(t, time.Second, opts.RetryBaseDelay)
	assert.Equal(t, 3*time.Second, opts.RequestTimeout)
	assert.Equal(t, models.SideLocal, opts.TieBreak)
	assert.Equal(t, 5, opts.HistoryLimit)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk([]int(nil), 2))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2}}, chunk([]int{1, 2}, 10))
}

// ── first sync ───────────────────────────────────────────────────────────────

// Новое подключение уходит на сервер с версией 1, пароль остаётся локально.
func TestSyncEngine_FirstSync(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Prod-East"))
	require.NoError(t, err)

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, summary.State)
	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 1, summary.Downloaded, "own change comes back as an echo")
	assert.Zero(t, summary.Merged)
	assert.Zero(t, summary.Conflicts)
	assert.Equal(t, "1", summary.Cursor)

	local := f.local(t, a.ID)
	assert.Equal(t, int64(1), local.SyncVersion)
	assert.Equal(t, "s3cret", local.Payload["password"])
	assert.Empty(t, f.pending(t))

	remote, ok := f.server.entity(a.ID)
	require.True(t, ok)
	assert.Equal(t, int64(1), remote.SyncVersion)
	assert.Equal(t, testDeviceID, remote.OwnerDeviceID)
	assert.Equal(t, sanitizer.Marker, remote.Payload["password"])

	uploaded := f.server.uploaded()
	require.Len(t, uploaded, 1)
	assert.NotContains(t, string(uploaded[0].Payload), "s3cret")
	assert.Equal(t, models.OperationCreate, uploaded[0].Operation)
	assert.Equal(t, int64(0), uploaded[0].BaseVersion)

	meta := f.engine.Metadata()
	assert.Equal(t, models.StateIdle, meta.State)
	assert.False(t, meta.InFlight)
	assert.Equal(t, "1", meta.Cursor)
	require.NotNil(t, meta.LastSyncAt)
	assert.Zero(t, meta.ConsecutiveFailures)

	persisted, found, err := f.storages.Metadata.Load(ctx, testDeviceID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", persisted.Cursor)
	assert.False(t, persisted.InFlight)

	history, err := f.engine.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Pushed)
	assert.Equal(t, models.StateIdle, history[0].State)

	progress := f.sink.progressValues()
	require.NotEmpty(t, progress)
	assert.Equal(t, 0, progress[0])
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.True(t, slices.IsSorted(progress), "progress never goes back: %v", progress)
}

// Каждая подтверждённая правка увеличивает версию ровно на единицу.
func TestSyncEngine_VersionIncreasesByOnePerSync(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("v0"))
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		_, err = f.engine.SyncNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, f.local(t, a.ID).SyncVersion)

		_, err = f.entities.Update(ctx, a.ID, queryPayload(fmt.Sprintf("v%d", want)))
		require.NoError(t, err)
	}

	bases := make([]int64, 0, 3)
	for _, ch := range f.server.uploaded() {
		bases = append(bases, ch.BaseVersion)
	}
	assert.Equal(t, []int64{0, 1, 2}, bases)
}

func TestSyncEngine_CreateThenDeleteProducesNoTraffic(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.transport.EXPECT().Upload(gomock.Any(), gomock.Any()).Times(0)
	f.transport.EXPECT().Download(gomock.Any(), gomock.Any()).DoAndReturn(f.server.Download).AnyTimes()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Temp"))
	require.NoError(t, err)
	require.NoError(t, f.entities.Delete(ctx, a.ID))

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Uploaded)
}

func TestSyncEngine_DeletePropagatesAsTombstone(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Old"))
	require.NoError(t, err)
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	require.NoError(t, f.entities.Delete(ctx, a.ID))
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	remote, ok := f.server.entity(a.ID)
	require.True(t, ok)
	assert.True(t, remote.IsDeleted())
	assert.Equal(t, int64(2), remote.SyncVersion)

	uploaded := f.server.uploaded()
	require.Len(t, uploaded, 2)
	assert.Equal(t, models.OperationDelete, uploaded[1].Operation)
	assert.Empty(t, uploaded[1].Payload)

	local := f.local(t, a.ID)
	assert.True(t, local.IsDeleted())
	assert.Equal(t, int64(2), local.SyncVersion)
}

// ── download / merge ─────────────────────────────────────────────────────────

func TestSyncEngine_MergesRemoteChangesAndKeepsSecrets(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	remote, _ := f.server.entity(a.ID)
	remote.Payload["name"] = "Prod (renamed)"
	remote.UpdatedAt = time.Now().UTC()
	f.server.remoteWrite(remote)

	newcomer := models.SyncableEntity{
		ID: "remote-q", Type: models.EntitySavedQuery, UpdatedAt: time.Now().UTC(),
		Payload: queryPayload("From laptop B"),
	}
	f.server.remoteWrite(newcomer)

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Merged)
	assert.Equal(t, "3", summary.Cursor)

	local := f.local(t, a.ID)
	assert.Equal(t, "Prod (renamed)", local.Title())
	assert.Equal(t, int64(2), local.SyncVersion)
	assert.Equal(t, "s3cret", local.Payload["password"], "redacted secrets never overwrite local ones")

	q := f.local(t, "remote-q")
	assert.Equal(t, "From laptop B", q.Title())
	assert.Equal(t, int64(1), q.SyncVersion)
	assert.Empty(t, f.pending(t), "merged entities are not re-uploaded")

	history, err := f.engine.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Pulled)
}

func TestSyncEngine_DownloadPagesThroughCursor(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	for i := range 5 {
		f.server.remoteWrite(models.SyncableEntity{
			ID: fmt.Sprintf("q-%d", i), Type: models.EntitySavedQuery, UpdatedAt: time.Now().UTC(),
			Payload: queryPayload(fmt.Sprintf("query %d", i)),
		})
	}

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Downloaded)
	assert.Equal(t, 5, summary.Merged)
	assert.Equal(t, "5", f.engine.Metadata().Cursor)

	// повторная синхронизация ничего не скачивает заново
	summary, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Downloaded)
}

func TestSyncEngine_SkipsInvalidRemoteEntity(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	f.server.remoteWrite(models.SyncableEntity{ID: "w-1", Type: "widget", UpdatedAt: time.Now().UTC(), Payload: models.Payload{"title": "?"}})
	f.server.remoteWrite(models.SyncableEntity{ID: "q-1", Type: models.EntitySavedQuery, UpdatedAt: time.Now().UTC(), Payload: queryPayload("ok")})

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-1"}, summary.Skipped)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, "2", summary.Cursor)
	assert.Contains(t, f.sink.errorKinds(), models.ErrorKindValidation)
}

// ── network failures ─────────────────────────────────────────────────────────

// Сеть падает на третьем батче: подтверждены только два, повтор не дублирует.
func TestSyncEngine_NetworkFailureMidUpload(t *testing.T) {
	opts := testSyncOptions()
	opts.UploadBatchSize = 1
	f := newEngineFixture(t, opts)
	f.online()
	f.serve()
	ctx := testContext()

	for i := range 3 {
		_, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload(fmt.Sprintf("q%d", i)))
		require.NoError(t, err)
	}

	var mu sync.Mutex
	failing := true
	f.server.uploadHook = func(call int64) error {
		mu.Lock()
		defer mu.Unlock()
		if failing && call >= 3 {
			return fmt.Errorf("dial tcp: %w", adapter.ErrNetwork)
		}
		return nil
	}

	_, err := f.engine.SyncNow(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNetwork)
	assert.Equal(t, int64(2+opts.MaxRetries+1), f.server.uploadCalls.Load(), "the failing batch is retried")

	assert.Len(t, f.server.uploadedIDs(), 2)
	pending := f.pending(t)
	require.Len(t, pending, 1)
	_, onServer := f.server.entity(pending[0].EntityID)
	assert.False(t, onServer)

	meta := f.engine.Metadata()
	assert.Equal(t, models.StateError, meta.State)
	assert.Equal(t, models.ErrorKindNetwork, meta.LastErrorKind)
	assert.Equal(t, 1, meta.ConsecutiveFailures)
	assert.Empty(t, meta.Cursor, "download never started")
	assert.False(t, meta.InFlight)

	mu.Lock()
	failing = false
	mu.Unlock()

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)

	ids := f.server.uploadedIDs()
	assert.Len(t, ids, 3)
	assert.Len(t, slices.Compact(slices.Sorted(slices.Values(ids))), 3, "no change was uploaded twice")
	assert.Empty(t, f.pending(t))
	assert.Zero(t, f.engine.Metadata().ConsecutiveFailures)
}

func TestSyncEngine_NetworkFailureMidDownloadKeepsCursor(t *testing.T) {
	opts := testSyncOptions()
	opts.MaxRetries = 0
	f := newEngineFixture(t, opts)
	f.online()
	f.serve()
	ctx := testContext()

	for i := range 4 {
		f.server.remoteWrite(models.SyncableEntity{
			ID: fmt.Sprintf("q-%d", i), Type: models.EntitySavedQuery, UpdatedAt: time.Now().UTC(),
			Payload: queryPayload(fmt.Sprintf("query %d", i)),
		})
	}

	var mu sync.Mutex
	failing := true
	f.server.downloadHook = func(cursor string) error {
		mu.Lock()
		defer mu.Unlock()
		if failing && cursor == "2" {
			return adapter.ErrServiceUnavailable
		}
		return nil
	}

	_, err := f.engine.SyncNow(ctx)
	require.ErrorIs(t, err, adapter.ErrServiceUnavailable)
	assert.Equal(t, "2", f.engine.Metadata().Cursor, "the completed batch is kept")

	list, err := f.entities.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	mu.Lock()
	failing = false
	mu.Unlock()

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, "4", summary.Cursor)
}

func TestSyncEngine_Offline(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.transport.EXPECT().Health(gomock.Any()).Return(false).Times(1)
	ctx := testContext()

	_, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)

	_, err = f.engine.SyncNow(ctx)
	assert.ErrorIs(t, err, ErrRequiresOnline)

	meta := f.engine.Metadata()
	assert.Equal(t, models.StateError, meta.State)
	assert.Equal(t, models.ErrorKindNetwork, meta.LastErrorKind)
	assert.Equal(t, app.MsgRequiresOnline, meta.LastError)
	assert.Zero(t, meta.ConsecutiveFailures, "offline does not count as a failure")
	assert.False(t, meta.Paused)
	assert.Len(t, f.pending(t), 1)
	assert.Equal(t, []models.ErrorKind{models.ErrorKindNetwork}, f.sink.errorKinds())
}

func TestSyncEngine_AuthFailurePausesUntilResume(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.transport.EXPECT().Health(gomock.Any()).Return(true).Times(2)
	f.transport.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(models.UploadResult{}, adapter.ErrUnauthorized).Times(1)
	f.serve()
	ctx := testContext()

	_, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)

	_, err = f.engine.SyncNow(ctx)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)

	meta := f.engine.Metadata()
	assert.True(t, meta.Paused)
	assert.Equal(t, models.ErrorKindAuth, meta.LastErrorKind)
	assert.Equal(t, app.MsgAuthFailed, meta.LastError)

	// на паузе транспорт не трогается
	_, err = f.engine.SyncNow(ctx)
	assert.ErrorIs(t, err, ErrSyncPaused)

	require.NoError(t, f.engine.Resume(ctx))
	meta = f.engine.Metadata()
	assert.False(t, meta.Paused)
	assert.Equal(t, models.StateIdle, meta.State)
	assert.Zero(t, meta.ConsecutiveFailures)

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)
}

func TestSyncEngine_RejectedRecordStaysPending(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	good, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("good"))
	require.NoError(t, err)
	bad, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("bad"))
	require.NoError(t, err)
	f.server.reject[bad.ID] = "query too long"

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err, "a rejected record does not fail the cycle")
	assert.Equal(t, 1, summary.Uploaded)
	require.Len(t, summary.Rejected, 1)
	assert.Equal(t, models.Rejection{ID: bad.ID, Reason: "query too long"}, summary.Rejected[0])

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, bad.ID, pending[0].EntityID)
	assert.Equal(t, int64(1), f.local(t, good.ID).SyncVersion)
	assert.Equal(t, int64(0), f.local(t, bad.ID).SyncVersion)
	assert.Contains(t, f.sink.errorKinds(), models.ErrorKindValidation)
}

// ── concurrency ──────────────────────────────────────────────────────────────

// Параллельные вызовы присоединяются к уже идущему циклу.
func TestSyncEngine_SingleFlight(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	_, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Prod"))
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.server.uploadHook = func(call int64) error {
		if call == 1 {
			close(entered)
			<-release
		}
		return nil
	}

	var wg sync.WaitGroup
	results := make([]models.Summary, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = f.engine.SyncNow(ctx)
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = f.engine.SyncNow(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), f.server.maxInFlight.Load())
	assert.Equal(t, int64(1), f.server.uploadCalls.Load())
	assert.Equal(t, results[0], results[1], "the second caller receives the running cycle's summary")
}

// Правка во время загрузки остаётся в очереди поверх подтверждённой версии.
func TestSyncEngine_EditDuringUploadIsRebased(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("draft"))
	require.NoError(t, err)

	f.server.uploadHook = func(call int64) error {
		if call == 1 {
			_, err := f.entities.Update(testContext(), a.ID, queryPayload("final"))
			assert.NoError(t, err)
		}
		return nil
	}

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)

	rec, ok, err := f.tracker.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OperationUpdate, rec.Operation)
	assert.Equal(t, int64(1), rec.BaseVersion)

	local := f.local(t, a.ID)
	assert.Equal(t, int64(1), local.SyncVersion)
	assert.Equal(t, "final", local.Title())
	assert.Zero(t, summary.Conflicts)

	f.server.uploadHook = nil
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	remote, _ := f.server.entity(a.ID)
	assert.Equal(t, int64(2), remote.SyncVersion)
	assert.Equal(t, "final", remote.Payload["title"])
	assert.Empty(t, f.pending(t))
}

// Удаление, пока create ещё в полёте: сервер успевает принять запись,
// но удаление пользователя не должно потеряться.
func TestSyncEngine_DeleteDuringInFlightCreate(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntityConnection, connectionPayload("Short-lived"))
	require.NoError(t, err)

	f.server.uploadHook = func(call int64) error {
		if call == 1 {
			assert.NoError(t, f.entities.Delete(testContext(), a.ID))
		}
		return nil
	}

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)
	assert.Zero(t, summary.Conflicts)

	rec, ok, err := f.tracker.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok, "the delete is queued again")
	assert.Equal(t, models.OperationDelete, rec.Operation)
	assert.Equal(t, int64(1), rec.BaseVersion)

	local := f.local(t, a.ID)
	assert.True(t, local.IsDeleted())
	assert.Equal(t, int64(1), local.SyncVersion)

	f.server.uploadHook = nil
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	remote, ok := f.server.entity(a.ID)
	require.True(t, ok)
	assert.True(t, remote.IsDeleted())
	assert.Equal(t, int64(2), remote.SyncVersion)
	assert.Empty(t, f.pending(t))

	_, err = f.entities.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrEntityDeleted, "the entity stays deleted after the download")
}

func TestSyncEngine_DeleteDuringInFlightUpdate(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	a, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("v1"))
	require.NoError(t, err)
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	_, err = f.entities.Update(ctx, a.ID, queryPayload("v2"))
	require.NoError(t, err)

	f.server.uploadHook = func(call int64) error {
		if call == 2 {
			assert.NoError(t, f.entities.Delete(testContext(), a.ID))
		}
		return nil
	}

	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	rec, ok, err := f.tracker.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OperationDelete, rec.Operation)
	assert.Equal(t, int64(2), rec.BaseVersion)

	local := f.local(t, a.ID)
	assert.True(t, local.IsDeleted())
	assert.Equal(t, int64(2), local.SyncVersion)

	f.server.uploadHook = nil
	_, err = f.engine.SyncNow(ctx)
	require.NoError(t, err)

	remote, _ := f.server.entity(a.ID)
	assert.True(t, remote.IsDeleted())
	assert.Equal(t, int64(3), remote.SyncVersion)
	assert.Empty(t, f.pending(t))
}

// Отказ сервиса на уровне батча не прерывает цикл: скачивание продолжается.
func TestSyncEngine_BatchRefusedStillDownloads(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"payload too large", adapter.ErrPayloadTooLarge},
		{"bad request", adapter.ErrBadRequest},
		{"unprocessable", adapter.ErrUnprocessable},
		{"conflict", adapter.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, testSyncOptions())
			f.online()
			f.serve()
			ctx := testContext()

			a, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("huge"))
			require.NoError(t, err)
			f.server.remoteWrite(models.SyncableEntity{
				ID: "r1", Type: models.EntitySavedQuery, UpdatedAt: time.Now().UTC(), Payload: queryPayload("remote"),
			})
			f.server.uploadHook = func(int64) error { return tt.err }

			summary, err := f.engine.SyncNow(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.StateIdle, summary.State)
			assert.Equal(t, 1, summary.Merged)
			require.Len(t, summary.Rejected, 1)
			assert.Equal(t, a.ID, summary.Rejected[0].ID)
			assert.Contains(t, f.sink.errorKinds(), models.ErrorKindValidation)

			assert.Equal(t, "remote", f.local(t, "r1").Title())
			pending := f.pending(t)
			require.Len(t, pending, 1)
			assert.Equal(t, a.ID, pending[0].EntityID)
			assert.Equal(t, int64(1), f.server.uploadCalls.Load(), "refusals are not retried")
		})
	}
}

// Когда сервис отклоняет весь батч, записи отправляются по одной,
// чтобы найти виновную.
func TestSyncEngine_RefusedBatchIsolatesRecord(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	f.online()
	f.serve()
	ctx := testContext()

	good, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("small"))
	require.NoError(t, err)
	big, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload("big"))
	require.NoError(t, err)

	f.server.requestHook = func(req models.UploadRequest) error {
		for _, ch := range req.Changes {
			if ch.EntityID == big.ID {
				return fmt.Errorf("%w: body exceeds limit", adapter.ErrPayloadTooLarge)
			}
		}
		return nil
	}

	summary, err := f.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)
	require.Len(t, summary.Rejected, 1)
	assert.Equal(t, big.ID, summary.Rejected[0].ID)
	assert.Contains(t, summary.Rejected[0].Reason, "body exceeds limit")
	assert.Equal(t, int64(3), f.server.uploadCalls.Load())

	assert.Equal(t, int64(1), f.local(t, good.ID).SyncVersion)
	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, big.ID, pending[0].EntityID)
}

// Отмена контекста наблюдается между батчами.
func TestSyncEngine_CancelBetweenBatches(t *testing.T) {
	opts := testSyncOptions()
	opts.UploadBatchSize = 1
	f := newEngineFixture(t, opts)
	f.online()
	f.serve()

	for i := range 3 {
		_, err := f.entities.Create(testContext(), models.EntitySavedQuery, queryPayload(fmt.Sprintf("q%d", i)))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(testContext())
	defer cancel()
	f.server.uploadHook = func(call int64) error {
		if call == 1 {
			cancel()
		}
		return nil
	}

	summary, err := f.engine.SyncNow(ctx)
	assert.ErrorIs(t, err, ErrSyncCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Uploaded, "the batch in flight completes")

	assert.Len(t, f.server.uploadedIDs(), 1)
	assert.Len(t, f.pending(t), 2)

	meta := f.engine.Metadata()
	assert.False(t, meta.InFlight)
	assert.Equal(t, models.StateIdle, meta.State)

	history, err := f.engine.History(testContext(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, app.MsgSyncCancelled, history[0].Error)
}

func TestSyncEngine_ClearsStaleInFlightFlag(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	ctx := testContext()

	require.NoError(t, f.storages.Metadata.Save(ctx, models.SyncMetadata{
		DeviceID: testDeviceID,
		Cursor:   "7",
		InFlight: true,
		State:    models.StateSyncing,
	}))

	restarted, err := newSyncEngine(ctx, f.engine.syncEngineDeps, testSyncOptions())
	require.NoError(t, err)

	meta := restarted.Metadata()
	assert.False(t, meta.InFlight)
	assert.Equal(t, models.StateIdle, meta.State)
	assert.Equal(t, "7", meta.Cursor)

	persisted, _, err := f.storages.Metadata.Load(ctx, testDeviceID)
	require.NoError(t, err)
	assert.False(t, persisted.InFlight)
}

func TestSyncEngine_EncodeChange(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	rec := models.ChangeRecord{
		EntityType: models.EntityConnection, EntityID: "c", Operation: models.OperationUpdate, LocalVersion: 2, BaseVersion: 4,
	}

	change, err := f.engine.encodeChange(rec, models.SyncableEntity{ID: "c", Payload: connectionPayload("Prod")})
	require.NoError(t, err)
	assert.Equal(t, int64(4), change.BaseVersion)
	assert.Equal(t, testDeviceID, change.OwnerDeviceID)
	assert.NotContains(t, string(change.Payload), "s3cret")

	_, err = f.engine.encodeChange(rec, models.SyncableEntity{ID: "c", Payload: models.Payload{"name": "x", "bad": make(chan int)}})
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.Equal(t, models.ErrorKindSerialization, classifyError(err))
}

// ── status ───────────────────────────────────────────────────────────────────

func TestSyncEngine_SnapshotAndTrigger(t *testing.T) {
	f := newEngineFixture(t, testSyncOptions())
	ctx := testContext()

	for i := range 2 {
		_, err := f.entities.Create(ctx, models.EntitySavedQuery, queryPayload(fmt.Sprintf("q%d", i)))
		require.NoError(t, err)
	}

	snap, err := f.engine.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Pending)
	assert.Empty(t, snap.Conflicts)
	assert.Equal(t, testDeviceID, snap.Metadata.DeviceID)
	assert.Equal(t, models.StateIdle, snap.Metadata.State)

	f.engine.Trigger()
	f.engine.Trigger()
	assert.Len(t, f.engine.Triggers(), 1, "triggers coalesce")
}

func TestSyncEngine_HistoryIsPruned(t *testing.T) {
	opts := testSyncOptions()
	opts.HistoryLimit = 2
	f := newEngineFixture(t, opts)
	f.online()
	f.serve()
	ctx := testContext()

	for range 4 {
		_, err := f.engine.SyncNow(ctx)
		require.NoError(t, err)
	}

	history, err := f.engine.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
