// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/mock"
	"github.com/MKhiriev/go-conn-sync/internal/service"
	"github.com/MKhiriev/go-conn-sync/internal/workers"
	"github.com/MKhiriev/go-conn-sync/models"
)

// blockingWorker работает до отмены контекста.
type blockingWorker struct {
	started atomic.Bool
	err     error
}

func (w *blockingWorker) Run(ctx context.Context) error {
	w.started.Store(true)
	if w.err != nil {
		return w.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func newTestServices(t *testing.T, engine service.SyncEngine) *service.ClientServices {
	return &service.ClientServices{
		Sync:     engine,
		Entities: mock.NewMockClientEntityService(gomock.NewController(t)),
		Identity: models.DeviceIdentity{ID: "device-a", Name: "laptop"},
	}
}

func TestNewApp_RequiresEngine(t *testing.T) {
	_, err := NewApp(nil, nil, nil, nil, logger.Nop())
	assert.ErrorIs(t, err, errNoSyncEngine)

	_, err = NewApp(&service.ClientServices{}, nil, nil, nil, logger.Nop())
	assert.ErrorIs(t, err, errNoSyncEngine)

	_, err = NewApp(&service.ClientServices{Sync: mock.NewMockSyncEngine(gomock.NewController(t))}, nil, nil, nil, logger.Nop())
	assert.ErrorIs(t, err, errNoEntityService)
}

func TestApp_DaemonRunsInitialSyncThenWorkers(t *testing.T) {
	engine := mock.NewMockSyncEngine(gomock.NewController(t))
	// первая синхронизация падает, но приложение продолжает работу
	engine.EXPECT().SyncNow(gomock.Any()).Return(models.Summary{}, service.ErrRequiresOnline)

	worker := &blockingWorker{}
	app, err := NewApp(newTestServices(t, engine), workers.NewWorkers(worker), nil, &bytes.Buffer{}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx) }()

	require.Eventually(t, worker.started.Load, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_DaemonReturnsWorkerError(t *testing.T) {
	engine := mock.NewMockSyncEngine(gomock.NewController(t))
	engine.EXPECT().SyncNow(gomock.Any()).Return(models.Summary{State: models.StateIdle}, nil)

	boom := errors.New("boom")
	app, err := NewApp(newTestServices(t, engine), workers.NewWorkers(&blockingWorker{err: boom}), nil, &bytes.Buffer{}, logger.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, app.run(context.Background()), boom)
}

func TestApp_CommandModeSkipsWorkers(t *testing.T) {
	engine := mock.NewMockSyncEngine(gomock.NewController(t))
	engine.EXPECT().Conflicts(gomock.Any()).Return(nil, nil)

	worker := &blockingWorker{}
	out := &bytes.Buffer{}
	app, err := NewApp(newTestServices(t, engine), workers.NewWorkers(worker), []string{CommandConflicts}, out, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, app.run(context.Background()))
	assert.False(t, worker.started.Load())
	assert.Equal(t, "no open conflicts\n", out.String())
}

func TestApp_ShutdownRunsClosersInOrder(t *testing.T) {
	engine := mock.NewMockSyncEngine(gomock.NewController(t))
	engine.EXPECT().Resume(gomock.Any()).Return(nil)

	var order []string
	app, err := NewApp(newTestServices(t, engine), nil, []string{CommandResume}, &bytes.Buffer{}, logger.Nop(),
		func() { order = append(order, "dispatcher") },
		nil,
		func() { order = append(order, "storages") },
	)
	require.NoError(t, err)

	require.NoError(t, app.Run())
	assert.Equal(t, []string{"dispatcher", "storages"}, order)
}
