// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/service"
	"github.com/MKhiriev/go-conn-sync/models"
)

const defaultProbeInterval = 15 * time.Second

// ConnectivityWorker probes the sync service while the last cycle failed for
// lack of network and triggers a cycle as soon as it answers again.
type ConnectivityWorker struct {
	transport adapter.Transport
	engine    service.SyncEngine
	interval  time.Duration
	timeout   time.Duration
	logger    *logger.Logger
}

func NewConnectivityWorker(transport adapter.Transport, engine service.SyncEngine, interval, timeout time.Duration, logger *logger.Logger) *ConnectivityWorker {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &ConnectivityWorker{
		transport: transport,
		engine:    engine,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.WithFields("worker", "connectivity"),
	}
}

func (w *ConnectivityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

func (w *ConnectivityWorker) probe(ctx context.Context) {
	meta := w.engine.Metadata()
	if meta.State != models.StateError || meta.LastErrorKind != models.ErrorKindNetwork || meta.Paused {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if !w.transport.Health(probeCtx) {
		return
	}

	w.logger.Info().Str("func", "ConnectivityWorker.probe").Msg("sync service reachable again, triggering sync")
	w.engine.Trigger()
}
