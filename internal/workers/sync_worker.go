// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/service"
)

const (
	defaultSyncInterval = 5 * time.Minute
	defaultBackoffBase  = time.Second
)

// SyncWorker runs a sync cycle every interval and whenever the engine is
// triggered. After failed cycles the next run is brought forward with an
// exponential backoff capped at the interval.
type SyncWorker struct {
	engine      service.SyncEngine
	interval    time.Duration
	backoffBase time.Duration
	logger      *logger.Logger
}

func NewSyncWorker(engine service.SyncEngine, workersCfg config.ClientWorkers, syncCfg config.ClientSync, logger *logger.Logger) *SyncWorker {
	w := &SyncWorker{
		engine:      engine,
		interval:    workersCfg.SyncInterval,
		backoffBase: syncCfg.RetryBaseDelay,
		logger:      logger.WithFields("worker", "sync"),
	}
	if w.interval <= 0 {
		w.interval = defaultSyncInterval
	}
	if w.backoffBase <= 0 || w.backoffBase > w.interval {
		w.backoffBase = min(defaultBackoffBase, w.interval)
	}
	return w
}

func (w *SyncWorker) Run(ctx context.Context) error {
	w.logger.Info().
		Str("func", "SyncWorker.Run").
		Dur("interval", w.interval).
		Msg("sync worker started")

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("func", "SyncWorker.Run").Msg("sync worker stopped")
			return nil
		case <-timer.C:
		case <-w.engine.Triggers():
		}

		w.runOnce(ctx)

		timer.Stop()
		timer.Reset(w.nextDelay())
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	if w.engine.Metadata().Paused {
		w.logger.Debug().Str("func", "SyncWorker.runOnce").Msg("sync paused, skipping cycle")
		return
	}

	summary, err := w.engine.SyncNow(ctx)
	switch {
	case err == nil:
		w.logger.Debug().
			Str("func", "SyncWorker.runOnce").
			Int("uploaded", summary.Uploaded).
			Int("merged", summary.Merged).
			Msg("scheduled sync finished")
	case errors.Is(err, service.ErrRequiresOnline), errors.Is(err, service.ErrSyncCancelled), errors.Is(err, service.ErrSyncPaused):
		w.logger.Info().Err(err).Str("func", "SyncWorker.runOnce").Msg("scheduled sync skipped")
	default:
		w.logger.Warn().Err(err).Str("func", "SyncWorker.runOnce").Msg("scheduled sync failed")
	}
}

// nextDelay is the interval, or the backoff for the current failure streak.
func (w *SyncWorker) nextDelay() time.Duration {
	failures := w.engine.Metadata().ConsecutiveFailures
	if failures <= 0 {
		return w.interval
	}

	backoff := retry.WithCappedDuration(w.interval, retry.NewExponential(w.backoffBase))
	delay := w.interval
	for range failures {
		d, stop := backoff.Next()
		if stop {
			break
		}
		delay = d
	}
	return delay
}
