// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/app"
	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/notify"
	"github.com/MKhiriev/go-conn-sync/internal/sanitizer"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/utils"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

const syncFlightKey = "sync"

// Defaults applied by [SyncOptions] for unset fields.
const (
	DefaultUploadBatchSize   = 200
	DefaultDownloadBatchSize = 500
	DefaultMaxRetries        = 3
	DefaultRetryBaseDelay    = 500 * time.Millisecond
	DefaultRequestTimeout    = 30 * time.Second
	DefaultHistoryLimit      = 50
)

// progress bands of a cycle, in percent.
const (
	progressUploadEnd   = 50
	progressDownloadEnd = 95
	progressPerDownload = 5
)

// SyncOptions tunes the sync engine.
type SyncOptions struct {
	UploadBatchSize   int
	DownloadBatchSize int
	// MaxRetries is the number of retries after the first attempt of a
	// batch.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// RequestTimeout bounds every single network call.
	RequestTimeout time.Duration
	TieBreak       models.Side
	HistoryLimit   int
}

// NewSyncOptions maps the client configuration onto [SyncOptions].
func NewSyncOptions(cfg config.ClientSync, adapterCfg config.ClientAdapter) SyncOptions {
	return SyncOptions{
		UploadBatchSize:   cfg.UploadBatchSize,
		DownloadBatchSize: cfg.DownloadBatchSize,
		MaxRetries:        cfg.MaxRetries,
		RetryBaseDelay:    cfg.RetryBaseDelay,
		RequestTimeout:    adapterCfg.RequestTimeout,
		TieBreak:          models.Side(cfg.TieBreak),
		HistoryLimit:      cfg.HistoryLimit,
	}.withDefaults()
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.UploadBatchSize <= 0 {
		o.UploadBatchSize = DefaultUploadBatchSize
	}
	if o.DownloadBatchSize <= 0 {
		o.DownloadBatchSize = DefaultDownloadBatchSize
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.TieBreak != models.SideLocal {
		o.TieBreak = models.SideRemote
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	return o
}

type syncEngineDeps struct {
	transport adapter.Transport
	tracker   ChangeTracker
	writer    *entityWriter
	conflicts store.ConflictRepository
	metadata  store.MetadataRepository
	history   store.SyncLogRepository
	validator validators.Validator
	ids       IDGenerator
	sink      notify.Sink
	device    models.DeviceIdentity
	logger    *logger.Logger
}

type syncEngine struct {
	syncEngineDeps
	detector ConflictDetector
	resolver ConflictResolver
	opts     SyncOptions
	now      func() time.Time

	flight singleflight.Group
	// cycleMu is held for a whole cycle and for conflict resolutions, which
	// are the only writers of the pending set besides user edits.
	cycleMu sync.Mutex

	persistMu sync.Mutex
	mu        sync.RWMutex
	meta      models.SyncMetadata

	trigger chan struct{}
}

// newSyncEngine loads the device metadata and clears a stale in-flight flag
// left by a crash.
func newSyncEngine(ctx context.Context, deps syncEngineDeps, opts SyncOptions) (*syncEngine, error) {
	if deps.sink == nil {
		deps.sink = notify.Nop
	}
	if deps.logger == nil {
		deps.logger = logger.Nop()
	}
	opts = opts.withDefaults()

	e := &syncEngine{
		syncEngineDeps: deps,
		detector:       NewConflictDetector(opts.TieBreak),
		resolver:       NewConflictResolver(deps.device.ID, deps.ids),
		opts:           opts,
		now:            func() time.Time { return time.Now().UTC() },
		trigger:        make(chan struct{}, 1),
	}

	meta, found, err := deps.metadata.Load(ctx, deps.device.ID)
	if err != nil {
		return nil, fmt.Errorf("load sync metadata: %w", err)
	}

	dirty := !found
	if meta.InFlight || meta.State == models.StateSyncing {
		deps.logger.Warn().
			Str("func", "newSyncEngine").
			Str("device_id", deps.device.ID).
			Msg("clearing in-flight flag left by an interrupted cycle")
		meta.InFlight = false
		meta.State = models.StateIdle
		dirty = true
	}
	if meta.State == "" {
		meta.State = models.StateIdle
	}
	meta.DeviceID = deps.device.ID

	e.meta = meta
	if dirty {
		if err = deps.metadata.Save(ctx, meta); err != nil {
			return nil, fmt.Errorf("save sync metadata: %w", err)
		}
	}

	return e, nil
}

func (e *syncEngine) SyncNow(ctx context.Context) (models.Summary, error) {
	if meta := e.Metadata(); meta.Paused {
		return models.Summary{State: meta.State}, ErrSyncPaused
	}

	v, err, shared := e.flight.Do(syncFlightKey, func() (any, error) {
		return e.runCycle(ctx)
	})
	if shared {
		e.logger.Debug().Str("func", "syncEngine.SyncNow").Msg("joined in-flight sync cycle")
	}

	summary, _ := v.(models.Summary)
	return summary, err
}

func (e *syncEngine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

func (e *syncEngine) Triggers() <-chan struct{} {
	return e.trigger
}

func (e *syncEngine) Resume(ctx context.Context) error {
	err := e.updateMeta(ctx, func(m *models.SyncMetadata) {
		m.Paused = false
		m.ConsecutiveFailures = 0
		if m.State == models.StateError && m.LastErrorKind == models.ErrorKindAuth {
			m.State = models.StateIdle
		}
	})
	if err != nil {
		return err
	}

	e.logger.Info().Str("func", "syncEngine.Resume").Msg("sync resumed")
	return nil
}

func (e *syncEngine) Metadata() models.SyncMetadata {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta
}

func (e *syncEngine) Snapshot(ctx context.Context) (models.SyncSnapshot, error) {
	meta := e.Metadata()

	pending, err := e.tracker.Pending(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	conflicts, err := e.conflicts.List(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}

	return models.SyncSnapshot{Metadata: meta, Pending: len(pending), Conflicts: conflicts}, nil
}

func (e *syncEngine) Conflicts(ctx context.Context) ([]models.Conflict, error) {
	return e.conflicts.List(ctx)
}

func (e *syncEngine) History(ctx context.Context, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.history.List(ctx, limit)
}

// runCycle executes one full cycle. Store writes and in-flight batches run on
// a context detached from ctx; ctx cancellation is observed between batches.
func (e *syncEngine) runCycle(ctx context.Context) (models.Summary, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	cycleID := e.ids.Generate()
	log := e.logger.WithFields("cycle_id", cycleID, "device_id", e.device.ID)
	ctx = utils.WithDeviceID(utils.WithCycleID(log.WithContext(ctx), cycleID), e.device.ID)
	bctx := context.WithoutCancel(ctx)

	summary := models.Summary{StartedAt: e.now(), Cursor: e.Metadata().Cursor}

	if err := e.updateMeta(bctx, func(m *models.SyncMetadata) {
		m.InFlight = true
		m.State = models.StateSyncing
	}); err != nil {
		return summary, err
	}
	e.sink.OnProgress(0)
	log.Info().Str("func", "syncEngine.runCycle").Msg("sync cycle started")

	healthCtx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	online := e.transport.Health(healthCtx)
	cancel()
	if !online {
		return e.failCycle(bctx, summary, ErrRequiresOnline)
	}

	if err := e.upload(ctx, &summary); err != nil {
		if errors.Is(err, ErrSyncCancelled) {
			return e.cancelCycle(bctx, summary, err)
		}
		return e.failCycle(bctx, summary, err)
	}

	if err := e.download(ctx, &summary); err != nil {
		if errors.Is(err, ErrSyncCancelled) {
			return e.cancelCycle(bctx, summary, err)
		}
		return e.failCycle(bctx, summary, err)
	}

	return e.completeCycle(bctx, summary)
}

// uploadItem pairs a pending record with its wire form.
type uploadItem struct {
	record models.ChangeRecord
	change models.UploadChange
}

func (e *syncEngine) upload(ctx context.Context, summary *models.Summary) error {
	bctx := context.WithoutCancel(ctx)

	items, err := e.prepareUploads(bctx, summary)
	if err != nil {
		return err
	}

	batches := chunk(items, e.opts.UploadBatchSize)
	for i, batch := range batches {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSyncCancelled, err)
		}

		result, err := e.uploadBatch(bctx, batch)
		if isRecordLevel(err) {
			// the service refused the batch as a whole; find the records it objects to
			err = e.uploadEach(bctx, batch, err, summary)
		} else if err == nil {
			err = e.applyUploadResult(bctx, batch, result, summary)
		}
		if err != nil {
			return fmt.Errorf("upload batch %d/%d: %w", i+1, len(batches), err)
		}

		e.sink.OnProgress(progressUploadEnd * (i + 1) / len(batches))
	}
	if len(batches) == 0 {
		e.sink.OnProgress(progressUploadEnd)
	}

	return nil
}

// prepareUploads loads, sanitizes and encodes every pending change. Records
// of entities with an open conflict wait for the resolution.
func (e *syncEngine) prepareUploads(ctx context.Context, summary *models.Summary) ([]uploadItem, error) {
	log := logger.FromContext(ctx)

	pending, err := e.tracker.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("gather pending changes: %w", err)
	}
	open, err := e.conflicts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	blocked := make(map[string]struct{}, len(open))
	for _, c := range open {
		blocked[c.EntityID] = struct{}{}
	}

	items := make([]uploadItem, 0, len(pending))
	for _, rec := range pending {
		if _, ok := blocked[rec.EntityID]; ok {
			continue
		}

		entity, err := e.writer.store.Get(ctx, rec.EntityID)
		if isNotFound(err) {
			log.Warn().
				Str("func", "syncEngine.prepareUploads").
				Str("entity_id", rec.EntityID).
				Msg("pending change without entity, discarding")
			if err = e.tracker.Discard(ctx, rec.EntityID); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load entity %s: %w", rec.EntityID, err)
		}

		change, err := e.encodeChange(rec, entity)
		if err != nil {
			log.Err(err).
				Str("func", "syncEngine.prepareUploads").
				Str("entity_id", rec.EntityID).
				Msg("excluding change that cannot be serialized")
			summary.Skipped = append(summary.Skipped, rec.EntityID)
			e.sink.OnError(models.ErrorKindSerialization,
				fmt.Sprintf("%s %s: %v", app.MsgRecordNotSerializable, rec.EntityID, err))
			continue
		}

		items = append(items, uploadItem{record: rec, change: change})
	}

	return items, nil
}

func (e *syncEngine) encodeChange(rec models.ChangeRecord, entity models.SyncableEntity) (models.UploadChange, error) {
	change := models.UploadChange{
		EntityType:    rec.EntityType,
		EntityID:      rec.EntityID,
		Operation:     rec.Operation,
		BaseVersion:   rec.BaseVersion,
		OwnerDeviceID: e.device.ID,
		UpdatedAt:     entity.UpdatedAt,
		DeletedAt:     entity.DeletedAt,
	}
	if rec.Operation == models.OperationDelete {
		return change, nil
	}

	raw, err := sanitizer.Sanitize(entity.Payload).Marshal()
	if err != nil {
		return models.UploadChange{}, fmt.Errorf("%w: %w", store.ErrEncodingPayload, err)
	}
	change.Payload = raw

	return change, nil
}

func (e *syncEngine) uploadBatch(ctx context.Context, batch []uploadItem) (models.UploadResult, error) {
	req := models.UploadRequest{
		DeviceID: e.device.ID,
		Changes:  make([]models.UploadChange, 0, len(batch)),
	}
	for _, it := range batch {
		req.Changes = append(req.Changes, it.change)
	}

	var result models.UploadResult
	err := e.withRetry(ctx, "upload", func(ctx context.Context) error {
		res, err := e.transport.Upload(ctx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	return result, err
}

// uploadEach sends the records of a refused batch one at a time. A record the
// service still refuses is reported as rejected and stays pending.
func (e *syncEngine) uploadEach(ctx context.Context, batch []uploadItem, cause error, summary *models.Summary) error {
	if len(batch) == 1 {
		e.reject(ctx, batch[0], cause, summary)
		return nil
	}

	for _, it := range batch {
		single := []uploadItem{it}
		result, err := e.uploadBatch(ctx, single)
		if isRecordLevel(err) {
			e.reject(ctx, it, err, summary)
			continue
		}
		if err != nil {
			return err
		}
		if err = e.applyUploadResult(ctx, single, result, summary); err != nil {
			return err
		}
	}
	return nil
}

func (e *syncEngine) reject(ctx context.Context, it uploadItem, cause error, summary *models.Summary) {
	logger.FromContext(ctx).Warn().
		Err(cause).
		Str("func", "syncEngine.reject").
		Str("entity_id", it.record.EntityID).
		Msg("service refused change")

	rj := models.Rejection{ID: it.record.EntityID, Reason: sanitizer.SanitizeString(cause.Error())}
	summary.Rejected = append(summary.Rejected, rj)
	e.sink.OnError(models.ErrorKindValidation, fmt.Sprintf("%s %s: %s", app.MsgRecordRejected, rj.ID, rj.Reason))
}

// isRecordLevel reports whether the service refused the content of an upload
// rather than the request itself.
func isRecordLevel(err error) bool {
	if err == nil {
		return false
	}
	kind := classifyError(err)
	return kind == models.ErrorKindValidation || kind == models.ErrorKindConflict
}

// applyUploadResult advances the version of accepted entities and
// acknowledges their records. Rejected records stay pending.
func (e *syncEngine) applyUploadResult(ctx context.Context, batch []uploadItem, result models.UploadResult, summary *models.Summary) error {
	for _, rj := range result.Rejected {
		summary.Rejected = append(summary.Rejected, rj)
		e.sink.OnError(models.ErrorKindValidation, fmt.Sprintf("%s %s: %s", app.MsgRecordRejected, rj.ID, rj.Reason))
	}

	accepted := make(map[string]struct{}, len(result.AcceptedIDs))
	for _, id := range result.AcceptedIDs {
		accepted[id] = struct{}{}
	}

	acks := make([]models.ChangeAck, 0, len(accepted))
	versions := make(map[string]int64, len(accepted))
	reDeleted := 0
	for _, it := range batch {
		if _, ok := accepted[it.record.EntityID]; !ok {
			continue
		}
		version := it.record.BaseVersion + 1

		tombstoned := false
		err := e.writer.locked(func(st store.LocalStore) error {
			entity, err := st.Get(ctx, it.record.EntityID)
			if isNotFound(err) {
				tombstoned, err = e.redeleteAccepted(ctx, st, it, version)
				return err
			}
			if err != nil {
				return err
			}
			if entity.SyncVersion >= version {
				return nil
			}
			entity.SyncVersion = version
			entity.OwnerDeviceID = e.device.ID
			return st.Apply(ctx, entity)
		})
		if err != nil {
			return fmt.Errorf("advance version of %s: %w", it.record.EntityID, err)
		}
		if tombstoned {
			reDeleted++
			continue
		}

		acks = append(acks, it.record.Ack())
		versions[it.record.EntityID] = version
	}

	if _, err := e.tracker.Acknowledge(ctx, acks...); err != nil {
		return err
	}

	// Records edited again while the batch was in flight stay pending on
	// top of the version just acknowledged.
	for _, ack := range acks {
		rec, ok, err := e.tracker.Get(ctx, ack.EntityID)
		if err != nil {
			return err
		}
		if ok && rec.BaseVersion < versions[ack.EntityID] {
			if err = e.tracker.Rebase(ctx, ack.EntityID, versions[ack.EntityID]); err != nil {
				return err
			}
		}
	}

	summary.Uploaded += len(acks) + reDeleted
	return nil
}

// redeleteAccepted handles an accepted write whose entity is gone locally.
// That happens when the user deletes a record while its create is in flight:
// the tracker cancels the create, yet the service now holds the record. A
// tombstone at the accepted version and a pending delete carry the user's
// delete to the service on the next cycle. Must be called under the writer
// lock.
func (e *syncEngine) redeleteAccepted(ctx context.Context, st store.LocalStore, it uploadItem, version int64) (bool, error) {
	if it.record.Operation == models.OperationDelete {
		return false, nil
	}
	if _, pending, err := e.tracker.Get(ctx, it.record.EntityID); err != nil || pending {
		return false, err
	}

	payload, err := models.UnmarshalPayload(it.change.Payload)
	if err != nil || payload == nil {
		payload = models.Payload{}
	}
	now := e.now()
	tomb := models.SyncableEntity{
		ID:            it.record.EntityID,
		Type:          it.record.EntityType,
		OwnerDeviceID: e.device.ID,
		SyncVersion:   version,
		UpdatedAt:     now,
		DeletedAt:     &now,
		Payload:       payload,
	}
	if err = st.Apply(ctx, tomb); err != nil {
		return false, err
	}
	if _, _, err = e.tracker.Record(ctx, it.record.EntityType, it.record.EntityID, models.OperationDelete, version); err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.redeleteAccepted").
		Str("entity_id", it.record.EntityID).
		Int64("version", version).
		Msg("entity deleted while its upload was in flight, delete queued")
	return true, nil
}

func (e *syncEngine) download(ctx context.Context, summary *models.Summary) error {
	bctx := context.WithoutCancel(ctx)
	cursor := summary.Cursor

	for batch := 1; ; batch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSyncCancelled, err)
		}

		var res models.DownloadResult
		err := e.withRetry(bctx, "download", func(ctx context.Context) error {
			r, err := e.transport.Download(ctx, models.DownloadRequest{
				DeviceID: e.device.ID,
				Cursor:   cursor,
				Limit:    e.opts.DownloadBatchSize,
			})
			if err != nil {
				return err
			}
			res = r
			return nil
		})
		if err != nil {
			return fmt.Errorf("download batch %d: %w", batch, err)
		}

		summary.Downloaded += len(res.Entities)
		if err = e.applyDownloaded(bctx, res.Entities, summary); err != nil {
			return err
		}

		advanced := res.NextCursor != "" && res.NextCursor != cursor
		if advanced {
			cursor = res.NextCursor
			if err = e.updateMeta(bctx, func(m *models.SyncMetadata) { m.Cursor = cursor }); err != nil {
				return err
			}
		}
		summary.Cursor = cursor

		e.sink.OnProgress(min(progressDownloadEnd, progressUploadEnd+progressPerDownload*batch))

		if !res.HasMore || !advanced {
			return nil
		}
	}
}

// applyDownloaded applies a batch in server order. Entities with a pending
// local change go through the detector; the rest are merged when newer.
func (e *syncEngine) applyDownloaded(ctx context.Context, entities []models.SyncableEntity, summary *models.Summary) error {
	log := logger.FromContext(ctx)

	for _, remote := range entities {
		if err := e.validator.Validate(ctx, remote, validators.FieldID, validators.FieldType, validators.FieldSyncVersion); err != nil {
			log.Warn().Err(err).
				Str("func", "syncEngine.applyDownloaded").
				Str("entity_id", remote.ID).
				Msg("skipping invalid remote entity")
			summary.Skipped = append(summary.Skipped, remote.ID)
			e.sink.OnError(models.ErrorKindValidation, fmt.Sprintf("%s %s: %v", app.MsgRecordRejected, remote.ID, err))
			continue
		}

		var detected *models.Conflict
		err := e.writer.locked(func(st store.LocalStore) error {
			local, err := st.Get(ctx, remote.ID)
			found := err == nil
			if err != nil && !isNotFound(err) {
				return err
			}

			rec, pending, err := e.tracker.Get(ctx, remote.ID)
			if err != nil {
				return err
			}

			if pending && found {
				detected = e.detector.Detect(rec, local, remote, local.SyncVersion)
				// Without a conflict the remote did not move: the pending
				// local change wins and is uploaded next cycle.
				return nil
			}

			if found && remote.SyncVersion <= local.SyncVersion {
				return nil
			}

			merged := remote.Clone()
			if found {
				merged.Payload = sanitizer.Restore(remote.Payload, local.Payload)
			}
			if err = st.Apply(ctx, merged); err != nil {
				return err
			}
			summary.Merged++
			return nil
		})
		if err != nil {
			return fmt.Errorf("apply remote entity %s: %w", remote.ID, err)
		}

		if detected != nil {
			if err = e.enqueueConflict(ctx, *detected); err != nil {
				return err
			}
			summary.Conflicts++
		}
	}

	return nil
}

// enqueueConflict persists c, replacing an earlier detection for the same
// entity. The sink only hears about new conflicts.
func (e *syncEngine) enqueueConflict(ctx context.Context, c models.Conflict) error {
	_, err := e.conflicts.Get(ctx, c.EntityID)
	isNew := errors.Is(err, store.ErrConflictNotFound)
	if err != nil && !isNew {
		return err
	}

	if err = e.conflicts.Save(ctx, c); err != nil {
		return fmt.Errorf("save conflict %s: %w", c.EntityID, err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.enqueueConflict").
		Str("entity_id", c.EntityID).
		Str("recommended", string(c.Recommended)).
		Str("reason", c.Reason).
		Msg("conflict detected")

	if isNew {
		e.sink.OnConflict(c)
	}
	return nil
}

// withRetry runs fn with a per-call timeout and retries transient failures
// with exponential backoff.
func (e *syncEngine) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(e.opts.MaxRetries), retry.NewExponential(e.opts.RetryBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if adapter.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Err(err).
				Str("func", "syncEngine.withRetry").
				Str("op", op).
				Int("attempt", attempt).
				Msg("transient failure")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (e *syncEngine) completeCycle(ctx context.Context, summary models.Summary) (models.Summary, error) {
	state, err := e.settledState(ctx)
	if err != nil {
		return e.failCycle(ctx, summary, err)
	}

	now := e.now()
	summary.State = state
	summary.Duration = now.Sub(summary.StartedAt)

	if err = e.updateMeta(ctx, func(m *models.SyncMetadata) {
		m.InFlight = false
		m.State = state
		m.LastSyncAt = &now
		m.LastError = ""
		m.LastErrorKind = ""
		m.ConsecutiveFailures = 0
	}); err != nil {
		return summary, err
	}
	e.appendHistory(ctx, summary, "")

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.completeCycle").
		Str("state", string(state)).
		Int("uploaded", summary.Uploaded).
		Int("merged", summary.Merged).
		Int("conflicts", summary.Conflicts).
		Dur("duration", summary.Duration).
		Msg("sync cycle finished")

	e.sink.OnProgress(100)
	e.sink.OnComplete(summary)
	return summary, nil
}

func (e *syncEngine) failCycle(ctx context.Context, summary models.Summary, cause error) (models.Summary, error) {
	kind := classifyError(cause)
	msg := sanitizer.SanitizeString(errorMessage(kind, cause))

	summary.State = models.StateError
	summary.Duration = e.now().Sub(summary.StartedAt)

	if err := e.updateMeta(ctx, func(m *models.SyncMetadata) {
		m.InFlight = false
		m.State = models.StateError
		m.LastError = msg
		m.LastErrorKind = kind
		// Offline is not a failure of the service: the next trigger retries
		// without backoff.
		if !errors.Is(cause, ErrRequiresOnline) {
			m.ConsecutiveFailures++
		}
		if kind == models.ErrorKindAuth {
			m.Paused = true
		}
	}); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncEngine.failCycle").Msg("failed to persist sync metadata")
	}
	e.appendHistory(ctx, summary, msg)

	logger.FromContext(ctx).Error().Err(cause).
		Str("func", "syncEngine.failCycle").
		Str("kind", string(kind)).
		Msg("sync cycle failed")

	e.sink.OnError(kind, msg)
	e.sink.OnComplete(summary)
	return summary, cause
}

func (e *syncEngine) cancelCycle(ctx context.Context, summary models.Summary, cause error) (models.Summary, error) {
	state, err := e.settledState(ctx)
	if err != nil {
		state = models.StateIdle
	}
	summary.State = state
	summary.Duration = e.now().Sub(summary.StartedAt)

	if err = e.updateMeta(ctx, func(m *models.SyncMetadata) {
		m.InFlight = false
		m.State = state
	}); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncEngine.cancelCycle").Msg("failed to persist sync metadata")
	}
	e.appendHistory(ctx, summary, app.MsgSyncCancelled)

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.cancelCycle").
		Str("cursor", summary.Cursor).
		Msg("sync cycle cancelled between batches")

	e.sink.OnComplete(summary)
	return summary, cause
}

// settledState is the resting state given the open conflicts.
func (e *syncEngine) settledState(ctx context.Context) (models.SyncState, error) {
	open, err := e.conflicts.List(ctx)
	if err != nil {
		return models.StateIdle, err
	}
	if len(open) > 0 {
		return models.StateConflictsPending, nil
	}
	return models.StateIdle, nil
}

func (e *syncEngine) appendHistory(ctx context.Context, summary models.Summary, errMsg string) {
	log := logger.FromContext(ctx)

	entry := models.SyncLog{
		ID:        e.ids.Generate(),
		DeviceID:  e.device.ID,
		State:     summary.State,
		Pushed:    summary.Uploaded,
		Pulled:    summary.Merged,
		Conflicts: summary.Conflicts,
		Error:     errMsg,
		SyncedAt:  e.now(),
	}
	if err := e.history.Append(ctx, entry); err != nil {
		log.Err(err).Str("func", "syncEngine.appendHistory").Msg("failed to append sync history")
		return
	}
	if err := e.history.Prune(ctx, e.opts.HistoryLimit); err != nil {
		log.Err(err).Str("func", "syncEngine.appendHistory").Msg("failed to prune sync history")
	}
}

// updateMeta applies fn to the metadata and persists the result.
func (e *syncEngine) updateMeta(ctx context.Context, fn func(m *models.SyncMetadata)) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	next := e.meta
	fn(&next)
	e.meta = next
	e.mu.Unlock()

	if err := e.metadata.Save(ctx, next); err != nil {
		return fmt.Errorf("save sync metadata: %w", err)
	}
	return nil
}

func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}
