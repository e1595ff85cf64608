// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/mock"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

const testDeviceID = "device-a"

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// seqIDs выдаёт предсказуемые идентификаторы: prefix-1, prefix-2, ...
type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "client.db")
	storages, err := store.NewClientStorages(testContext(), config.ClientStorage{DB: config.ClientDB{DSN: dsn}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })
	return storages
}

func connectionPayload(name string) models.Payload {
	return models.Payload{
		"name":     name,
		"driver":   "postgres",
		"host":     "db.internal",
		"port":     float64(5432),
		"password": "s3cret",
	}
}

func queryPayload(title string) models.Payload {
	return models.Payload{"title": title, "query": "select 1"}
}

// ── recording sink ───────────────────────────────────────────────────────────

type recordingSink struct {
	mu        sync.Mutex
	progress  []int
	conflicts []models.Conflict
	errors    []models.ErrorKind
	messages  []string
	completed []models.Summary
}

func (s *recordingSink) OnProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, percent)
}

func (s *recordingSink) OnConflict(c models.Conflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = append(s.conflicts, c)
}

func (s *recordingSink) OnError(kind models.ErrorKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, kind)
	s.messages = append(s.messages, message)
}

func (s *recordingSink) OnComplete(summary models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, summary)
}

func (s *recordingSink) errorKinds() []models.ErrorKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ErrorKind(nil), s.errors...)
}

func (s *recordingSink) conflictCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conflicts)
}

func (s *recordingSink) progressValues() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.progress...)
}

// ── fake sync service ────────────────────────────────────────────────────────

// fakeServer is an in-memory sync service. Every accepted change appends the
// entity id to a change log; the download cursor is a position in that log.
type fakeServer struct {
	mu       sync.Mutex
	entities map[string]models.SyncableEntity
	log      []string
	uploads  []models.UploadChange

	uploadCalls atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64

	// uploadHook runs before every upload call. A non-nil error is returned
	// as the call result.
	uploadHook   func(call int64) error
	requestHook  func(req models.UploadRequest) error
	downloadHook func(cursor string) error
	reject       map[string]string
}

func newFakeServer() *fakeServer {
	return &fakeServer{entities: make(map[string]models.SyncableEntity), reject: make(map[string]string)}
}

func (s *fakeServer) Upload(_ context.Context, req models.UploadRequest) (models.UploadResult, error) {
	call := s.uploadCalls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if s.uploadHook != nil {
		if err := s.uploadHook(call); err != nil {
			return models.UploadResult{}, err
		}
	}
	if s.requestHook != nil {
		if err := s.requestHook(req); err != nil {
			return models.UploadResult{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res models.UploadResult
	for _, ch := range req.Changes {
		if reason, ok := s.reject[ch.EntityID]; ok {
			res.Rejected = append(res.Rejected, models.Rejection{ID: ch.EntityID, Reason: reason})
			continue
		}
		current := s.entities[ch.EntityID]
		if current.SyncVersion != ch.BaseVersion {
			res.Rejected = append(res.Rejected, models.Rejection{ID: ch.EntityID, Reason: "stale base version"})
			continue
		}

		payload, err := models.UnmarshalPayload(ch.Payload)
		if err != nil {
			return models.UploadResult{}, err
		}
		if ch.Operation == models.OperationDelete {
			payload = current.Payload
		}
		s.entities[ch.EntityID] = models.SyncableEntity{
			ID:            ch.EntityID,
			Type:          ch.EntityType,
			OwnerDeviceID: ch.OwnerDeviceID,
			SyncVersion:   ch.BaseVersion + 1,
			UpdatedAt:     ch.UpdatedAt,
			DeletedAt:     ch.DeletedAt,
			Payload:       payload,
		}
		s.log = append(s.log, ch.EntityID)
		s.uploads = append(s.uploads, ch)
		res.AcceptedIDs = append(res.AcceptedIDs, ch.EntityID)
	}
	return res, nil
}

func (s *fakeServer) Download(_ context.Context, req models.DownloadRequest) (models.DownloadResult, error) {
	if s.downloadHook != nil {
		if err := s.downloadHook(req.Cursor); err != nil {
			return models.DownloadResult{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if req.Cursor != "" {
		var err error
		if start, err = strconv.Atoi(req.Cursor); err != nil {
			return models.DownloadResult{}, err
		}
	}
	end := min(start+req.Limit, len(s.log))

	res := models.DownloadResult{NextCursor: strconv.Itoa(end), HasMore: end < len(s.log)}
	for _, id := range s.log[start:end] {
		res.Entities = append(res.Entities, s.entities[id].Clone())
	}
	return res, nil
}

// remoteWrite simulates another device writing e on top of the current
// server version.
func (s *fakeServer) remoteWrite(e models.SyncableEntity) models.SyncableEntity {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.SyncVersion = s.entities[e.ID].SyncVersion + 1
	if e.OwnerDeviceID == "" {
		e.OwnerDeviceID = "device-b"
	}
	s.entities[e.ID] = e.Clone()
	s.log = append(s.log, e.ID)
	return e
}

func (s *fakeServer) entity(id string) (models.SyncableEntity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	return e.Clone(), ok
}

func (s *fakeServer) uploadedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.uploads))
	for _, ch := range s.uploads {
		ids = append(ids, ch.EntityID)
	}
	return ids
}

func (s *fakeServer) uploaded() []models.UploadChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UploadChange(nil), s.uploads...)
}

// ── engine fixture ───────────────────────────────────────────────────────────

type engineFixture struct {
	engine    *syncEngine
	entities  *clientEntityService
	tracker   ChangeTracker
	storages  *store.ClientStorages
	transport *mock.MockTransport
	server    *fakeServer
	sink      *recordingSink
	ids       *seqIDs
}

func testSyncOptions() SyncOptions {
	return SyncOptions{
		UploadBatchSize:   2,
		DownloadBatchSize: 2,
		MaxRetries:        2,
		RetryBaseDelay:    time.Millisecond,
		RequestTimeout:    time.Second,
		HistoryLimit:      10,
	}
}

// newEngineFixture wires an engine over real SQLite storages and a gomock
// transport backed by a fakeServer. Health answers online unless overridden
// with expectations of its own.
func newEngineFixture(t *testing.T, opts SyncOptions) *engineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &engineFixture{
		storages:  newTestStorages(t),
		transport: mock.NewMockTransport(ctrl),
		server:    newFakeServer(),
		sink:      &recordingSink{},
		ids:       &seqIDs{prefix: "id"},
	}

	validator := validators.NewEntityValidator()
	f.tracker = NewChangeTracker(f.storages.Changes, validator)
	writer := newEntityWriter(f.storages.Entities)

	engine, err := newSyncEngine(testContext(), syncEngineDeps{
		transport: f.transport,
		tracker:   f.tracker,
		writer:    writer,
		conflicts: f.storages.Conflicts,
		metadata:  f.storages.Metadata,
		history:   f.storages.SyncLog,
		validator: validator,
		ids:       f.ids,
		sink:      f.sink,
		device:    models.DeviceIdentity{ID: testDeviceID, Name: "laptop"},
		logger:    logger.Nop(),
	}, opts)
	require.NoError(t, err)

	f.engine = engine
	f.entities = newClientEntityService(writer, f.tracker, validator, f.ids, testDeviceID)
	return f
}

// serve routes Upload and Download to the fake server.
func (f *engineFixture) serve() {
	f.transport.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(f.server.Upload).AnyTimes()
	f.transport.EXPECT().Download(gomock.Any(), gomock.Any()).DoAndReturn(f.server.Download).AnyTimes()
}

func (f *engineFixture) online() {
	f.transport.EXPECT().Health(gomock.Any()).Return(true).AnyTimes()
}

func (f *engineFixture) pending(t *testing.T) []models.ChangeRecord {
	t.Helper()
	records, err := f.tracker.Pending(testContext())
	require.NoError(t, err)
	return records
}

func (f *engineFixture) local(t *testing.T, id string) models.SyncableEntity {
	t.Helper()
	e, err := f.storages.Entities.Get(testContext(), id)
	require.NoError(t, err)
	return e
}
