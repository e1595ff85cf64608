// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/notify"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/utils"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

// ClientServices groups the client services built on one set of storages.
type ClientServices struct {
	Device   ClientDeviceService
	Tracker  ChangeTracker
	Entities ClientEntityService
	Sync     SyncEngine

	// Identity is the device identity the services act for.
	Identity models.DeviceIdentity
}

// NewClientServices resolves the device identity and wires the tracker, the
// entity service and the sync engine. The entity service and the engine share
// one entity writer.
func NewClientServices(ctx context.Context, storages *store.ClientStorages, transport adapter.Transport, sink notify.Sink, deviceName string, opts SyncOptions, logger *logger.Logger) (*ClientServices, error) {
	logger.Info().Msg("creating client services...")

	ids := utils.NewUUIDGenerator()
	validator := validators.NewEntityValidator()

	device := NewClientDeviceService(storages.Device, ids, deviceName)
	identity, err := device.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("device identity: %w", err)
	}

	tracker := NewChangeTracker(storages.Changes, validator)
	writer := newEntityWriter(storages.Entities)

	engine, err := newSyncEngine(ctx, syncEngineDeps{
		transport: transport,
		tracker:   tracker,
		writer:    writer,
		conflicts: storages.Conflicts,
		metadata:  storages.Metadata,
		history:   storages.SyncLog,
		validator: validator,
		ids:       ids,
		sink:      sink,
		device:    identity,
		logger:    logger,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("sync engine: %w", err)
	}

	return &ClientServices{
		Device:   device,
		Tracker:  tracker,
		Entities: newClientEntityService(writer, tracker, validator, ids, identity.ID),
		Sync:     engine,
		Identity: identity,
	}, nil
}
