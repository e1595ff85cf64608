// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/models"
)

const defaultDeviceName = "unnamed device"

type clientDeviceService struct {
	repo store.DeviceRepository
	ids  IDGenerator
	name string
	now  func() time.Time

	mu       sync.Mutex
	identity *models.DeviceIdentity
}

// NewClientDeviceService returns a [ClientDeviceService]. name labels a newly
// generated identity; when empty the host name is used.
func NewClientDeviceService(repo store.DeviceRepository, ids IDGenerator, name string) ClientDeviceService {
	return &clientDeviceService{
		repo: repo,
		ids:  ids,
		name: name,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *clientDeviceService) Identity(ctx context.Context) (models.DeviceIdentity, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity != nil {
		return *s.identity, nil
	}

	identity, found, err := s.repo.Load(ctx)
	if err != nil {
		return models.DeviceIdentity{}, fmt.Errorf("load device identity: %w", err)
	}

	if !found {
		// Create keeps an identity stored concurrently by another process.
		identity, err = s.repo.Create(ctx, models.DeviceIdentity{
			ID:        s.ids.Generate(),
			Name:      s.deviceName(),
			CreatedAt: s.now(),
		})
		if err != nil {
			return models.DeviceIdentity{}, fmt.Errorf("create device identity: %w", err)
		}
		if identity.New {
			log.Info().
				Str("func", "clientDeviceService.Identity").
				Str("device_id", identity.ID).
				Str("device_name", identity.Name).
				Msg("new device identity generated")
		}
	}

	s.identity = &identity
	return identity, nil
}

func (s *clientDeviceService) Rename(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename device: %w", ErrInvalidDeviceName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Rename(ctx, name); err != nil {
		return fmt.Errorf("rename device: %w", err)
	}
	if s.identity != nil {
		s.identity.Name = name
	}

	return nil
}

func (s *clientDeviceService) deviceName() string {
	if n := strings.TrimSpace(s.name); n != "" {
		return n
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultDeviceName
}
