// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-conn-sync/internal/app"
)

var (
	ErrRequiresOnline = errors.New(app.MsgRequiresOnline)
	ErrSyncPaused     = errors.New(app.MsgSyncPaused)
	ErrSyncCancelled  = errors.New(app.MsgSyncCancelled)

	ErrEntityDeleted    = errors.New(app.MsgEntityDeleted)
	ErrConflictNotFound = errors.New(app.MsgConflictNotFound)
	ErrInvalidStrategy  = errors.New(app.MsgInvalidStrategy)

	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidDeviceName = errors.New("device name is empty")
)
