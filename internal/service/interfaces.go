// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "github.com/MKhiriev/go-conn-sync/models"

// ConflictDetector decides whether a downloaded entity diverged from a pending
// local change. It is pure: no I/O and no wall clock reads.
type ConflictDetector interface {
	// Detect returns a conflict when both the local change and the remote
	// entity moved past lastKnownRemoteVersion, and nil otherwise. local is
	// the pending change record, localEntity the entity as stored on this
	// device.
	Detect(local models.ChangeRecord, localEntity, remote models.SyncableEntity, lastKnownRemoteVersion int64) *models.Conflict
}

// ConflictResolver turns a conflict and a strategy into the new canonical
// state. Output depends only on its input, except for the id of the copy made
// by [models.StrategyKeepBoth].
type ConflictResolver interface {
	Resolve(conflict models.Conflict, strategy models.Strategy) (models.Resolution, error)
}

// IDGenerator produces new entity identifiers.
type IDGenerator interface {
	Generate() string
}
