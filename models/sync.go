// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncState is the state of the sync engine.
type SyncState string

const (
	StateIdle             SyncState = "idle"
	StateSyncing          SyncState = "syncing"
	StateConflictsPending SyncState = "conflicts_pending"
	StateError            SyncState = "error"
)

// ErrorKind classifies sync failures.
type ErrorKind string

const (
	// ErrorKindNetwork is transient: retried with backoff.
	ErrorKindNetwork ErrorKind = "network"
	// ErrorKindAuth pauses syncing until credentials are refreshed.
	ErrorKindAuth ErrorKind = "auth"
	// ErrorKindValidation is a per-record rejection.
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindConflict is not a failure; it marks a surfaced conflict.
	ErrorKindConflict ErrorKind = "conflict"
	// ErrorKindSerialization is a per-record encoding failure.
	ErrorKindSerialization ErrorKind = "serialization"
	// ErrorKindInternal covers unexpected failures.
	ErrorKindInternal ErrorKind = "internal"
)

// SyncMetadata is the per-device sync state owned by the sync engine.
type SyncMetadata struct {
	// Cursor marks the last downloaded position. Opaque, server-issued.
	Cursor     string     `json:"cursor"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	DeviceID   string     `json:"device_id"`
	// InFlight is true while a cycle runs.
	InFlight bool `json:"in_flight"`

	State               SyncState `json:"state"`
	LastError           string    `json:"last_error,omitempty"`
	LastErrorKind       ErrorKind `json:"last_error_kind,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	// Paused is set after an auth failure and cleared by Resume.
	Paused bool `json:"paused"`
}

// Summary reports the outcome of one sync cycle.
type Summary struct {
	State      SyncState     `json:"state"`
	Uploaded   int           `json:"uploaded"`
	Rejected   []Rejection   `json:"rejected,omitempty"`
	Skipped    []string      `json:"skipped,omitempty"`
	Downloaded int           `json:"downloaded"`
	Merged     int           `json:"merged"`
	Conflicts  int           `json:"conflicts"`
	Cursor     string        `json:"cursor"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// SyncLog is an audit entry written after every finished cycle.
type SyncLog struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	State     SyncState `json:"state"`
	Pushed    int       `json:"pushed"`
	Pulled    int       `json:"pulled"`
	Conflicts int       `json:"conflicts"`
	Error     string    `json:"error,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
}

// DeviceIdentity is the stable per-installation identifier.
type DeviceIdentity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// New is true when the identity was generated during this run.
	New bool `json:"-"`
}

// SyncSnapshot is a consistent read-only view of the engine for the UI.
type SyncSnapshot struct {
	Metadata  SyncMetadata `json:"metadata"`
	Pending   int          `json:"pending"`
	Conflicts []Conflict   `json:"conflicts"`
}
