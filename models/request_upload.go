// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// UploadChange is one sanitized local change on the wire.
type UploadChange struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Operation  Operation  `json:"operation"`

	// BaseVersion is the remote version the change was made on top of. The
	// service answers with the accepted SyncVersion BaseVersion+1.
	BaseVersion int64 `json:"base_version"`

	OwnerDeviceID string     `json:"owner_device_id"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	// Payload is the sanitized, pre-encoded payload.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UploadRequest is a batch of sanitized changes.
type UploadRequest struct {
	DeviceID string         `json:"device_id"`
	Changes  []UploadChange `json:"changes"`

	// Hash is the HMAC of the serialized Changes, set by the transport.
	Hash string `json:"hash,omitempty"`

	// Length is the number of entries in Changes.
	Length int `json:"length"`
}

// UploadResult is the service answer to an [UploadRequest].
type UploadResult struct {
	AcceptedIDs []string    `json:"accepted_ids"`
	Rejected    []Rejection `json:"rejected,omitempty"`
}

// Rejection is a per-record validation failure reported by the service.
type Rejection struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
