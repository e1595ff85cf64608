// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Operation is the kind of local mutation captured by a [ChangeRecord].
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Rank orders operations by escalation: create < update < delete.
// Unknown operations rank 0.
func (o Operation) Rank() int {
	switch o {
	case OperationCreate:
		return 1
	case OperationUpdate:
		return 2
	case OperationDelete:
		return 3
	default:
		return 0
	}
}

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	return o.Rank() > 0
}

// ChangeRecord is the single pending local change for one entity.
// Later edits of the same entity coalesce into it.
type ChangeRecord struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Operation  Operation  `json:"operation"`

	// LocalVersion counts local edits folded into this record. It is
	// independent of SyncVersion.
	LocalVersion int64 `json:"local_version"`

	// BaseVersion is the SyncVersion the change was made on top of, i.e. the
	// last remote version known when the change was first captured.
	BaseVersion int64 `json:"base_version"`

	// CapturedAt is when the change was first captured. Pending records are
	// uploaded in CapturedAt order.
	CapturedAt time.Time `json:"captured_at"`
}

// ChangeAck acknowledges an uploaded change. The record is only removed if it
// has not been edited again since LocalVersion was uploaded.
type ChangeAck struct {
	EntityID     string
	LocalVersion int64
}

// Ack returns the acknowledgment for the record as it is now.
func (c ChangeRecord) Ack() ChangeAck {
	return ChangeAck{EntityID: c.EntityID, LocalVersion: c.LocalVersion}
}
