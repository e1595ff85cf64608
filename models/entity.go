// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// EntityType names the kind of record carried by a [SyncableEntity].
type EntityType string

const (
	// EntityConnection is a database connection profile.
	EntityConnection EntityType = "connection"
	// EntitySavedQuery is a user's saved SQL query.
	EntitySavedQuery EntityType = "saved_query"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	return t == EntityConnection || t == EntitySavedQuery
}

// SyncableEntity is one connection profile or saved query as stored on this
// device. It is the unit exchanged with the remote sync service.
type SyncableEntity struct {
	// ID is the stable identifier of the entity. It never changes.
	ID string `json:"id" validate:"required"`

	// Type is the entity kind.
	Type EntityType `json:"type" validate:"required,oneof=connection saved_query"`

	// OwnerDeviceID is the device that last wrote the entity.
	OwnerDeviceID string `json:"owner_device_id"`

	// SyncVersion increases by exactly one for every change acknowledged by
	// the remote service.
	SyncVersion int64 `json:"sync_version" validate:"gte=0"`

	// UpdatedAt is the wall-clock time of the last local mutation. It is a
	// tie-break heuristic only.
	UpdatedAt time.Time `json:"updated_at"`

	// DeletedAt is the tombstone timestamp. A tombstoned entity is hidden from
	// normal listings but kept for conflict comparison.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Payload holds the entity fields. It may contain secrets, which stay in
	// the local store and are redacted before upload.
	Payload Payload `json:"payload"`
}

// IsDeleted reports whether the entity carries a tombstone.
func (e SyncableEntity) IsDeleted() bool {
	return e.DeletedAt != nil
}

// Title returns the user-visible title of the entity, if any.
func (e SyncableEntity) Title() string {
	key := e.Payload.TitleKey()
	if key == "" {
		return ""
	}
	s, _ := e.Payload[key].(string)
	return s
}

// Clone returns a deep copy of the entity.
func (e SyncableEntity) Clone() SyncableEntity {
	out := e
	if e.DeletedAt != nil {
		t := *e.DeletedAt
		out.DeletedAt = &t
	}
	out.Payload = e.Payload.Clone()
	return out
}

// Payload is the JSON object holding entity-specific fields.
type Payload map[string]any

// titleKeys are the payload keys holding a user-visible title, in lookup
// order.
var titleKeys = []string{"title", "name"}

// TitleKey returns the first payload key that holds a string title, or "".
func (p Payload) TitleKey() string {
	for _, k := range titleKeys {
		if _, ok := p[k].(string); ok {
			return k
		}
	}
	return ""
}

// Clone returns a deep copy of p. Nested maps and slices are copied; other
// values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a decoded JSON value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = CloneValue(item)
		}
		return m
	case Payload:
		return val.Clone()
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = CloneValue(item)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// Marshal encodes the payload as JSON.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPayload decodes a JSON object into a Payload.
func UnmarshalPayload(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}
