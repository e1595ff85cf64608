// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks syncable entities before they are stored
// locally, recorded as changes or merged from the sync service.
//
// Field names ([FieldID], [FieldType], [FieldSyncVersion], [FieldPayload])
// scope a call to part of the entity: the sync engine checks only the
// envelope of downloaded entities, while the editing service checks the
// payload of local writes.
package validators

import "context"

// Validator validates v, limited to fields when any are given.
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
