// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidID           = errors.New("invalid entity id")
	ErrInvalidType         = errors.New("invalid entity type")
	ErrInvalidSyncVersion  = errors.New("invalid sync version")
	ErrInvalidUpdatedAt    = errors.New("updated_at is required")
	ErrEmptyPayload        = errors.New("payload is required")
	ErrMissingTitle        = errors.New("payload must carry a name or title")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInvalidLocalVersion = errors.New("invalid local version")
	ErrInvalidBaseVersion  = errors.New("invalid base version")
)
