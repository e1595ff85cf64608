// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/go-conn-sync/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldID targets the stable entity identifier.
	FieldID = "id"

	// FieldType targets the entity kind.
	FieldType = "type"

	// FieldSyncVersion targets the acknowledged remote version.
	FieldSyncVersion = "sync_version"

	// FieldUpdatedAt targets the last local mutation time.
	FieldUpdatedAt = "updated_at"

	// FieldPayload requires a non-empty payload with a title.
	FieldPayload = "payload"

	// FieldTypedPayload decodes the payload into its typed view
	// (connection profile or saved query) and checks its struct tags.
	FieldTypedPayload = "typed_payload"

	// FieldOperation targets the operation of a change record.
	FieldOperation = "operation"

	// FieldLocalVersion targets the edit counter of a change record.
	FieldLocalVersion = "local_version"

	// FieldBaseVersion targets the base version of a change record.
	FieldBaseVersion = "base_version"
)

const maxIDLength = 128

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func structs() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// EntityValidator implements [Validator] for syncable entities and their
// change records. Both value and pointer forms are accepted.
type EntityValidator struct{}

// NewEntityValidator returns an [EntityValidator] as a [Validator].
func NewEntityValidator() Validator {
	return &EntityValidator{}
}

// Validate dispatches on the dynamic type of obj.
//
// Supported types:
//   - models.SyncableEntity / *models.SyncableEntity
//   - models.ChangeRecord / *models.ChangeRecord
//   - models.ConnectionProfile / *models.ConnectionProfile
//   - models.SavedQuery / *models.SavedQuery
//
// Returns ErrUnsupportedType for anything else.
func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SyncableEntity:
		return v.validateEntity(ctx, value, fields...)
	case *models.SyncableEntity:
		return v.validateEntity(ctx, *value, fields...)

	case models.ChangeRecord:
		return v.validateChange(ctx, value, fields...)
	case *models.ChangeRecord:
		return v.validateChange(ctx, *value, fields...)

	case models.ConnectionProfile, *models.ConnectionProfile, models.SavedQuery, *models.SavedQuery:
		return validateStruct(value)

	default:
		return ErrUnsupportedType
	}
}

// validateEntity validates a single entity.
//
// Default validated fields: ID, Type, SyncVersion, UpdatedAt, Payload.
// Tombstones skip the payload checks: a deleted entity may carry anything.
func (v *EntityValidator) validateEntity(_ context.Context, e models.SyncableEntity, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldType, FieldSyncVersion, FieldUpdatedAt, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if !validID(e.ID) {
				return ErrInvalidID
			}
		case FieldType:
			if !e.Type.Valid() {
				return ErrInvalidType
			}
		case FieldSyncVersion:
			if e.SyncVersion < 0 {
				return ErrInvalidSyncVersion
			}
		case FieldUpdatedAt:
			if e.UpdatedAt.IsZero() {
				return ErrInvalidUpdatedAt
			}
		case FieldPayload:
			if e.IsDeleted() {
				continue
			}
			if len(e.Payload) == 0 {
				return ErrEmptyPayload
			}
			if e.Title() == "" {
				return ErrMissingTitle
			}
		case FieldTypedPayload:
			if e.IsDeleted() {
				continue
			}
			if err := validateTypedPayload(e); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateChange validates a pending change record.
//
// Default validated fields: ID, Type, Operation, LocalVersion, BaseVersion.
func (v *EntityValidator) validateChange(_ context.Context, c models.ChangeRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldType, FieldOperation, FieldLocalVersion, FieldBaseVersion}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if !validID(c.EntityID) {
				return ErrInvalidID
			}
		case FieldType:
			if !c.EntityType.Valid() {
				return ErrInvalidType
			}
		case FieldOperation:
			if !c.Operation.Valid() {
				return ErrInvalidOperation
			}
		case FieldLocalVersion:
			if c.LocalVersion < 1 {
				return ErrInvalidLocalVersion
			}
		case FieldBaseVersion:
			if c.BaseVersion < 0 {
				return ErrInvalidBaseVersion
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validID(id string) bool {
	return strings.TrimSpace(id) != "" && len(id) <= maxIDLength && strings.TrimSpace(id) == id
}

func validateTypedPayload(e models.SyncableEntity) error {
	switch e.Type {
	case models.EntityConnection:
		var profile models.ConnectionProfile
		if err := models.FromPayload(e.Payload, &profile); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return validateStruct(profile)
	case models.EntitySavedQuery:
		var query models.SavedQuery
		if err := models.FromPayload(e.Payload, &query); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return validateStruct(query)
	default:
		return ErrInvalidType
	}
}

// validateStruct runs the go-playground struct tags and reports the first
// failing field.
func validateStruct(v any) error {
	err := structs().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Errorf("%w: field %s failed %q", ErrInvalidPayload, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
}
