// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/app"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/validators"
	"github.com/MKhiriev/go-conn-sync/models"
)

// classifyError maps an adapter, store or validation error onto the error
// taxonomy reported to the notification sink.
func classifyError(err error) models.ErrorKind {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		unsuppErr *json.UnsupportedValueError
	)

	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrRequiresOnline),
		errors.Is(err, context.DeadlineExceeded),
		adapter.IsTransient(err):
		return models.ErrorKindNetwork

	case errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrForbidden),
		errors.Is(err, ErrSyncPaused):
		return models.ErrorKindAuth

	case errors.Is(err, adapter.ErrConflict):
		return models.ErrorKindConflict

	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrUnprocessable),
		errors.Is(err, adapter.ErrPayloadTooLarge),
		isValidationError(err):
		return models.ErrorKindValidation

	case errors.Is(err, adapter.ErrInvalidResponse),
		errors.Is(err, adapter.ErrIntegrity),
		errors.Is(err, store.ErrDecodingPayload),
		errors.Is(err, store.ErrEncodingPayload),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.As(err, &unsuppErr):
		return models.ErrorKindSerialization
	}

	return models.ErrorKindInternal
}

func isValidationError(err error) bool {
	for _, target := range []error{
		validators.ErrInvalidID,
		validators.ErrInvalidType,
		validators.ErrInvalidSyncVersion,
		validators.ErrInvalidUpdatedAt,
		validators.ErrEmptyPayload,
		validators.ErrMissingTitle,
		validators.ErrInvalidPayload,
		validators.ErrInvalidOperation,
		validators.ErrInvalidLocalVersion,
		validators.ErrInvalidBaseVersion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorMessage returns the user-facing text for a cycle-level failure.
func errorMessage(kind models.ErrorKind, err error) string {
	switch {
	case errors.Is(err, ErrRequiresOnline):
		return app.MsgRequiresOnline
	case errors.Is(err, ErrSyncPaused):
		return app.MsgSyncPaused
	case kind == models.ErrorKindAuth:
		return app.MsgAuthFailed
	case kind == models.ErrorKindNetwork:
		return app.MsgNetworkExhausted + ": " + err.Error()
	case kind == models.ErrorKindInternal:
		return app.MsgInternalError + ": " + err.Error()
	}
	return err.Error()
}
