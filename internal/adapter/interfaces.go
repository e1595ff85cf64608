// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport used to talk to the remote sync
// service.
//
// The primary abstraction is [Transport], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPTransport]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrServiceUnavailable] for
// 503). [IsTransient] tells retryable failures apart.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-conn-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport defines communication with the remote sync service.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type Transport interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored, or "".
	Token() string

	// Upload sends one batch of sanitized changes. Accepted ids come back in
	// [models.UploadResult.AcceptedIDs]; per-record validation failures in
	// Rejected. A non-nil error means the batch as a whole failed.
	Upload(ctx context.Context, req models.UploadRequest) (models.UploadResult, error)

	// Download returns the next batch of remote changes after req.Cursor in
	// server order.
	Download(ctx context.Context, req models.DownloadRequest) (models.DownloadResult, error)

	// Health reports whether the service is reachable.
	Health(ctx context.Context) bool
}
