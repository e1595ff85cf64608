// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// sync client services and its console output.
//
// All Msg* constants are human-readable message strings that end up in
// notification events, sync history entries or log records. Keeping them in
// one place ensures consistent wording throughout the client.
package app

const (
	// MsgRequiresOnline is reported when the health probe fails before a
	// cycle starts. No backoff is scheduled for it.
	MsgRequiresOnline = "sync requires an online connection"

	// MsgSyncPaused is reported when a cycle is requested while syncing is
	// paused after an authentication failure.
	MsgSyncPaused = "sync is paused until credentials are refreshed"

	// MsgSyncCancelled is reported when a cycle stops between batches
	// because its context was cancelled.
	MsgSyncCancelled = "sync cancelled"

	// MsgAuthFailed is reported when the sync service refuses the stored
	// credentials.
	MsgAuthFailed = "sync service rejected the credentials"

	// MsgNetworkExhausted is reported when a batch keeps failing after all
	// retries.
	MsgNetworkExhausted = "sync service unreachable after retries"

	// MsgRecordRejected prefixes per-record validation rejections.
	MsgRecordRejected = "record rejected"

	// MsgRecordNotSerializable prefixes per-record serialization failures.
	MsgRecordNotSerializable = "record could not be serialized"

	// MsgInternalError is reported for unexpected failures.
	MsgInternalError = "internal sync error"

	// MsgEntityDeleted is returned when an edit targets a tombstoned entity.
	MsgEntityDeleted = "entity is deleted"

	// MsgConflictNotFound is returned when resolving an unknown conflict.
	MsgConflictNotFound = "conflict not found"

	// MsgInvalidStrategy is returned for an unknown resolution strategy.
	MsgInvalidStrategy = "invalid resolution strategy"
)
