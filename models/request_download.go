// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// DownloadRequest asks for remote changes after Cursor.
type DownloadRequest struct {
	DeviceID string `json:"device_id"`
	// Cursor is the opaque position returned by the previous download.
	// Empty means from the beginning.
	Cursor string `json:"cursor"`
	// Limit caps the number of entities returned.
	Limit int `json:"limit"`
}

// DownloadResult is one batch of remote changes in server order.
type DownloadResult struct {
	Entities   []SyncableEntity `json:"entities"`
	NextCursor string           `json:"next_cursor"`
	HasMore    bool             `json:"has_more"`
}
