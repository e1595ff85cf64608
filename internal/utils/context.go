// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers shared by the client
// packages: context keys, HMAC hashing, the HTTP client wrapper, JWT
// inspection and UUID generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// DeviceIDCtxKey is the key used to store the device identifier in the context.
var DeviceIDCtxKey = contextKey("deviceID")

// CycleIDCtxKey is the key used to store the identifier of the running sync
// cycle in the context.
var CycleIDCtxKey = contextKey("cycleID")

// WithDeviceID returns a copy of ctx carrying deviceID.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, DeviceIDCtxKey, deviceID)
}

// GetDeviceIDFromContext retrieves the device identifier from the context.
// ok is false when the value is missing, empty or has an unexpected type.
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(DeviceIDCtxKey).(string)
	return id, ok && id != ""
}

// WithCycleID returns a copy of ctx carrying the sync cycle id.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleIDCtxKey, cycleID)
}

// GetCycleIDFromContext retrieves the sync cycle id from the context.
func GetCycleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CycleIDCtxKey).(string)
	return id, ok && id != ""
}
