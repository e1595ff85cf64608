// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLogger_NotNil verifies that NewLogger returns a non-nil *Logger.
func TestNewLogger_NotNil(t *testing.T) {
	l := NewLogger("test")
	require.NotNil(t, l)
}

// TestNewLogger_RoleField verifies that every log entry contains the role.
func TestNewLogger_RoleField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("test-role")
	l.Logger = l.Output(&buf)

	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-role", entry["role"])
	_, hasTime := entry["time"]
	assert.True(t, hasTime, "expected 'time' field in log entry")
}

func TestNewLogger_CallerFieldName(t *testing.T) {
	NewLogger("caller-role")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

// ── NewClientLogger ──────────────────────────────────────────────────────────

func TestNewClientLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	l, err := NewClientLogger("client", FileOptions{Level: "info", Output: OutputFile, File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Debug().Msg("filtered")
	l.Info().Str("device_id", "dev-1").Msg("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "written", entry["message"])
	assert.Equal(t, "client", entry["role"])
	assert.Equal(t, "dev-1", entry["device_id"])

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func TestNewClientLogger_Defaults(t *testing.T) {
	l, err := NewClientLogger("client", FileOptions{})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNewClientLogger_InvalidLevel(t *testing.T) {
	_, err := NewClientLogger("client", FileOptions{Level: "loud"})
	require.Error(t, err)
}

func TestNewClientLogger_InvalidOutput(t *testing.T) {
	_, err := NewClientLogger("client", FileOptions{Output: "syslog"})
	require.Error(t, err)
}

// ── Nop / child / context ────────────────────────────────────────────────────

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Info().Msg("should be discarded")

	assert.Empty(t, buf.String(), "Nop logger should produce no output")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("fields")
	l.Logger = l.Output(&buf)

	l.WithFields("cycle_id", "c-1", "dangling").Info().Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "c-1", entry["cycle_id"])
	_, has := entry["dangling"]
	assert.False(t, has)
}

func TestFromContext_NotNil(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("ctx-key", "ctx-value").Logger()
	ctx := zl.WithContext(context.Background())

	l := FromContext(ctx)
	require.NotNil(t, l)

	l.Info().Msg("from context")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ctx-value", entry["ctx-key"])
}
