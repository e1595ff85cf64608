// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Side names one of the two diverged versions of an entity.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// Strategy is how a conflict gets resolved.
type Strategy string

const (
	// StrategyLocal keeps the local version and pushes it over the remote one.
	StrategyLocal Strategy = "local"
	// StrategyRemote adopts the remote version locally.
	StrategyRemote Strategy = "remote"
	// StrategyKeepBoth adopts the remote version and keeps the local one as a
	// new entity.
	StrategyKeepBoth Strategy = "keep-both"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyLocal, StrategyRemote, StrategyKeepBoth:
		return true
	}
	return false
}

// Conflict describes an entity changed both locally and remotely since the
// last common version.
type Conflict struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	// Local and Remote are the full entity versions on each side.
	Local  SyncableEntity `json:"local"`
	Remote SyncableEntity `json:"remote"`

	// BaseVersion is the common version both sides diverged from.
	BaseVersion int64 `json:"base_version"`

	LocalSyncVersion  int64     `json:"local_sync_version"`
	RemoteSyncVersion int64     `json:"remote_sync_version"`
	LocalUpdatedAt    time.Time `json:"local_updated_at"`
	RemoteUpdatedAt   time.Time `json:"remote_updated_at"`

	// Recommended is the last-write-wins suggestion.
	Recommended Side `json:"recommended"`
	// Reason is a short human-readable justification of Recommended.
	Reason string `json:"reason"`
}

// Resolution is the outcome of resolving a [Conflict].
type Resolution struct {
	// Entity is the new canonical state of the conflicted entity id.
	Entity SyncableEntity
	// Copy is the local version kept under a new id by
	// [StrategyKeepBoth]. Nil for the other strategies.
	Copy *SyncableEntity
	// Strategy is the strategy that produced this resolution.
	Strategy Strategy
}
