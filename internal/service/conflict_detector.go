// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-conn-sync/models"
)

type conflictDetector struct {
	tieBreak models.Side
}

// NewConflictDetector returns a [ConflictDetector] that recommends the side
// updated last and falls back to tieBreak when both were updated at the same
// instant. Anything other than [models.SideLocal] means remote.
func NewConflictDetector(tieBreak models.Side) ConflictDetector {
	if tieBreak != models.SideLocal {
		tieBreak = models.SideRemote
	}
	return &conflictDetector{tieBreak: tieBreak}
}

func (d *conflictDetector) Detect(local models.ChangeRecord, localEntity, remote models.SyncableEntity, lastKnownRemoteVersion int64) *models.Conflict {
	localDiverged := local.BaseVersion >= lastKnownRemoteVersion
	remoteDiverged := remote.SyncVersion > lastKnownRemoteVersion
	if !localDiverged || !remoteDiverged {
		return nil
	}

	recommended, reason := d.recommend(localEntity.UpdatedAt, remote.UpdatedAt)

	return &models.Conflict{
		EntityType:        remote.Type,
		EntityID:          remote.ID,
		Local:             localEntity.Clone(),
		Remote:            remote.Clone(),
		BaseVersion:       lastKnownRemoteVersion,
		LocalSyncVersion:  localEntity.SyncVersion,
		RemoteSyncVersion: remote.SyncVersion,
		LocalUpdatedAt:    localEntity.UpdatedAt,
		RemoteUpdatedAt:   remote.UpdatedAt,
		Recommended:       recommended,
		Reason:            reason,
	}
}

// recommend applies last-write-wins.
func (d *conflictDetector) recommend(localAt, remoteAt time.Time) (models.Side, string) {
	switch diff := remoteAt.Sub(localAt); {
	case diff > 0:
		return models.SideRemote, fmt.Sprintf("remote is newer by %s", formatLag(diff))
	case diff < 0:
		return models.SideLocal, fmt.Sprintf("local is newer by %s", formatLag(-diff))
	default:
		return d.tieBreak, fmt.Sprintf("both updated at the same time, %s wins the tie", d.tieBreak)
	}
}

func formatLag(d time.Duration) string {
	if d >= time.Second {
		return d.Round(time.Second).String()
	}
	if d >= time.Millisecond {
		return d.Round(time.Millisecond).String()
	}
	return d.String()
}
