// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/MKhiriev/go-conn-sync/models"
)

// LocalCopySuffix is appended to the title of the local copy made by
// [models.StrategyKeepBoth].
const LocalCopySuffix = " (local)"

type conflictResolver struct {
	deviceID string
	ids      IDGenerator
}

// NewConflictResolver returns a [ConflictResolver] acting on behalf of
// deviceID. ids is only used by [models.StrategyKeepBoth].
func NewConflictResolver(deviceID string, ids IDGenerator) ConflictResolver {
	return &conflictResolver{deviceID: deviceID, ids: ids}
}

func (r *conflictResolver) Resolve(c models.Conflict, strategy models.Strategy) (models.Resolution, error) {
	switch strategy {
	case models.StrategyLocal:
		e := c.Local.Clone()
		e.SyncVersion = c.Remote.SyncVersion + 1
		e.OwnerDeviceID = r.deviceID
		return models.Resolution{Entity: e, Strategy: strategy}, nil

	case models.StrategyRemote:
		return models.Resolution{Entity: c.Remote.Clone(), Strategy: strategy}, nil

	case models.StrategyKeepBoth:
		res := models.Resolution{Entity: c.Remote.Clone(), Strategy: strategy}
		// A deleted local side leaves nothing to keep.
		if c.Local.IsDeleted() {
			return res, nil
		}
		cp := c.Local.Clone()
		cp.ID = r.ids.Generate()
		cp.SyncVersion = 0
		cp.OwnerDeviceID = r.deviceID
		if key := cp.Payload.TitleKey(); key != "" {
			cp.Payload[key] = cp.Payload[key].(string) + LocalCopySuffix
		}
		res.Copy = &cp
		return res, nil

	default:
		return models.Resolution{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}
}
