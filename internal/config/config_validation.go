// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validate checks the merged [StructuredConfig]. Per-field rules live on the
// client view; here only cross-source invariants are checked.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.TieBreak != "" {
		switch cfg.Sync.TieBreak {
		case "remote", "local":
		default:
			return fmt.Errorf("%w: tie break %q", ErrInvalidSyncConfigs, cfg.Sync.TieBreak)
		}
	}
	return nil
}

// validate runs the struct tag rules of [ClientConfig] and maps the first
// failing group to its sentinel error.
func (cfg *ClientConfig) validate() error {
	if strings.Contains(cfg.Storage.DB.DSN, ":memory:") || strings.Contains(cfg.Storage.DB.DSN, "mode=memory") {
		return fmt.Errorf("%w: local store must be durable", ErrInvalidStorageConfigs)
	}

	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	return fmt.Errorf("%w: %s failed on %s", groupError(first.Namespace()), first.Namespace(), first.Tag())
}

func groupError(namespace string) error {
	// Namespace is "ClientConfig.<Group>.<Field>".
	parts := strings.Split(namespace, ".")
	group := ""
	if len(parts) > 1 {
		group = parts[1]
	}

	switch group {
	case "Adapter":
		return ErrInvalidAdapterConfigs
	case "Storage":
		return ErrInvalidStorageConfigs
	case "Sync":
		return ErrInvalidSyncConfigs
	case "Workers":
		return ErrInvalidWorkerConfigs
	case "Log":
		return ErrInvalidLogConfigs
	default:
		return ErrInvalidAppConfigs
	}
}
