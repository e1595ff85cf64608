// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid argument")

	errNoSyncEngine    = errors.New("client services carry no sync engine")
	errNoEntityService = errors.New("client services carry no entity service")
)
