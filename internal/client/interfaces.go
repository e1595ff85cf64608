// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Client is a runnable sync client process.
type Client interface {
	// Run blocks until the command completes or the daemon is signalled to
	// stop, then releases the client's resources.
	Run() error
}

var _ Client = (*App)(nil)
