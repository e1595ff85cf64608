// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client process.
//
// [App] owns the process lifecycle: it runs an initial sync, starts the
// background workers and shuts everything down on a termination signal.
// When started with a command ([CommandStatus], [CommandConflicts],
// [CommandResolve] and friends) it runs that command once against the sync
// engine and exits. The record commands ([CommandAdd], [CommandEdit],
// [CommandRemove], [CommandList] and [CommandShow]) edit connection profiles
// and saved queries in the local store; the next sync uploads the changes.
package client
