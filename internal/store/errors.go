// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned when a lookup or delete targets an entity
	// id that is not stored locally.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrEntityNotSaved is returned when an upsert completes without error but
	// affects no rows.
	ErrEntityNotSaved = errors.New("entity was not saved")

	// ErrChangeNotFound is returned when no pending change exists for an
	// entity id.
	ErrChangeNotFound = errors.New("pending change was not found")

	// ErrConflictNotFound is returned when no pending conflict exists for an
	// entity id.
	ErrConflictNotFound = errors.New("conflict was not found")

	// ErrSettingNotFound is returned when a settings key is absent.
	ErrSettingNotFound = errors.New("setting was not found")

	// ErrDecodingPayload is returned when a stored payload cannot be unsealed
	// or decoded.
	ErrDecodingPayload = errors.New("failed to decode stored payload")

	// ErrEncodingPayload is returned when a payload cannot be encoded or
	// sealed for storage.
	ErrEncodingPayload = errors.New("failed to encode payload for storage")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
