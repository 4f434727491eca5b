/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/storagemodels"
)

// DataStore is the CRUD surface over the rows of companion stores. The store
// argument carries the table and column names to use.
type DataStore interface {
	// ListByOwner returns every row of store that belongs to ownerID.
	ListByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) ([]storagemodels.CompanionRow, error)

	// Create inserts a new row. It fails with an AlreadyExistsError when a row
	// for (owner, name) exists.
	Create(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error

	// Update replaces the value of an existing row. It fails with a
	// NotFoundError when the row does not exist.
	Update(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error

	// Delete removes a row. Deleting a row that does not exist is not an error.
	Delete(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error

	// DeleteByOwner removes every row of ownerID in store.
	DeleteByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) error
}

// Migrator is implemented by backends that can create and drop the table
// behind a companion store.
type Migrator interface {
	Migrate(ctx context.Context, store registry.CompanionStoreConfig) error
	Drop(ctx context.Context, store registry.CompanionStoreConfig) error
}
