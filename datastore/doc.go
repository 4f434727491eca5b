/*
Package datastore defines the persistence contract for companion rows.

The main interface is DataStore, which provides CRUD operations over the
(owner, name, value) rows of a companion store:

	type DataStore interface {
	    ListByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) ([]storagemodels.CompanionRow, error)
	    Create(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error
	    Update(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error
	    Delete(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error
	    DeleteByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) error
	}

Implementations:
  - ddb: DynamoDB, one table per companion store keyed by (foreign key, name)
  - sqlstore: database/sql for SQLite (modernc.org/sqlite) and Postgres (pgx)
  - mock: in-memory implementation with error injection for tests

Backends that can manage their own tables also implement Migrator.
*/
package datastore
