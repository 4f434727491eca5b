/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/storagemodels"
)

// Backend operation names used in errors and metrics.
const (
	opCreate        = "create"
	opUpdate        = "update"
	opDelete        = "delete"
	opDeleteByOwner = "delete_by_owner"
)

// rowsFor returns the row collection of store, loading it on first use.
// An owner without an id has no rows to load.
func (r *Record) rowsFor(ctx context.Context, store registry.CompanionStoreConfig) ([]*storagemodels.CompanionRow, error) {
	if rows, ok := r.rows[store.Name]; ok {
		return rows, nil
	}

	rows := []*storagemodels.CompanionRow{}
	if ownerID, ok := r.entity.ID(); ok {
		loaded, err := r.model.backends[store.Name].ListByOwner(ctx, store, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s rows: %w", store.Name, err)
		}
		for i := range loaded {
			rows = append(rows, &loaded[i])
		}
	}
	r.rows[store.Name] = rows
	return rows, nil
}

func (r *Record) findRow(ctx context.Context, storeName, name string) (*storagemodels.CompanionRow, error) {
	store, ok := r.model.store(storeName)
	if !ok {
		return nil, fmt.Errorf("unknown companion store %q", storeName)
	}
	rows, err := r.rowsFor(ctx, store)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Name == name {
			return row, nil
		}
	}
	return nil, nil
}

// persist creates or updates row. The row is changed in place only after
// the backend accepted the write.
func (r *Record) persist(ctx context.Context, store registry.CompanionStoreConfig, row *storagemodels.CompanionRow) error {
	ownerID, ok := r.entity.ID()
	if !ok || ownerID == "" {
		return errors.NewOwnerNotPersistedError(r.model.entityType, store.Name, row.Name)
	}

	now := strfmt.DateTime(r.model.now().UTC())
	next := *row
	next.UpdatedAt = now
	op := opUpdate
	if !row.Persisted() {
		op = opCreate
		next.ID = r.model.newID()
		next.OwnerID = ownerID
		next.CreatedAt = now
	}

	backend := r.model.backends[store.Name]
	var err error
	if op == opCreate {
		err = backend.Create(ctx, store, next)
	} else {
		err = backend.Update(ctx, store, next)
	}
	if err != nil {
		return errors.NewPersistError(store.Name, row.Name, op, err)
	}

	*row = next
	r.model.metrics.wrote(r.model.entityType, store.Name, op)
	return nil
}

// deleteIfEmpty removes row from the backend when it was persisted and from
// the loaded collection in any case.
func (r *Record) deleteIfEmpty(ctx context.Context, store registry.CompanionStoreConfig, row *storagemodels.CompanionRow) error {
	if row.Persisted() {
		if err := r.model.backends[store.Name].Delete(ctx, store, *row); err != nil {
			return errors.NewPersistError(store.Name, row.Name, opDelete, err)
		}
		r.model.metrics.wrote(r.model.entityType, store.Name, opDelete)
	}
	r.rows[store.Name] = slices.DeleteFunc(r.rows[store.Name], func(c *storagemodels.CompanionRow) bool {
		return c == row
	})
	return nil
}

// destroyAll removes every companion row of the owner in every store.
func (r *Record) destroyAll(ctx context.Context) error {
	ownerID, ok := r.entity.ID()
	if !ok {
		return nil
	}
	for _, s := range r.model.stores {
		if err := r.model.backends[s.Name].DeleteByOwner(ctx, s, ownerID); err != nil {
			return errors.NewPersistError(s.Name, "*", opDeleteByOwner, err)
		}
		r.model.metrics.wrote(r.model.entityType, s.Name, opDeleteByOwner)
	}
	return nil
}
