/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.DataStore for testing
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/eavstore/datastore"
	"github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/storagemodels"
)

var (
	_ datastore.DataStore = (*DataStore)(nil)
	_ datastore.Migrator  = (*DataStore)(nil)
)

// Operation names recorded by Calls and passed to failure hooks.
const (
	OpList          = "list"
	OpCreate        = "create"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpDeleteByOwner = "delete_by_owner"
)

// Call records one backend invocation.
type Call struct {
	Op    string
	Table string
	Owner string
	Name  string
	Value string
}

// DataStore is an in-memory companion backend. Rows are keyed by
// table, owner and name.
type DataStore struct {
	mu          sync.RWMutex
	tables      map[string]map[string]map[string]storagemodels.CompanionRow
	calls       []Call
	listError   error
	createError error
	updateError error
	deleteError error
	failFunc    func(op string, row storagemodels.CompanionRow) error
}

// New creates a new mock DataStore
func New() *DataStore {
	return &DataStore{
		tables: make(map[string]map[string]map[string]storagemodels.CompanionRow),
	}
}

// WithListError makes ListByOwner return an error
func (m *DataStore) WithListError(err error) *DataStore {
	m.listError = err
	return m
}

// WithCreateError makes Create operations return an error
func (m *DataStore) WithCreateError(err error) *DataStore {
	m.createError = err
	return m
}

// WithUpdateError makes Update operations return an error
func (m *DataStore) WithUpdateError(err error) *DataStore {
	m.updateError = err
	return m
}

// WithDeleteError makes Delete and DeleteByOwner operations return an error
func (m *DataStore) WithDeleteError(err error) *DataStore {
	m.deleteError = err
	return m
}

// WithFailFunc installs a hook consulted before every write. A non-nil
// result fails that write.
func (m *DataStore) WithFailFunc(f func(op string, row storagemodels.CompanionRow) error) *DataStore {
	m.failFunc = f
	return m
}

// ListByOwner returns the owner's rows sorted by name
func (m *DataStore) ListByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) ([]storagemodels.CompanionRow, error) {
	m.record(Call{Op: OpList, Table: store.Table, Owner: ownerID})
	if m.listError != nil {
		return nil, m.listError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := m.tables[store.Table][ownerID]
	rows := make([]storagemodels.CompanionRow, 0, len(owned))
	for _, row := range owned {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// Create stores a new row
func (m *DataStore) Create(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	m.record(Call{Op: OpCreate, Table: store.Table, Owner: row.OwnerID, Name: row.Name, Value: row.Value})
	if err := m.fail(OpCreate, m.createError, row); err != nil {
		return err
	}
	if row.OwnerID == "" || row.Name == "" {
		return errors.NewValidationError(store.ForeignKey, "owner and name are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	owned := m.owned(store.Table, row.OwnerID)
	if _, exists := owned[row.Name]; exists {
		return errors.NewAlreadyExistsError(store.Name, row.OwnerID+"/"+row.Name)
	}
	owned[row.Name] = row
	return nil
}

// Update replaces an existing row
func (m *DataStore) Update(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	m.record(Call{Op: OpUpdate, Table: store.Table, Owner: row.OwnerID, Name: row.Name, Value: row.Value})
	if err := m.fail(OpUpdate, m.updateError, row); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	owned := m.tables[store.Table][row.OwnerID]
	if _, exists := owned[row.Name]; !exists {
		return errors.NewNotFoundError(store.Name, row.OwnerID+"/"+row.Name)
	}
	owned[row.Name] = row
	return nil
}

// Delete removes a row; missing rows are ignored
func (m *DataStore) Delete(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	m.record(Call{Op: OpDelete, Table: store.Table, Owner: row.OwnerID, Name: row.Name})
	if err := m.fail(OpDelete, m.deleteError, row); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tables[store.Table][row.OwnerID], row.Name)
	return nil
}

// DeleteByOwner removes all rows of an owner
func (m *DataStore) DeleteByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) error {
	m.record(Call{Op: OpDeleteByOwner, Table: store.Table, Owner: ownerID})
	if err := m.fail(OpDeleteByOwner, m.deleteError, storagemodels.CompanionRow{OwnerID: ownerID}); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tables[store.Table]; ok {
		delete(t, ownerID)
	}
	return nil
}

// Migrate creates the in-memory table
func (m *DataStore) Migrate(ctx context.Context, store registry.CompanionStoreConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[store.Table]; !ok {
		m.tables[store.Table] = make(map[string]map[string]storagemodels.CompanionRow)
	}
	return nil
}

// Drop removes the in-memory table
func (m *DataStore) Drop(ctx context.Context, store registry.CompanionStoreConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, store.Table)
	return nil
}

// Helper methods for testing

// Seed stores rows directly, bypassing hooks and call recording
func (m *DataStore) Seed(table string, rows ...storagemodels.CompanionRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.owned(table, row.OwnerID)[row.Name] = row
	}
}

// Row returns a stored row
func (m *DataStore) Row(table, ownerID, name string) (storagemodels.CompanionRow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.tables[table][ownerID][name]
	return row, ok
}

// Count returns the number of rows stored in table
func (m *DataStore) Count(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, owned := range m.tables[table] {
		n += len(owned)
	}
	return n
}

// Calls returns a copy of the recorded invocations
func (m *DataStore) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Call(nil), m.calls...)
}

// WriteCalls returns the recorded invocations that mutate data
func (m *DataStore) WriteCalls() []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Op != OpList {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded invocations
func (m *DataStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Clear removes all data
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[string]map[string]map[string]storagemodels.CompanionRow)
	m.calls = nil
}

func (m *DataStore) owned(table, ownerID string) map[string]storagemodels.CompanionRow {
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string]map[string]storagemodels.CompanionRow)
		m.tables[table] = t
	}
	owned, ok := t[ownerID]
	if !ok {
		owned = make(map[string]storagemodels.CompanionRow)
		t[ownerID] = owned
	}
	return owned
}

func (m *DataStore) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *DataStore) fail(op string, injected error, row storagemodels.CompanionRow) error {
	if injected != nil {
		return injected
	}
	if m.failFunc != nil {
		return m.failFunc(op, row)
	}
	return nil
}
