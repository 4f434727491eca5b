/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/eavstore/datastore"
	"github.com/suparena/eavstore/registry"
)

// Backends maps companion store names to the DataStore holding their rows.
// Stores without an explicit registration use the default backend.
// It is safe for concurrent use.
type Backends struct {
	mu       sync.RWMutex
	fallback datastore.DataStore
	stores   map[string]datastore.DataStore
}

// NewBackends creates a Backends whose unregistered stores use fallback.
// fallback may be nil when every store is registered explicitly.
func NewBackends(fallback datastore.DataStore) *Backends {
	return &Backends{
		fallback: fallback,
		stores:   make(map[string]datastore.DataStore),
	}
}

// Register binds a store name to a DataStore.
func (b *Backends) Register(store string, ds datastore.DataStore) error {
	if ds == nil {
		return fmt.Errorf("datastore for %q is nil", store)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.stores[store]; exists {
		return fmt.Errorf("datastore with key %q already registered", store)
	}
	b.stores[store] = ds
	return nil
}

// Get returns the DataStore for a store name, falling back to the default.
func (b *Backends) Get(store string) (datastore.DataStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ds, exists := b.stores[store]; exists {
		return ds, nil
	}
	if b.fallback != nil {
		return b.fallback, nil
	}
	return nil, fmt.Errorf("datastore with key %q not found", store)
}

// Remove unbinds a store name. The store then uses the default backend.
func (b *Backends) Remove(store string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.stores[store]; !exists {
		return fmt.Errorf("datastore with key %q not found", store)
	}
	delete(b.stores, store)
	return nil
}

// List returns the explicitly registered store names, sorted.
func (b *Backends) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.stores))
	for k := range b.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Migrate creates the tables of every store of entityType whose backend
// implements datastore.Migrator.
func (b *Backends) Migrate(ctx context.Context, reg *registry.StoreRegistry, entityType string) error {
	for _, cfg := range reg.StoresFor(entityType) {
		ds, err := b.Get(cfg.Name)
		if err != nil {
			return err
		}
		m, ok := ds.(datastore.Migrator)
		if !ok {
			continue
		}
		if err := m.Migrate(ctx, cfg); err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.Name, err)
		}
	}
	return nil
}
