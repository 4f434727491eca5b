/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/eavstore/datastore"
	"github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/storagemodels"
)

// MembershipFunc decides whether name belongs to store. When set it replaces
// allow-lists and attribute lists entirely.
type MembershipFunc func(name string, store registry.CompanionStoreConfig, e Entity) bool

// AttributeListFunc returns the attribute names allowed in store. A nil
// result admits any name; an empty result admits none.
type AttributeListFunc func(store registry.CompanionStoreConfig, e Entity) []string

// Model binds one owning entity type to its companion stores, backends and
// owner store. A Model is immutable after NewModel and safe to share.
type Model struct {
	entityType string
	stores     []registry.CompanionStoreConfig
	backends   map[string]datastore.DataStore
	owners     OwnerStore

	membership MembershipFunc
	attrList   AttributeListFunc
	logger     *zap.Logger
	metrics    *Metrics
	now        func() time.Time
	newID      func() string
}

// Option configures a Model.
type Option func(*Model)

// WithMembershipFunc installs a custom membership predicate.
func WithMembershipFunc(f MembershipFunc) Option {
	return func(m *Model) {
		m.membership = f
	}
}

// WithAttributeList installs a per-store attribute list, consulted for
// stores without an allow-list.
func WithAttributeList(f AttributeListFunc) Option {
	return func(m *Model) {
		m.attrList = f
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records companion writes and flushes.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Model) {
		m.metrics = metrics
	}
}

// WithClock overrides the time source used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides how new companion rows get their id.
func WithIDGenerator(newID func() string) Option {
	return func(m *Model) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// NewModel builds the Model for entityType. Every registered store must
// resolve to a backend.
func NewModel(reg *registry.StoreRegistry, entityType string, owners OwnerStore, backends *Backends, opts ...Option) (*Model, error) {
	stores := reg.StoresFor(entityType)
	if len(stores) == 0 {
		return nil, errors.NewConfigError(entityType, "", "", "no companion stores registered")
	}
	if owners == nil {
		return nil, errors.NewConfigError(entityType, "", "", "owner store is required")
	}
	if backends == nil {
		return nil, errors.NewConfigError(entityType, "", "", "backends are required")
	}

	m := &Model{
		entityType: entityType,
		stores:     stores,
		backends:   make(map[string]datastore.DataStore, len(stores)),
		owners:     owners,
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, s := range stores {
		ds, err := backends.Get(s.Name)
		if err != nil {
			return nil, errors.NewConfigError(entityType, s.Name, "", err.Error())
		}
		m.backends[s.Name] = ds
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger.Debug("eav model configured",
		zap.String("entity_type", entityType),
		zap.Int("stores", len(stores)))
	return m, nil
}

// EntityType returns the owning type name.
func (m *Model) EntityType() string {
	return m.entityType
}

// Stores returns the companion stores in registration order.
func (m *Model) Stores() []registry.CompanionStoreConfig {
	return slices.Clone(m.stores)
}

// IsMember reports whether name may live in store. Reserved names are never
// members. Otherwise the membership predicate decides alone when set, then
// the allow-list, then the attribute list; with none of them configured every
// name is a member.
func (m *Model) IsMember(name string, store registry.CompanionStoreConfig, e Entity) bool {
	if IsReserved(name) {
		return false
	}
	if m.membership != nil {
		return m.membership(name, store, e)
	}
	if store.Fields != nil {
		return store.AllowListed(name)
	}
	if list := m.attributeList(store, e); list != nil {
		return slices.Contains(list, name)
	}
	return true
}

// Resolve returns the first store, in registration order, that name belongs
// to. Native and reserved names never resolve to a store.
func (m *Model) Resolve(name string, e Entity) (registry.CompanionStoreConfig, bool) {
	if IsReserved(name) || e.IsNative(name) {
		return registry.CompanionStoreConfig{}, false
	}
	for _, s := range m.stores {
		if m.IsMember(name, s, e) {
			return s, true
		}
	}
	return registry.CompanionStoreConfig{}, false
}

// NewRecord wraps e for attribute access. e must be of the model's type.
func (m *Model) NewRecord(e Entity) (*Record, error) {
	if e.EntityType() != m.entityType {
		return nil, errors.NewConfigError(m.entityType, "", "",
			"cannot wrap entity of type "+e.EntityType())
	}
	return &Record{
		model:   m,
		entity:  e,
		removed: make(map[attrKey]struct{}),
		rows:    make(map[string][]*storagemodels.CompanionRow),
	}, nil
}

func (m *Model) attributeList(store registry.CompanionStoreConfig, e Entity) []string {
	if m.attrList == nil {
		return nil
	}
	return m.attrList(store, e)
}

func (m *Model) store(name string) (registry.CompanionStoreConfig, bool) {
	for _, s := range m.stores {
		if s.Name == name {
			return s, true
		}
	}
	return registry.CompanionStoreConfig{}, false
}
