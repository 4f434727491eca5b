/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/suparena/eavstore/errors"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columns every companion table carries besides the configured ones
var structuralColumns = []string{"id", "created_at", "updated_at"}

// CompanionStoreConfig describes the shape of one companion store.
type CompanionStoreConfig struct {
	// Name identifies the store within its entity type (default "<EntityType>Attribute").
	Name string `yaml:"name"`
	// Table is the underlying table or collection (default: tableized Name).
	Table string `yaml:"table"`
	// Relationship is the accessor name for the row collection (default: Table).
	Relationship string `yaml:"relationship"`
	// ForeignKey links a row back to its owner (default "<entity_type>_id").
	ForeignKey string `yaml:"foreign_key"`
	NameField  string `yaml:"name_field"`
	ValueField string `yaml:"value_field"`
	// Fields is the allow-list. nil admits any name, an empty list admits none.
	Fields []string `yaml:"fields"`
}

// AllowListed reports whether name is in the allow-list. Matching is exact
// and case-sensitive.
func (c CompanionStoreConfig) AllowListed(name string) bool {
	return slices.Contains(c.Fields, name)
}

func (c CompanionStoreConfig) clone() CompanionStoreConfig {
	if c.Fields != nil {
		c.Fields = slices.Clone(c.Fields)
	}
	return c
}

// EntityType is a configured owning model and its companion stores in
// registration order.
type EntityType struct {
	Name   string
	Stores []CompanionStoreConfig
}

// StoreRegistry holds the companion stores of every configured entity type.
// It is immutable once built and safe for concurrent use.
type StoreRegistry struct {
	types map[string]EntityType
	order []string
}

// StoresFor returns the companion stores of entityType in registration order.
func (r *StoreRegistry) StoresFor(entityType string) []CompanionStoreConfig {
	if r == nil {
		return nil
	}
	et, ok := r.types[entityType]
	if !ok {
		return nil
	}
	out := make([]CompanionStoreConfig, len(et.Stores))
	for i, s := range et.Stores {
		out[i] = s.clone()
	}
	return out
}

// Lookup returns the named store of entityType.
func (r *StoreRegistry) Lookup(entityType, store string) (CompanionStoreConfig, bool) {
	for _, s := range r.StoresFor(entityType) {
		if s.Name == store {
			return s, true
		}
	}
	return CompanionStoreConfig{}, false
}

// EntityTypes lists configured entity types in the order they were first registered.
func (r *StoreRegistry) EntityTypes() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}

// Builder collects companion store registrations. It is not safe for
// concurrent use; build the registry once during initialization.
type Builder struct {
	types  map[string]*EntityType
	order  []string
	logger *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		types:  make(map[string]*EntityType),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a companion store to entityType, filling unset fields with
// their conventional defaults. Registering a store name that already exists
// for the entity type is a no-op.
func (b *Builder) Register(entityType string, cfg CompanionStoreConfig) error {
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return errors.NewConfigError("", cfg.Name, "", "entity type name is required")
	}
	if !identPattern.MatchString(entityType) {
		return errors.NewConfigError(entityType, cfg.Name, "", "entity type name must be an identifier")
	}

	cfg = applyDefaults(entityType, cfg)
	if err := validate(entityType, &cfg); err != nil {
		return err
	}

	et, ok := b.types[entityType]
	if !ok {
		et = &EntityType{Name: entityType}
		b.types[entityType] = et
		b.order = append(b.order, entityType)
	}
	for _, existing := range et.Stores {
		if existing.Name == cfg.Name {
			b.logger.Debug("companion store already registered",
				zap.String("entity_type", entityType),
				zap.String("store", cfg.Name))
			return nil
		}
	}
	et.Stores = append(et.Stores, cfg)

	b.logger.Debug("registered companion store",
		zap.String("entity_type", entityType),
		zap.String("store", cfg.Name),
		zap.String("table", cfg.Table),
		zap.String("foreign_key", cfg.ForeignKey),
		zap.Strings("fields", cfg.Fields))
	return nil
}

// Build freezes the registrations into a StoreRegistry. The builder may keep
// being used; later registrations do not affect registries already built.
func (b *Builder) Build() *StoreRegistry {
	r := &StoreRegistry{
		types: make(map[string]EntityType, len(b.types)),
		order: slices.Clone(b.order),
	}
	for name, et := range b.types {
		stores := make([]CompanionStoreConfig, len(et.Stores))
		for i, s := range et.Stores {
			stores[i] = s.clone()
		}
		r.types[name] = EntityType{Name: name, Stores: stores}
	}
	return r
}

func applyDefaults(entityType string, cfg CompanionStoreConfig) CompanionStoreConfig {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		cfg.Name = entityType + "Attribute"
	}
	if cfg.Table == "" {
		cfg.Table = Tableize(cfg.Name)
	}
	if cfg.Relationship == "" {
		cfg.Relationship = cfg.Table
	}
	if cfg.ForeignKey == "" {
		cfg.ForeignKey = ForeignKey(entityType)
	}
	if cfg.NameField == "" {
		cfg.NameField = "name"
	}
	if cfg.ValueField == "" {
		cfg.ValueField = "value"
	}
	return cfg
}

func validate(entityType string, cfg *CompanionStoreConfig) error {
	idents := []struct {
		field string
		value string
	}{
		{"table", cfg.Table},
		{"relationship", cfg.Relationship},
		{"foreign_key", cfg.ForeignKey},
		{"name_field", cfg.NameField},
		{"value_field", cfg.ValueField},
	}
	for _, id := range idents {
		if !identPattern.MatchString(id.value) {
			return errors.NewConfigError(entityType, cfg.Name, id.field,
				fmt.Sprintf("%q is not a valid identifier", id.value))
		}
	}

	columns := []string{cfg.ForeignKey, cfg.NameField, cfg.ValueField}
	for i, col := range columns {
		if slices.Contains(structuralColumns, col) {
			return errors.NewConfigError(entityType, cfg.Name, idents[i+2].field,
				fmt.Sprintf("%q collides with a structural column", col))
		}
		for _, other := range columns[i+1:] {
			if col == other {
				return errors.NewConfigError(entityType, cfg.Name, idents[i+2].field,
					fmt.Sprintf("column %q is used twice", col))
			}
		}
	}

	if cfg.Fields != nil {
		fields := make([]string, 0, len(cfg.Fields))
		for _, f := range cfg.Fields {
			f = strings.TrimSpace(f)
			if f == "" {
				return errors.NewConfigError(entityType, cfg.Name, "fields", "allow-list contains a blank name")
			}
			fields = append(fields, f)
		}
		cfg.Fields = fields
	}
	return nil
}
