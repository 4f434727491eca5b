/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"strings"
)

// Entity is the owning record that companion attributes attach to.
// Implementations expose their fixed-schema fields through the native
// accessors; every other name is routed to the companion stores.
type Entity interface {
	// EntityType names the registered owning type, e.g. "User".
	EntityType() string
	// IsNative reports whether name is a field of the owner's own schema.
	IsNative(name string) bool
	// GetNative reads a field the owner serves itself. Names it does not
	// serve yield an UnknownMemberError.
	GetNative(name string) (string, bool, error)
	// SetNative writes a field the owner serves itself, with the same
	// UnknownMemberError contract as GetNative.
	SetNative(name, value string) error
	// ID returns the owner's identifier once it has been persisted.
	ID() (string, bool)
}

// OwnerStore validates and persists owning records. Persist assigns the
// identifier when it creates a new record.
type OwnerStore interface {
	Validate(ctx context.Context, e Entity) error
	Persist(ctx context.Context, e Entity) error
	Destroy(ctx context.Context, e Entity) error
}

// reservedNames are structural names of the owning store that never become
// companion attributes.
var reservedNames = map[string]struct{}{
	"created_at":         {},
	"created_on":         {},
	"updated_at":         {},
	"updated_on":         {},
	"created_by":         {},
	"updated_by":         {},
	"lock_version":       {},
	"type":               {},
	"id":                 {},
	"position":           {},
	"parent_id":          {},
	"lft":                {},
	"rgt":                {},
	"quote_value":        {},
	"template":           {},
	"to_ary":             {},
	"marshal_dump":       {},
	"marshal_load":       {},
	"_dump":              {},
	"_load":              {},
	"to_yaml_type":       {},
	"to_yaml":            {},
	"yaml_initialize":    {},
	"to_xml":             {},
	"to_json":            {},
	"as_json":            {},
	"from_json":          {},
	"from_xml":           {},
	"validate":           {},
	"validate_on_create": {},
	"validate_on_update": {},
}

// IsReserved reports whether name can never be stored as a companion
// attribute. Empty names and names starting with an underscore are reserved.
func IsReserved(name string) bool {
	if name == "" || strings.HasPrefix(name, "_") {
		return true
	}
	_, ok := reservedNames[name]
	return ok
}
