/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"slices"
	"strings"

	"github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/storagemodels"
)

// PendingWrite is a staged companion write awaiting the next Save.
type PendingWrite struct {
	Store string
	Name  string
}

type attrKey struct {
	store, name string
}

// Record is an owning entity together with its companion attribute state:
// the staged writes, the pending removal marks and the lazily loaded rows of
// each store. A Record must not be shared between goroutines.
type Record struct {
	model  *Model
	entity Entity

	pending []PendingWrite
	removed map[attrKey]struct{}
	rows    map[string][]*storagemodels.CompanionRow
}

// Entity returns the wrapped owner.
func (r *Record) Entity() Entity {
	return r.entity
}

// Get reads an attribute. Companion attributes report false when no row
// holds a value. Every other name is read from the owner, which reports
// names it does not serve with an UnknownMemberError.
func (r *Record) Get(ctx context.Context, name string) (string, bool, error) {
	store, ok := r.model.Resolve(name, r.entity)
	if !ok {
		return r.entity.GetNative(name)
	}

	if _, gone := r.removed[attrKey{store.Name, name}]; gone {
		return "", false, nil
	}
	row, err := r.findRow(ctx, store.Name, name)
	if err != nil {
		return "", false, err
	}
	if row == nil {
		return "", false, nil
	}
	return row.Value, true, nil
}

// Set stages an attribute write. Nothing reaches a backend until Save; the
// new value is visible to Get immediately. Names no store owns are written
// to the owner directly.
func (r *Record) Set(ctx context.Context, name, value string) error {
	store, ok := r.model.Resolve(name, r.entity)
	if !ok {
		return r.entity.SetNative(name, value)
	}

	row, err := r.findRow(ctx, store.Name, name)
	if err != nil {
		return err
	}
	r.stage(store.Name, name)

	blank := storagemodels.IsBlank(value)
	switch {
	case row != nil:
		row.Value = value
	case !blank:
		r.rows[store.Name] = append(r.rows[store.Name], &storagemodels.CompanionRow{
			Name:  name,
			Value: value,
		})
	}

	key := attrKey{store.Name, name}
	if blank {
		r.removed[key] = struct{}{}
	} else {
		delete(r.removed, key)
	}
	return nil
}

// Has reports whether name is an attribute of the record: a store with an
// attribute list admits it, a companion value is present, or the owner has
// a native field of that name.
func (r *Record) Has(ctx context.Context, name string) (bool, error) {
	if !IsReserved(name) && !r.entity.IsNative(name) && r.model.attrList != nil {
		for _, s := range r.model.stores {
			if r.model.attributeList(s, r.entity) != nil && r.model.IsMember(name, s, r.entity) {
				return true, nil
			}
		}
	}

	if _, ok := r.model.Resolve(name, r.entity); ok {
		_, present, err := r.Get(ctx, name)
		if err != nil {
			return false, err
		}
		if present {
			return true, nil
		}
	}
	return r.entity.IsNative(name), nil
}

// Attributes returns every companion attribute with a value, optionally
// limited to the named stores. Stored rows whose names no longer belong to
// their store are skipped. When two stores hold the same name the first
// registered store wins.
func (r *Record) Attributes(ctx context.Context, stores ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, s := range r.model.stores {
		if len(stores) > 0 && !slices.Contains(stores, s.Name) {
			continue
		}
		rows, err := r.rowsFor(ctx, s)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, gone := r.removed[attrKey{s.Name, row.Name}]; gone || row.Blank() {
				continue
			}
			if r.entity.IsNative(row.Name) || !r.model.IsMember(row.Name, s, r.entity) {
				continue
			}
			if _, seen := out[row.Name]; !seen {
				out[row.Name] = row.Value
			}
		}
	}
	return out, nil
}

// Assign sets every entry of attrs in key order and stops at the first error.
func (r *Record) Assign(ctx context.Context, attrs map[string]string) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := r.Set(ctx, name, attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch serves dynamic member access. "name" reads and returns the value
// or nil, "name=" writes its single argument, and "name?" reports whether a
// non-blank value is present; the query form answers false for unknown names.
func (r *Record) Dispatch(ctx context.Context, member string, args ...string) (any, error) {
	switch {
	case strings.HasSuffix(member, "="):
		name := strings.TrimSuffix(member, "=")
		if len(args) != 1 {
			return nil, errors.NewValidationError(name, "assignment takes exactly one value")
		}
		if err := r.Set(ctx, name, args[0]); err != nil {
			return nil, err
		}
		return args[0], nil

	case strings.HasSuffix(member, "?"):
		value, ok, err := r.Get(ctx, strings.TrimSuffix(member, "?"))
		if errors.IsUnknownMember(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return ok && !storagemodels.IsBlank(value), nil

	default:
		if len(args) != 0 {
			return nil, errors.NewValidationError(member, "read takes no arguments")
		}
		value, ok, err := r.Get(ctx, member)
		if err != nil || !ok {
			return nil, err
		}
		return value, nil
	}
}

// Pending returns a copy of the staged writes in staging order.
func (r *Record) Pending() []PendingWrite {
	return slices.Clone(r.pending)
}

// Dirty reports whether writes are staged.
func (r *Record) Dirty() bool {
	return len(r.pending) > 0
}

// Reload discards loaded rows, staged writes and removal marks. The next
// access reads the backends again.
func (r *Record) Reload() {
	r.pending = nil
	clear(r.removed)
	clear(r.rows)
}
