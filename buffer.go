/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

func (r *Record) stage(store, name string) {
	r.pending = append(r.pending, PendingWrite{Store: store, Name: name})
}

// flush turns staged writes into backend operations. Each entry re-reads the
// current row, so repeated entries for one name apply the latest value once.
// An entry leaves the buffer only after its write succeeded; on failure the
// failing entry and everything after it stay staged for the next Save.
func (r *Record) flush(ctx context.Context) (err error) {
	if len(r.pending) == 0 {
		return nil
	}
	defer func() {
		r.model.metrics.flushed(r.model.entityType, err)
	}()

	done := make(map[attrKey]struct{}, len(r.pending))
	for len(r.pending) > 0 {
		pw := r.pending[0]
		key := attrKey{pw.Store, pw.Name}
		if _, ok := done[key]; !ok {
			if err := r.apply(ctx, pw); err != nil {
				r.model.logger.Debug("companion flush failed",
					zap.String("entity_type", r.model.entityType),
					zap.String("store", pw.Store),
					zap.String("name", pw.Name),
					zap.Int("remaining", len(r.pending)),
					zap.Error(err))
				return err
			}
			done[key] = struct{}{}
		}
		r.pending = r.pending[1:]
	}
	r.pending = nil

	r.model.logger.Debug("companion writes flushed",
		zap.String("entity_type", r.model.entityType),
		zap.Int("attributes", len(done)))
	return nil
}

func (r *Record) apply(ctx context.Context, pw PendingWrite) error {
	store, ok := r.model.store(pw.Store)
	if !ok {
		return fmt.Errorf("unknown companion store %q", pw.Store)
	}
	row, err := r.findRow(ctx, store.Name, pw.Name)
	if err != nil {
		return err
	}

	switch {
	case row == nil:
		// blank write with nothing to remove
	case row.Blank():
		if err := r.deleteIfEmpty(ctx, store, row); err != nil {
			return err
		}
	default:
		if err := r.persist(ctx, store, row); err != nil {
			return err
		}
	}
	delete(r.removed, attrKey{pw.Store, pw.Name})
	return nil
}
