/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Save validates the owner and commits it together with the staged
// attribute writes. A validation failure returns the validation error and
// keeps every staged write. A new owner is persisted first so its rows can
// reference the assigned id; an existing owner flushes its rows first.
func (r *Record) Save(ctx context.Context) error {
	if err := r.model.owners.Validate(ctx, r.entity); err != nil {
		r.model.logger.Debug("owner validation failed",
			zap.String("entity_type", r.model.entityType),
			zap.Int("pending", len(r.pending)),
			zap.Error(err))
		return err
	}

	if _, persisted := r.entity.ID(); !persisted {
		if err := r.persistOwner(ctx); err != nil {
			return err
		}
		return r.flush(ctx)
	}

	if err := r.flush(ctx); err != nil {
		return err
	}
	return r.persistOwner(ctx)
}

// Destroy deletes every companion row of the owner and then the owner.
func (r *Record) Destroy(ctx context.Context) error {
	if err := r.destroyAll(ctx); err != nil {
		return err
	}
	if err := r.model.owners.Destroy(ctx, r.entity); err != nil {
		return fmt.Errorf("failed to destroy %s: %w", r.model.entityType, err)
	}
	r.Reload()
	return nil
}

func (r *Record) persistOwner(ctx context.Context) error {
	if err := r.model.owners.Persist(ctx, r.entity); err != nil {
		return fmt.Errorf("failed to persist %s: %w", r.model.entityType, err)
	}
	return nil
}
