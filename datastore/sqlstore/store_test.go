/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeerrors "github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/schema"
	"github.com/suparena/eavstore/storagemodels"
)

var prefs = registry.CompanionStoreConfig{
	Name:         "Preferences",
	Table:        "user_preferences",
	Relationship: "user_preferences",
	ForeignKey:   "user_id",
	NameField:    "pref_key",
	ValueField:   "pref_value",
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "attrs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx, prefs))
	return s
}

func row(id, owner, name, value string) storagemodels.CompanionRow {
	now := strfmt.DateTime(time.Now().UTC())
	return storagemodels.CompanionRow{ID: id, OwnerID: owner, Name: name, Value: value, CreatedAt: now, UpdatedAt: now}
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Create(ctx, prefs, row("r1", "1", "theme", "dark")))
	require.NoError(t, s.Create(ctx, prefs, row("r2", "1", "locale", "en")))
	require.NoError(t, s.Create(ctx, prefs, row("r3", "2", "theme", "light")))

	rows, err := s.ListByOwner(ctx, prefs, "1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "locale", rows[0].Name, "ordered by name")
	assert.Equal(t, "theme", rows[1].Name)
	assert.Equal(t, "dark", rows[1].Value)
	assert.Equal(t, "r1", rows[1].ID)
	assert.False(t, time.Time(rows[1].CreatedAt).IsZero())

	updated := row("r1", "1", "theme", "solarized")
	require.NoError(t, s.Update(ctx, prefs, updated))

	rows, err = s.ListByOwner(ctx, prefs, "1")
	require.NoError(t, err)
	assert.Equal(t, "solarized", rows[1].Value)

	require.NoError(t, s.Delete(ctx, prefs, updated))
	require.NoError(t, s.Delete(ctx, prefs, updated), "deleting a missing row is a no-op")

	rows, err = s.ListByOwner(ctx, prefs, "1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "locale", rows[0].Name)

	other, err := s.ListByOwner(ctx, prefs, "2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestStoreRoundTripsRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ts := strfmt.DateTime(time.Date(2025, 3, 1, 12, 30, 45, 123e6, time.UTC))
	want := []storagemodels.CompanionRow{
		{ID: "r1", OwnerID: "7", Name: "locale", Value: "en", CreatedAt: ts, UpdatedAt: ts},
		{ID: "r2", OwnerID: "7", Name: "theme", Value: "dark", CreatedAt: ts, UpdatedAt: ts},
	}
	for _, r := range want {
		require.NoError(t, s.Create(ctx, prefs, r))
	}

	got, err := s.ListByOwner(ctx, prefs, "7")
	require.NoError(t, err)

	sameInstant := cmp.Comparer(func(a, b strfmt.DateTime) bool {
		return time.Time(a).Equal(time.Time(b))
	})
	if diff := cmp.Diff(want, got, sameInstant); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreConflicts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Create(ctx, prefs, row("r1", "1", "theme", "dark")))

	err := s.Create(ctx, prefs, row("r2", "1", "theme", "light"))
	assert.True(t, storeerrors.IsAlreadyExists(err), "got %v", err)

	err = s.Update(ctx, prefs, row("r9", "1", "missing", "x"))
	assert.True(t, storeerrors.IsNotFound(err), "got %v", err)
}

func TestStoreDeleteByOwner(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Create(ctx, prefs, row("r1", "1", "theme", "dark")))
	require.NoError(t, s.Create(ctx, prefs, row("r2", "1", "locale", "en")))
	require.NoError(t, s.Create(ctx, prefs, row("r3", "2", "theme", "light")))

	require.NoError(t, s.DeleteByOwner(ctx, prefs, "1"))

	rows, err := s.ListByOwner(ctx, prefs, "1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.ListByOwner(ctx, prefs, "2")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMigrateIsIdempotentAndDrop(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Migrate(ctx, prefs))
	require.NoError(t, s.Drop(ctx, prefs))

	_, err := s.ListByOwner(ctx, prefs, "1")
	assert.Error(t, err, "table should be gone")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	sqlite := New(nil, schema.SQLite)
	pg := New(nil, schema.Postgres)
	assert.Equal(t, "?", sqlite.ph(3))
	assert.Equal(t, "$3", pg.ph(3))
}
