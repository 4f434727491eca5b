/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"context"
	"testing"

	"github.com/suparena/eavstore/datastore/mock"
	"github.com/suparena/eavstore/registry"
)

func TestBackends(t *testing.T) {
	t.Run("BasicOperations", func(t *testing.T) {
		fallback := mock.New()
		prefs := mock.New()
		b := NewBackends(fallback)

		if err := b.Register("Preferences", prefs); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}

		ds, err := b.Get("Preferences")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if ds != prefs {
			t.Error("Retrieved datastore doesn't match registered one")
		}

		ds, err = b.Get("UserAttribute")
		if err != nil {
			t.Fatalf("Failed to get fallback: %v", err)
		}
		if ds != fallback {
			t.Error("Unregistered store should use the fallback")
		}

		if keys := b.List(); len(keys) != 1 || keys[0] != "Preferences" {
			t.Errorf("Expected [Preferences], got %v", keys)
		}

		if err := b.Remove("Preferences"); err != nil {
			t.Fatalf("Failed to remove: %v", err)
		}
		if ds, _ := b.Get("Preferences"); ds != fallback {
			t.Error("Removed store should use the fallback")
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		b := NewBackends(nil)
		if err := b.Register("Preferences", mock.New()); err != nil {
			t.Fatalf("First registration failed: %v", err)
		}
		if err := b.Register("Preferences", mock.New()); err == nil {
			t.Error("Expected error for duplicate registration")
		}
		if err := b.Register("Other", nil); err == nil {
			t.Error("Expected error for nil datastore")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		b := NewBackends(nil)
		if _, err := b.Get("missing"); err == nil {
			t.Error("Expected error without a fallback")
		}
		if err := b.Remove("missing"); err == nil {
			t.Error("Expected error removing unknown store")
		}
	})
}

func TestBackendsMigrate(t *testing.T) {
	rb := registry.NewBuilder()
	if err := rb.Register("User", registry.CompanionStoreConfig{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := rb.Register("User", registry.CompanionStoreConfig{Name: "Preferences", Fields: []string{"theme"}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	reg := rb.Build()

	ds := mock.New()
	b := NewBackends(ds)
	if err := b.Migrate(context.Background(), reg, "User"); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if n := ds.Count("user_attributes"); n != 0 {
		t.Errorf("Expected empty table, got %d rows", n)
	}

	if err := NewBackends(nil).Migrate(context.Background(), reg, "User"); err == nil {
		t.Error("Expected error when a store has no backend")
	}
}
