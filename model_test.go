/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore_test

import (
	"strings"
	"testing"

	"github.com/suparena/eavstore"
	"github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/testmodels"
)

func TestIsReserved(t *testing.T) {
	for _, name := range []string{"", "id", "type", "created_at", "updated_on", "lock_version", "to_json", "_secret", "_"} {
		if !eavstore.IsReserved(name) {
			t.Errorf("expected %q to be reserved", name)
		}
	}
	for _, name := range []string{"nickname", "theme", "ID", "identifier", "types"} {
		if eavstore.IsReserved(name) {
			t.Errorf("expected %q not to be reserved", name)
		}
	}
}

func TestIsMember(t *testing.T) {
	u := testmodels.NewUser("marcus")
	open := registry.CompanionStoreConfig{Name: "UserAttribute"}
	listed := registry.CompanionStoreConfig{Name: "ContactInfo", Fields: []string{"email", "phone"}}
	none := registry.CompanionStoreConfig{Name: "Nothing", Fields: []string{}}

	t.Run("AllowList", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if !f.model.IsMember("phone", listed, u) {
			t.Error("phone should be a member")
		}
		if f.model.IsMember("Phone", listed, u) {
			t.Error("matching should be case-sensitive")
		}
		if f.model.IsMember("fax", listed, u) {
			t.Error("fax is not allow-listed")
		}
		if f.model.IsMember("phone", none, u) {
			t.Error("an empty allow-list admits nothing")
		}
	})

	t.Run("OpenByDefault", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if !f.model.IsMember("anything", open, u) {
			t.Error("store without rules should admit any name")
		}
		if f.model.IsMember("_private", open, u) || f.model.IsMember("position", open, u) {
			t.Error("reserved names are never members")
		}
	})

	t.Run("PredicateOverridesAllowList", func(t *testing.T) {
		f := newFixture(t, nil, nil, eavstore.WithMembershipFunc(
			func(name string, _ registry.CompanionStoreConfig, _ eavstore.Entity) bool {
				return strings.HasPrefix(name, "contact_")
			}))
		if !f.model.IsMember("contact_phone", listed, u) {
			t.Error("predicate should admit contact_phone")
		}
		if f.model.IsMember("phone", listed, u) {
			t.Error("predicate should ignore the allow-list")
		}
	})

	t.Run("AttributeList", func(t *testing.T) {
		f := newFixture(t, nil, nil, eavstore.WithAttributeList(
			func(s registry.CompanionStoreConfig, _ eavstore.Entity) []string {
				switch s.Name {
				case "UserAttribute":
					return []string{"aim", "msn"}
				case "Empty":
					return []string{}
				}
				return nil
			}))
		if !f.model.IsMember("aim", open, u) || f.model.IsMember("icq", open, u) {
			t.Error("attribute list should decide membership")
		}
		if f.model.IsMember("aim", registry.CompanionStoreConfig{Name: "Empty"}, u) {
			t.Error("empty attribute list admits nothing")
		}
		if !f.model.IsMember("icq", registry.CompanionStoreConfig{Name: "Other"}, u) {
			t.Error("nil attribute list should leave the store open")
		}
		if f.model.IsMember("aim", listed, u) {
			t.Error("allow-list should take precedence over the attribute list")
		}
	})
}

func TestResolve(t *testing.T) {
	u := testmodels.NewUser("marcus")

	t.Run("FirstRegisteredWins", func(t *testing.T) {
		f := newFixture(t, []registry.CompanionStoreConfig{
			{Name: "First", Table: "firsts"},
			{Name: "Second", Table: "seconds"},
		}, nil)
		store, ok := f.model.Resolve("nickname", u)
		if !ok || store.Name != "First" {
			t.Fatalf("expected First, got %q (found=%v)", store.Name, ok)
		}
	})

	t.Run("AllowListRouting", func(t *testing.T) {
		f := newFixture(t, []registry.CompanionStoreConfig{contactInfo, preferences}, nil)
		if s, ok := f.model.Resolve("phone", u); !ok || s.Name != "ContactInfo" {
			t.Errorf("phone resolved to %q", s.Name)
		}
		if s, ok := f.model.Resolve("theme", u); !ok || s.Name != "Preferences" {
			t.Errorf("theme resolved to %q", s.Name)
		}
		if _, ok := f.model.Resolve("unknown_field", u); ok {
			t.Error("unknown_field should not resolve")
		}
	})

	t.Run("NativeAndReservedNeverResolve", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		for _, name := range []string{"login", "id", "created_at", "lft", "_x"} {
			if s, ok := f.model.Resolve(name, u); ok {
				t.Errorf("%q resolved to %q", name, s.Name)
			}
		}
	})
}

func TestNewModel(t *testing.T) {
	b := registry.NewBuilder()
	if err := b.Register("User", registry.CompanionStoreConfig{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	reg := b.Build()
	users := testmodels.NewUserStore()

	t.Run("UnknownEntityType", func(t *testing.T) {
		_, err := eavstore.NewModel(reg, "Account", users, eavstore.NewBackends(nil))
		if !errors.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})

	t.Run("MissingBackend", func(t *testing.T) {
		_, err := eavstore.NewModel(reg, "User", users, eavstore.NewBackends(nil))
		if !errors.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})

	t.Run("MissingOwnerStore", func(t *testing.T) {
		_, err := eavstore.NewModel(reg, "User", nil, eavstore.NewBackends(nil))
		if !errors.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})

	t.Run("WrongEntityType", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.model.NewRecord(otherEntity{}); !errors.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})

	t.Run("Stores", func(t *testing.T) {
		f := newFixture(t, []registry.CompanionStoreConfig{contactInfo, preferences}, nil)
		stores := f.model.Stores()
		if len(stores) != 2 || stores[0].Name != "ContactInfo" || stores[1].Name != "Preferences" {
			t.Fatalf("unexpected stores %+v", stores)
		}
		if f.model.EntityType() != "User" {
			t.Errorf("unexpected entity type %q", f.model.EntityType())
		}
	})
}

type otherEntity struct{}

func (otherEntity) EntityType() string { return "Account" }
func (otherEntity) IsNative(string) bool { return false }
func (otherEntity) GetNative(string) (string, bool, error) { return "", false, nil }
func (otherEntity) SetNative(string, string) error { return nil }
func (otherEntity) ID() (string, bool) { return "", false }
