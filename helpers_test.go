/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/suparena/eavstore"
	"github.com/suparena/eavstore/datastore/mock"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/testmodels"
)

const userAttributes = "user_attributes"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"))
}

var (
	contactInfo = registry.CompanionStoreConfig{
		Name:   "ContactInfo",
		Table:  "user_contact_infos",
		Fields: []string{"email", "phone"},
	}
	preferences = registry.CompanionStoreConfig{
		Name:   "Preferences",
		Table:  "user_preferences",
		Fields: []string{"theme"},
	}
)

type fixture struct {
	model   *eavstore.Model
	backend *mock.DataStore
	users   *testmodels.UserStore
}

func newFixture(t *testing.T, stores []registry.CompanionStoreConfig, userOpts []testmodels.UserStoreOption, opts ...eavstore.Option) *fixture {
	t.Helper()

	b := registry.NewBuilder()
	if len(stores) == 0 {
		stores = []registry.CompanionStoreConfig{{}}
	}
	for _, s := range stores {
		require.NoError(t, b.Register(testmodels.UserType, s))
	}

	backend := mock.New()
	users := testmodels.NewUserStore(userOpts...)
	model, err := eavstore.NewModel(b.Build(), testmodels.UserType, users, eavstore.NewBackends(backend), opts...)
	require.NoError(t, err)

	return &fixture{model: model, backend: backend, users: users}
}

func (f *fixture) record(t *testing.T, u eavstore.Entity) *eavstore.Record {
	t.Helper()
	rec, err := f.model.NewRecord(u)
	require.NoError(t, err)
	return rec
}

func userID(t *testing.T, u *testmodels.User) string {
	t.Helper()
	id, ok := u.ID()
	require.True(t, ok, "user has no id")
	return id
}
