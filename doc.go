/*
Package eavstore adds open-ended, schema-less attributes to a fixed-schema
owning entity. Attributes are persisted as (owner id, name, value) rows in one
or more companion stores and behave like ordinary fields: they can be read,
written and introspected through a uniform accessor surface.

The library is organised around a few pieces:
  - registry.StoreRegistry: the immutable set of companion stores per entity type
  - Model: membership rules and the first-match lookup chain over the stores
  - Record: one owner instance with its staged writes and loaded rows
  - datastore backends: in-memory mock, SQL (SQLite, Postgres) and DynamoDB

Membership:

A name is never a companion attribute when it is a native field of the owner
or a reserved structural name (timestamps, ids, tree columns, serialization
hooks, anything starting with "_"). Otherwise, in order of precedence:

  - a predicate installed with WithMembershipFunc decides alone
  - a store with an allow-list (Fields) admits exactly those names
  - a WithAttributeList function returning a non-nil list admits its names
  - otherwise every name is admitted

The first store in registration order that admits a name owns it.

Writes:

Set never touches a backend. It updates or builds the row in memory, so
Get observes the new value at once, and stages a PendingWrite. Save runs
owner validation; on failure the staged writes are kept for the next attempt.
On success the staged writes are flushed: blank values delete their row,
others create or update it.

Basic Usage:

	b := registry.NewBuilder()
	_ = b.Register("User", registry.CompanionStoreConfig{})
	reg := b.Build()

	backend, _ := sqlstore.Open(ctx, "sqlite", "file:eav.db")
	model, _ := eavstore.NewModel(reg, "User", users, eavstore.NewBackends(backend))

	rec, _ := model.NewRecord(user)
	_ = rec.Set(ctx, "nickname", "Chip")
	err := rec.Save(ctx)

For more information, see the documentation at https://github.com/suparena/eavstore
*/
package eavstore
