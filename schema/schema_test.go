/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/eavstore/registry"
)

func userAttributes(t *testing.T) registry.CompanionStoreConfig {
	t.Helper()
	b := registry.NewBuilder()
	require.NoError(t, b.Register("User", registry.CompanionStoreConfig{}))
	cfg, ok := b.Build().Lookup("User", "UserAttribute")
	require.True(t, ok)
	return cfg
}

func TestCreateTableSQLite(t *testing.T) {
	want := `CREATE TABLE IF NOT EXISTS "user_attributes" (
	"id" TEXT PRIMARY KEY,
	"user_id" TEXT NOT NULL,
	"name" TEXT NOT NULL,
	"value" TEXT NOT NULL,
	"created_at" DATETIME NOT NULL,
	"updated_at" DATETIME NOT NULL,
	UNIQUE ("user_id", "name")
)`
	assert.Equal(t, want, CreateTable(SQLite, userAttributes(t)))
}

func TestCreateTablePostgresUsesConfiguredColumns(t *testing.T) {
	cfg := registry.CompanionStoreConfig{
		Name:       "Preferences",
		Table:      "user_preferences",
		ForeignKey: "owner_id",
		NameField:  "pref_key",
		ValueField: "pref_value",
	}
	got := CreateTable(Postgres, cfg)
	assert.Contains(t, got, `CREATE TABLE IF NOT EXISTS "user_preferences" (`)
	assert.Contains(t, got, `"id" VARCHAR(36) PRIMARY KEY`)
	assert.Contains(t, got, `"owner_id" TEXT NOT NULL`)
	assert.Contains(t, got, `"pref_key" TEXT NOT NULL`)
	assert.Contains(t, got, `"pref_value" TEXT NOT NULL`)
	assert.Contains(t, got, `"created_at" TIMESTAMPTZ NOT NULL`)
	assert.Contains(t, got, `UNIQUE ("owner_id", "pref_key")`)
}

func TestCreateIndexAndDrop(t *testing.T) {
	cfg := userAttributes(t)
	assert.Equal(t,
		`CREATE INDEX IF NOT EXISTS "index_user_attributes_on_user_id" ON "user_attributes" ("user_id")`,
		CreateIndex(SQLite, cfg))
	assert.Equal(t, `DROP TABLE IF EXISTS "user_attributes"`, DropTable(Postgres, cfg))
}

func TestMigrationAndRollback(t *testing.T) {
	a := registry.CompanionStoreConfig{Table: "a_attrs", ForeignKey: "a_id", NameField: "name", ValueField: "value"}
	b := registry.CompanionStoreConfig{Table: "b_attrs", ForeignKey: "b_id", NameField: "name", ValueField: "value"}

	script := Migration(SQLite, a, b)
	assert.Equal(t, CreateTable(SQLite, a)+";\n\n"+CreateIndex(SQLite, a)+";\n\n"+
		CreateTable(SQLite, b)+";\n\n"+CreateIndex(SQLite, b)+";\n", script)

	assert.Equal(t, "DROP TABLE IF EXISTS \"b_attrs\";\n\nDROP TABLE IF EXISTS \"a_attrs\";\n", Rollback(SQLite, a, b))
	assert.Empty(t, Migration(SQLite))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, Quote("plain"))
	assert.Equal(t, `"we""ird"`, Quote(`we"ird`))
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"sqlite": SQLite, "SQLite3": SQLite, "pgx": Postgres, "postgresql": Postgres,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestDynamoTable(t *testing.T) {
	in := DynamoTable(userAttributes(t))

	assert.Equal(t, "user_attributes", aws.ToString(in.TableName))
	require.Len(t, in.KeySchema, 2)
	assert.Equal(t, "user_id", aws.ToString(in.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
	assert.Equal(t, "name", aws.ToString(in.KeySchema[1].AttributeName))
	assert.Equal(t, types.KeyTypeRange, in.KeySchema[1].KeyType)
	assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)
}
