/*
Package schema generates the storage layout of companion stores.

For SQL backends it emits DDL in the SQLite or Postgres dialect; for
DynamoDB it builds a CreateTableInput. Table and column names come straight
from the registry configuration:

	CREATE TABLE IF NOT EXISTS "user_attributes" (
		"id" TEXT PRIMARY KEY,
		"user_id" TEXT NOT NULL,
		"name" TEXT NOT NULL,
		"value" TEXT NOT NULL,
		"created_at" DATETIME NOT NULL,
		"updated_at" DATETIME NOT NULL,
		UNIQUE ("user_id", "name")
	);

	CREATE INDEX IF NOT EXISTS "index_user_attributes_on_user_id" ON "user_attributes" ("user_id");

The eavgen command wraps this package.
*/
package schema
