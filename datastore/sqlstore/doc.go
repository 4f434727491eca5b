/*
Package sqlstore provides a database/sql implementation of the DataStore
interface for SQLite (modernc.org/sqlite, pure Go) and Postgres
(github.com/jackc/pgx/v5/stdlib).

Each companion store maps to one table whose layout is produced by the
schema package:

	st, err := sqlstore.Open(ctx, "sqlite", "file:attrs.db")
	if err != nil {
	    return err
	}
	defer st.Close()
	if err := st.Migrate(ctx, cfg); err != nil {
	    return err
	}

Duplicate (owner, name) inserts surface as AlreadyExistsError, updates of
missing rows as NotFoundError.
*/
package sqlstore
