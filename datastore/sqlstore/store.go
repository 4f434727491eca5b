/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/suparena/eavstore/datastore"
	storeerrors "github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/schema"
	"github.com/suparena/eavstore/storagemodels"
)

var (
	_ datastore.DataStore = (*Store)(nil)
	_ datastore.Migrator  = (*Store)(nil)
)

const pgUniqueViolation = "23505"

// Store implements datastore.DataStore on a relational database.
type Store struct {
	db      *sql.DB
	dialect schema.Dialect
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for migrations and failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open connects to a database. driver is "sqlite" (modernc.org/sqlite) or
// "pgx" (Postgres).
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	dialect, err := schema.ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	driverName := "sqlite"
	if dialect == schema.Postgres {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	if dialect == schema.SQLite {
		// SQLite has a single writer; one connection also keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}
	return New(db, dialect, opts...), nil
}

// New wraps an existing database handle.
func New(db *sql.DB, dialect schema.Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect reports the SQL dialect in use.
func (s *Store) Dialect() schema.Dialect {
	return s.dialect
}

// ph returns the n-th (1-based) bind placeholder.
func (s *Store) ph(n int) string {
	if s.dialect == schema.Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// ListByOwner returns the owner's rows ordered by name.
func (s *Store) ListByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) ([]storagemodels.CompanionRow, error) {
	q := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = %s ORDER BY %s`,
		schema.Quote("id"), schema.Quote(store.ForeignKey), schema.Quote(store.NameField),
		schema.Quote(store.ValueField), schema.Quote("created_at"), schema.Quote("updated_at"),
		schema.Quote(store.Table), schema.Quote(store.ForeignKey), s.ph(1), schema.Quote(store.NameField))

	rows, err := s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", store.Table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []storagemodels.CompanionRow
	for rows.Next() {
		var r storagemodels.CompanionRow
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Value, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", store.Table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", store.Table, err)
	}
	return out, nil
}

// Create inserts a row.
func (s *Store) Create(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	q := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES (%s, %s, %s, %s, %s, %s)`,
		schema.Quote(store.Table),
		schema.Quote("id"), schema.Quote(store.ForeignKey), schema.Quote(store.NameField),
		schema.Quote(store.ValueField), schema.Quote("created_at"), schema.Quote("updated_at"),
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6))

	_, err := s.db.ExecContext(ctx, q, row.ID, row.OwnerID, row.Name, row.Value, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storeerrors.NewAlreadyExistsError(store.Name, row.OwnerID+"/"+row.Name)
		}
		return fmt.Errorf("insert %s: %w", store.Table, err)
	}
	return nil
}

// Update sets the value and updated_at of an existing row.
func (s *Store) Update(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	q := fmt.Sprintf(`UPDATE %s SET %s = %s, %s = %s WHERE %s = %s AND %s = %s`,
		schema.Quote(store.Table),
		schema.Quote(store.ValueField), s.ph(1),
		schema.Quote("updated_at"), s.ph(2),
		schema.Quote(store.ForeignKey), s.ph(3),
		schema.Quote(store.NameField), s.ph(4))

	res, err := s.db.ExecContext(ctx, q, row.Value, row.UpdatedAt, row.OwnerID, row.Name)
	if err != nil {
		return fmt.Errorf("update %s: %w", store.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", store.Table, err)
	}
	if n == 0 {
		return storeerrors.NewNotFoundError(store.Name, row.OwnerID+"/"+row.Name)
	}
	return nil
}

// Delete removes a row if present.
func (s *Store) Delete(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s = %s AND %s = %s`,
		schema.Quote(store.Table),
		schema.Quote(store.ForeignKey), s.ph(1),
		schema.Quote(store.NameField), s.ph(2))

	if _, err := s.db.ExecContext(ctx, q, row.OwnerID, row.Name); err != nil {
		return fmt.Errorf("delete %s: %w", store.Table, err)
	}
	return nil
}

// DeleteByOwner removes every row of ownerID.
func (s *Store) DeleteByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s = %s`,
		schema.Quote(store.Table), schema.Quote(store.ForeignKey), s.ph(1))

	if _, err := s.db.ExecContext(ctx, q, ownerID); err != nil {
		return fmt.Errorf("delete %s: %w", store.Table, err)
	}
	return nil
}

// Migrate creates the table and foreign key index behind store. It is safe
// to call more than once.
func (s *Store) Migrate(ctx context.Context, store registry.CompanionStoreConfig) error {
	for _, stmt := range schema.Statements(s.dialect, store) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	s.logger.Debug("migrated companion table",
		zap.String("table", store.Table),
		zap.String("dialect", string(s.dialect)))
	return nil
}

// Drop removes the table behind store.
func (s *Store) Drop(ctx context.Context, store registry.CompanionStoreConfig) error {
	if _, err := s.db.ExecContext(ctx, schema.DropTable(s.dialect, store)); err != nil {
		return fmt.Errorf("execute ddl: %w", err)
	}
	s.logger.Debug("dropped companion table", zap.String("table", store.Table))
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgUniqueViolation
	}
	// base result codes and drivers without typed errors
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
