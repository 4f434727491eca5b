/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/eavstore/datastore"
	"github.com/suparena/eavstore/datastore/ddb"
	"github.com/suparena/eavstore/datastore/sqlstore"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/schema"
)

const (
	backendSQL    = "sql"
	backendDynamo = "dynamodb"
)

func newMigrationCommand(rootOpts *rootOptions) *cobra.Command {
	var (
		dialect  string
		rollback bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "migration",
		Short: "Print the DDL for companion tables",
		Long: `Print the SQL creating the tables behind the selected companion stores:
an id primary key, the foreign key, name and value columns, timestamps, an
index on the foreign key and a unique (foreign key, name) constraint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := dialect
			if !cmd.Flags().Changed("dialect") {
				name = envOr("EAV_DRIVER", dialect)
			}
			d, err := schema.ParseDialect(name)
			if err != nil {
				return err
			}
			cfgs, err := rootOpts.stores()
			if err != nil {
				return err
			}

			script := schema.Migration(d, cfgs...)
			if rollback {
				script = schema.Rollback(d, cfgs...)
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), script)
				return err
			}
			if err := os.WriteFile(output, []byte(script), 0o644); err != nil {
				return fmt.Errorf("write migration: %w", err)
			}
			rootOpts.logger.Info("migration written", zap.String("path", output), zap.Int("stores", len(cfgs)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dialect, "dialect", "d", "sqlite", "SQL dialect (sqlite|postgres)")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "print the DROP statements instead")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

type backendOptions struct {
	backend   string
	driver    string
	dsn       string
	tableWait time.Duration
}

func (b *backendOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.backend, "backend", "b", backendSQL, "backend (sql|dynamodb)")
	cmd.Flags().StringVar(&b.driver, "driver", "", "SQL driver, sqlite or pgx (default $EAV_DRIVER or sqlite)")
	cmd.Flags().StringVar(&b.dsn, "dsn", "", "SQL data source name (default $EAV_DSN)")
	cmd.Flags().DurationVar(&b.tableWait, "table-wait", time.Minute, "how long to wait for DynamoDB tables to become active")
}

// open connects the selected backend. The returned func releases it.
func (b *backendOptions) open(ctx context.Context, logger *zap.Logger) (datastore.Migrator, func() error, error) {
	switch b.backend {
	case backendSQL:
		driver := b.driver
		if driver == "" {
			driver = envOr("EAV_DRIVER", "sqlite")
		}
		dsn := b.dsn
		if dsn == "" {
			dsn = os.Getenv("EAV_DSN")
		}
		if dsn == "" {
			return nil, nil, fmt.Errorf("--dsn or EAV_DSN is required")
		}
		store, err := sqlstore.Open(ctx, driver, dsn, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case backendDynamo:
		region := os.Getenv("AWS_REGION")
		if region == "" {
			return nil, nil, fmt.Errorf("AWS_REGION is required")
		}
		store, err := ddb.NewDynamodbDataStore(ctx,
			os.Getenv("AWS_ACCESS_KEY"), os.Getenv("AWS_SECRET_KEY"), region,
			ddb.WithTableWait(b.tableWait), ddb.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend %q", b.backend)
}

func newApplyCommand(rootOpts *rootOptions) *cobra.Command {
	var b backendOptions
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create companion tables in the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrator(cmd.Context(), rootOpts, &b, "created", datastore.Migrator.Migrate)
		},
	}
	b.register(cmd)
	return cmd
}

func newDropCommand(rootOpts *rootOptions) *cobra.Command {
	var b backendOptions
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop companion tables from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrator(cmd.Context(), rootOpts, &b, "dropped", datastore.Migrator.Drop)
		},
	}
	b.register(cmd)
	return cmd
}

func runMigrator(ctx context.Context, rootOpts *rootOptions, b *backendOptions, verb string,
	op func(datastore.Migrator, context.Context, registry.CompanionStoreConfig) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfgs, err := rootOpts.stores()
	if err != nil {
		return err
	}

	m, closeFn, err := b.open(ctx, rootOpts.logger)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, cfg := range cfgs {
		if err := op(m, ctx, cfg); err != nil {
			return fmt.Errorf("%s: %w", cfg.Table, err)
		}
		rootOpts.logger.Info("companion table "+verb,
			zap.String("backend", b.backend),
			zap.String("store", cfg.Name),
			zap.String("table", cfg.Table))
	}
	return nil
}
