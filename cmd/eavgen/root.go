/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suparena/eavstore/registry"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Verbose  bool
	EnvFile  string
	Registry string
	Entity   string

	// single store described by flags when no registry file is given
	Store      string
	Table      string
	ForeignKey string
	NameField  string
	ValueField string
	Fields     []string

	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "eavgen",
		Short: "Manage companion attribute tables",
		Long: `eavgen emits and applies the tables behind companion attribute stores.

Stores come from a registry file (--registry) or from flags describing a
single store of one entity type (--entity, --table, --name-field, ...).
Connection settings are read from the environment, optionally loaded from
a .env file: EAV_DRIVER, EAV_DSN, AWS_REGION, AWS_ACCESS_KEY, AWS_SECRET_KEY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(opts.EnvFile); err != nil {
				return err
			}

			config := zap.NewProductionConfig()
			config.OutputPaths = []string{"stderr"}
			if opts.Verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.EnvFile, "env-file", "", "environment file to load (default .env when present)")
	flags.StringVarP(&opts.Registry, "registry", "r", "", "registry YAML file")
	flags.StringVarP(&opts.Entity, "entity", "e", "", "owning entity type")
	flags.StringVar(&opts.Store, "store", "", "store name (default <Entity>Attribute)")
	flags.StringVar(&opts.Table, "table", "", "table name")
	flags.StringVar(&opts.ForeignKey, "foreign-key", "", "foreign key column")
	flags.StringVar(&opts.NameField, "name-field", "", "attribute name column")
	flags.StringVar(&opts.ValueField, "value-field", "", "attribute value column")
	flags.StringSliceVar(&opts.Fields, "fields", nil, "allow-listed attribute names")

	cmd.AddCommand(newMigrationCommand(opts))
	cmd.AddCommand(newApplyCommand(opts))
	cmd.AddCommand(newDropCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadEnv loads path, or .env when path is empty and the file exists.
func loadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// stores resolves the companion stores selected by the flags.
func (o *rootOptions) stores() ([]registry.CompanionStoreConfig, error) {
	var reg *registry.StoreRegistry
	if o.Registry != "" {
		var err error
		reg, err = registry.LoadFile(o.Registry, registry.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
	} else {
		if o.Entity == "" {
			return nil, fmt.Errorf("either --registry or --entity is required")
		}
		b := registry.NewBuilder(registry.WithLogger(o.logger))
		err := b.Register(o.Entity, registry.CompanionStoreConfig{
			Name:       o.Store,
			Table:      o.Table,
			ForeignKey: o.ForeignKey,
			NameField:  o.NameField,
			ValueField: o.ValueField,
			Fields:     o.Fields,
		})
		if err != nil {
			return nil, err
		}
		reg = b.Build()
	}

	entities := reg.EntityTypes()
	if o.Entity != "" {
		entities = []string{o.Entity}
	}
	var out []registry.CompanionStoreConfig
	for _, e := range entities {
		out = append(out, reg.StoresFor(e)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no companion stores found for %s", strings.Join(entities, ", "))
	}
	return out, nil
}

// envOr returns the environment variable key, or def when it is unset.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
