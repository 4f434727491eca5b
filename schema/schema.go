/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/eavstore/registry"
)

// Dialect selects the SQL flavour emitted by the generator.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts a dialect or driver name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", s)
}

type columnTypes struct {
	id, text, timestamp string
}

func (d Dialect) types() columnTypes {
	if d == Postgres {
		return columnTypes{id: "VARCHAR(36)", text: "TEXT", timestamp: "TIMESTAMPTZ"}
	}
	return columnTypes{id: "TEXT", text: "TEXT", timestamp: "DATETIME"}
}

// Quote returns name as a quoted identifier. Both dialects use double quotes.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// IndexName is the name of the foreign key index of a companion table.
func IndexName(cfg registry.CompanionStoreConfig) string {
	return fmt.Sprintf("index_%s_on_%s", cfg.Table, cfg.ForeignKey)
}

// CreateTable returns the DDL creating the table behind cfg: an id primary
// key, the foreign key, name and value columns (all NOT NULL), timestamps,
// and a uniqueness constraint on (foreign key, name).
func CreateTable(d Dialect, cfg registry.CompanionStoreConfig) string {
	t := d.types()
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n", Quote(cfg.Table))
	fmt.Fprintf(&sb, "\t%s %s PRIMARY KEY,\n", Quote("id"), t.id)
	fmt.Fprintf(&sb, "\t%s %s NOT NULL,\n", Quote(cfg.ForeignKey), t.text)
	fmt.Fprintf(&sb, "\t%s %s NOT NULL,\n", Quote(cfg.NameField), t.text)
	fmt.Fprintf(&sb, "\t%s %s NOT NULL,\n", Quote(cfg.ValueField), t.text)
	fmt.Fprintf(&sb, "\t%s %s NOT NULL,\n", Quote("created_at"), t.timestamp)
	fmt.Fprintf(&sb, "\t%s %s NOT NULL,\n", Quote("updated_at"), t.timestamp)
	fmt.Fprintf(&sb, "\tUNIQUE (%s, %s)\n", Quote(cfg.ForeignKey), Quote(cfg.NameField))
	sb.WriteString(")")
	return sb.String()
}

// CreateIndex returns the DDL indexing the foreign key column.
func CreateIndex(d Dialect, cfg registry.CompanionStoreConfig) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		Quote(IndexName(cfg)), Quote(cfg.Table), Quote(cfg.ForeignKey))
}

// DropTable returns the DDL dropping the table behind cfg.
func DropTable(d Dialect, cfg registry.CompanionStoreConfig) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", Quote(cfg.Table))
}

// Statements returns the DDL statements creating cfg, in execution order.
func Statements(d Dialect, cfg registry.CompanionStoreConfig) []string {
	return []string{CreateTable(d, cfg), CreateIndex(d, cfg)}
}

// Migration renders a migration script creating every store in cfgs.
func Migration(d Dialect, cfgs ...registry.CompanionStoreConfig) string {
	var stmts []string
	for _, cfg := range cfgs {
		stmts = append(stmts, Statements(d, cfg)...)
	}
	return render(stmts)
}

// Rollback renders a script dropping every store in cfgs, in reverse order.
func Rollback(d Dialect, cfgs ...registry.CompanionStoreConfig) string {
	stmts := make([]string, 0, len(cfgs))
	for i := len(cfgs) - 1; i >= 0; i-- {
		stmts = append(stmts, DropTable(d, cfgs[i]))
	}
	return render(stmts)
}

func render(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, ";\n\n") + ";\n"
}

// DynamoTable returns the CreateTableInput for a DynamoDB table backing cfg.
// Items are keyed by the foreign key (partition) and the name field (sort).
func DynamoTable(cfg registry.CompanionStoreConfig) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(cfg.Table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(cfg.ForeignKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(cfg.NameField), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(cfg.ForeignKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(cfg.NameField), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
