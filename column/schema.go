package column

import (
	"context"
	"database/sql"
)

const (
	// NamespaceTable is the catalog of provisioned namespaces.
	NamespaceTable = "colidx_namespaces"
	// ColumnTable holds standard-layout rows, one SQL row per column.
	ColumnTable = "colidx_columns"
	// SuperColumnTable holds super-layout rows, one SQL row per sub-column.
	SuperColumnTable = "colidx_super_columns"
)

// NamespaceTableDDL returns the DDL of the namespace catalog.
func NamespaceTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + NamespaceTable + ` (
    name           TEXT PRIMARY KEY,
    layout         TEXT NOT NULL,
    comparator     TEXT NOT NULL,
    sub_comparator TEXT NOT NULL DEFAULT ''
);`
}

// ColumnTableDDL returns the DDL of the standard-layout table. Column names
// use the default BINARY collation, which is the UTF8 comparator.
func ColumnTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + ColumnTable + ` (
    namespace TEXT NOT NULL,
    row_key   TEXT NOT NULL,
    name      TEXT NOT NULL,
    value     TEXT NOT NULL,
    PRIMARY KEY(namespace, row_key, name)
) WITHOUT ROWID;`
}

// SuperColumnTableDDL returns the DDL of the super-layout table. Canonical
// time tokens sort chronologically under BINARY collation, so super_name
// needs no custom collation for the TimeToken comparator.
func SuperColumnTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + SuperColumnTable + ` (
    namespace  TEXT NOT NULL,
    row_key    TEXT NOT NULL,
    super_name TEXT NOT NULL,
    name       TEXT NOT NULL,
    value      TEXT NOT NULL,
    PRIMARY KEY(namespace, row_key, super_name, name)
) WITHOUT ROWID;`
}

// EnsureSchema creates the catalog and data tables in the provided database
// if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{NamespaceTableDDL(), ColumnTableDDL(), SuperColumnTableDDL()} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
