// Package coladmin exposes namespace statistics of a SQLite-backed store
// through a virtual table:
//
//	CREATE VIRTUAL TABLE colidx_admin USING colidx_admin(op);
//	SELECT op FROM colidx_admin WHERE op MATCH 'UserByCity';
//
// The single result row reads "rows:<n> entries:<m>": rows counts row keys,
// entries counts columns in a standard namespace and super columns in a
// super namespace.
package coladmin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/viant/colindex/column"
	"modernc.org/sqlite/vtab"
)

// Module serves tables from the database most recently passed to Register.
type Module struct{ db atomic.Pointer[sql.DB] }

type Table struct{ db *sql.DB }

type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

var (
	module       = &Module{}
	registerOnce sync.Once
	registerErr  error
)

// Register makes colidx_admin available to connections opened afterwards.
// The driver registers the module once per process; later calls point it at
// db and return the outcome of the first registration.
func Register(db *sql.DB) error {
	module.db.Store(db)
	registerOnce.Do(func() {
		registerErr = vtab.RegisterModule(db, "colidx_admin", module)
	})
	return registerErr
}

func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Connect(ctx, args)
}

func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("colidx_admin: need at least 3 args")
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	return &Table{db: m.db.Load()}, nil
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 1
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error          { return nil }
func (t *Table) Destroy() error             { return nil }

func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	namespace, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("colidx_admin: MATCH expects a namespace name as TEXT")
	}
	s, err := Stats(context.Background(), c.table.db, namespace)
	if err != nil {
		return err
	}
	c.rows = []string{s.String()}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("colidx_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

func (c *Cursor) Close() error {
	c.rows = nil
	c.pos = 0
	return nil
}

// NamespaceStats summarises one namespace.
type NamespaceStats struct {
	Namespace string
	Layout    column.Layout
	Rows      int64
	Entries   int64
}

func (s NamespaceStats) String() string {
	return fmt.Sprintf("rows:%d entries:%d", s.Rows, s.Entries)
}

// Stats counts the rows and entries of a provisioned namespace.
func Stats(ctx context.Context, db *sql.DB, namespace string) (NamespaceStats, error) {
	out := NamespaceStats{Namespace: namespace}
	var layout string
	err := db.QueryRowContext(ctx, `SELECT layout FROM `+column.NamespaceTable+` WHERE name = ?`, namespace).Scan(&layout)
	if errors.Is(err, sql.ErrNoRows) {
		return out, column.MissingNamespace("stats", namespace)
	}
	if err != nil {
		return out, err
	}
	out.Layout = column.Layout(layout)
	query := `SELECT COUNT(DISTINCT row_key), COUNT(*) FROM ` + column.ColumnTable + ` WHERE namespace = ?`
	if out.Layout == column.Super {
		query = `SELECT COUNT(DISTINCT row_key), COUNT(*) FROM (SELECT DISTINCT row_key, super_name FROM ` + column.SuperColumnTable + ` WHERE namespace = ?)`
	}
	if err := db.QueryRowContext(ctx, query, namespace).Scan(&out.Rows, &out.Entries); err != nil {
		return out, err
	}
	return out, nil
}
