package column

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCatalogCacheSize bounds the number of namespace definitions a store
// keeps in memory.
const DefaultCatalogCacheSize = 1024

// SQLiteStore is a Store backed by a SQLite database. Namespaces are logical:
// every standard namespace shares ColumnTable and every super namespace
// shares SuperColumnTable, keyed by namespace name.
type SQLiteStore struct {
	db      *sql.DB
	catalog *lru.Cache[string, NamespaceDef]
}

// NewSQLiteStore creates a new SQLite-backed Store. It ensures the schema
// exists in the provided database. cacheSize <= 0 selects
// DefaultCatalogCacheSize.
func NewSQLiteStore(ctx context.Context, db *sql.DB, cacheSize int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("column: db is nil")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCatalogCacheSize
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("column: ensure schema: %w", err)
	}
	catalog, err := lru.New[string, NamespaceDef](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("column: catalog cache: %w", err)
	}
	return &SQLiteStore{db: db, catalog: catalog}, nil
}

// Provision registers namespace definitions in the catalog.
func (s *SQLiteStore) Provision(ctx context.Context, defs ...NamespaceDef) error {
	for _, def := range defs {
		existing, found, err := s.lookup(ctx, def.Name)
		if err != nil {
			return err
		}
		if err := CheckProvision(def, existing, found); err != nil {
			return err
		}
		if found {
			continue
		}
		if err := s.register(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// register inserts def unless a concurrent provisioner got there first, then
// checks def against whatever the catalog holds.
func (s *SQLiteStore) register(ctx context.Context, def NamespaceDef) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO `+NamespaceTable+`(name, layout, comparator, sub_comparator) VALUES(?, ?, ?, ?)
ON CONFLICT(name) DO NOTHING`,
		def.Name, string(def.Layout), string(def.Comparator), string(def.SubComparator))
	if err != nil {
		return unavailable("provision", def.Name, err)
	}
	stored, found, err := s.load(ctx, def.Name)
	if err != nil {
		return err
	}
	if !found {
		return unavailable("provision", def.Name, fmt.Errorf("namespace vanished after insert"))
	}
	if err := CheckProvision(def, stored, true); err != nil {
		return err
	}
	s.catalog.Add(def.Name, stored)
	return nil
}

// Namespaces lists every provisioned namespace ordered by name.
func (s *SQLiteStore) Namespaces(ctx context.Context) ([]NamespaceDef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, layout, comparator, sub_comparator FROM `+NamespaceTable+` ORDER BY name`)
	if err != nil {
		return nil, unavailable("namespaces", "", err)
	}
	defer rows.Close()

	var out []NamespaceDef
	for rows.Next() {
		var d NamespaceDef
		var layout, cmp, sub string
		if err := rows.Scan(&d.Name, &layout, &cmp, &sub); err != nil {
			return nil, unavailable("namespaces", "", err)
		}
		d.Layout, d.Comparator, d.SubComparator = Layout(layout), Comparator(cmp), Comparator(sub)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("namespaces", "", err)
	}
	return out, nil
}

// Get reads a single column value.
func (s *SQLiteStore) Get(ctx context.Context, namespace, row string, path ColumnPath) (string, bool, error) {
	def, err := s.resolve(ctx, "get", namespace, row)
	if err != nil {
		return "", false, err
	}
	if err := CheckGetPath(def, path); err != nil {
		return "", false, err
	}
	var value string
	if def.Layout == Standard {
		err = s.db.QueryRowContext(ctx, `SELECT value FROM `+ColumnTable+` WHERE namespace = ? AND row_key = ? AND name = ?`,
			namespace, row, path.Column).Scan(&value)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT value FROM `+SuperColumnTable+` WHERE namespace = ? AND row_key = ? AND super_name = ? AND name = ?`,
			namespace, row, path.SuperColumn, path.Column).Scan(&value)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", namespace, err)
	}
	return value, true, nil
}

// GetRow reads every column of a standard-layout row.
func (s *SQLiteStore) GetRow(ctx context.Context, namespace, row string) (Columns, bool, error) {
	def, err := s.resolve(ctx, "get_row", namespace, row)
	if err != nil {
		return nil, false, err
	}
	if err := CheckLayout("get_row", def, Standard); err != nil {
		return nil, false, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM `+ColumnTable+` WHERE namespace = ? AND row_key = ?`, namespace, row)
	if err != nil {
		return nil, false, unavailable("get_row", namespace, err)
	}
	defer rows.Close()

	cols := Columns{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, false, unavailable("get_row", namespace, err)
		}
		cols[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, false, unavailable("get_row", namespace, err)
	}
	if len(cols) == 0 {
		return nil, false, nil
	}
	return cols, true, nil
}

// Insert upserts columns into a standard-layout row in one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, namespace, row string, cols Columns) error {
	def, err := s.resolve(ctx, "insert", namespace, row)
	if err != nil {
		return err
	}
	if err := CheckLayout("insert", def, Standard); err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	return s.inTx(ctx, "insert", namespace, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+ColumnTable+`(namespace, row_key, name, value) VALUES(?, ?, ?, ?)
ON CONFLICT(namespace, row_key, name) DO UPDATE SET value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for name, value := range cols {
			if _, err := stmt.ExecContext(ctx, namespace, row, name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertSuper upserts super columns into a super-layout row in one
// transaction.
func (s *SQLiteStore) InsertSuper(ctx context.Context, namespace, row string, supers ...SuperColumn) error {
	def, err := s.resolve(ctx, "insert_super", namespace, row)
	if err != nil {
		return err
	}
	if err := CheckLayout("insert_super", def, Super); err != nil {
		return err
	}
	if len(supers) == 0 {
		return nil
	}
	return s.inTx(ctx, "insert_super", namespace, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+SuperColumnTable+`(namespace, row_key, super_name, name, value) VALUES(?, ?, ?, ?, ?)
ON CONFLICT(namespace, row_key, super_name, name) DO UPDATE SET value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, sc := range supers {
			if sc.Name == "" {
				return NewError(CodeInvalidArgument, "insert_super", namespace, errors.New("empty super column name"))
			}
			for name, value := range sc.Columns {
				if _, err := stmt.ExecContext(ctx, namespace, row, sc.Name, name, value); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Slice returns super columns of a row ordered by name.
func (s *SQLiteStore) Slice(ctx context.Context, namespace, row string, r SliceRange) ([]SuperColumn, error) {
	def, err := s.resolve(ctx, "slice", namespace, row)
	if err != nil {
		return nil, err
	}
	if err := CheckLayout("slice", def, Super); err != nil {
		return nil, err
	}

	order, cmp := "ASC", ">"
	if r.Reversed {
		order, cmp = "DESC", "<"
	}
	limit := r.Count
	if limit <= 0 {
		limit = -1
	}
	inner := `SELECT DISTINCT super_name FROM ` + SuperColumnTable + ` WHERE namespace = ? AND row_key = ?`
	args := []any{namespace, row, namespace, row}
	if r.After != "" {
		inner += ` AND super_name ` + cmp + ` ?`
		args = append(args, r.After)
	}
	inner += ` ORDER BY super_name ` + order + ` LIMIT ?`
	args = append(args, limit)

	query := `SELECT super_name, name, value FROM ` + SuperColumnTable + `
WHERE namespace = ? AND row_key = ? AND super_name IN (` + inner + `)
ORDER BY super_name ` + order + `, name ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("slice", namespace, err)
	}
	defer rows.Close()

	var out []SuperColumn
	for rows.Next() {
		var superName, name, value string
		if err := rows.Scan(&superName, &name, &value); err != nil {
			return nil, unavailable("slice", namespace, err)
		}
		if n := len(out); n == 0 || out[n-1].Name != superName {
			out = append(out, SuperColumn{Name: superName, Columns: Columns{}})
		}
		out[len(out)-1].Columns[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("slice", namespace, err)
	}
	return out, nil
}

// Remove deletes the data addressed by path.
func (s *SQLiteStore) Remove(ctx context.Context, namespace, row string, path ColumnPath) error {
	def, err := s.resolve(ctx, "remove", namespace, row)
	if err != nil {
		return err
	}
	if err := CheckRemovePath(def, path); err != nil {
		return err
	}
	var query string
	args := []any{namespace, row}
	switch {
	case def.Layout == Standard && path.IsRow():
		query = `DELETE FROM ` + ColumnTable + ` WHERE namespace = ? AND row_key = ?`
	case def.Layout == Standard:
		query = `DELETE FROM ` + ColumnTable + ` WHERE namespace = ? AND row_key = ? AND name = ?`
		args = append(args, path.Column)
	case path.IsRow():
		query = `DELETE FROM ` + SuperColumnTable + ` WHERE namespace = ? AND row_key = ?`
	case path.Column == "":
		query = `DELETE FROM ` + SuperColumnTable + ` WHERE namespace = ? AND row_key = ? AND super_name = ?`
		args = append(args, path.SuperColumn)
	default:
		query = `DELETE FROM ` + SuperColumnTable + ` WHERE namespace = ? AND row_key = ? AND super_name = ? AND name = ?`
		args = append(args, path.SuperColumn, path.Column)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return unavailable("remove", namespace, err)
	}
	return nil
}

// Close is a no-op: the *sql.DB is owned by the caller.
func (s *SQLiteStore) Close() error { return nil }

func (s *SQLiteStore) resolve(ctx context.Context, op, namespace, row string) (NamespaceDef, error) {
	if err := CheckRow(op, namespace, row); err != nil {
		return NamespaceDef{}, err
	}
	def, found, err := s.lookup(ctx, namespace)
	if err != nil {
		return NamespaceDef{}, err
	}
	if !found {
		return NamespaceDef{}, MissingNamespace(op, namespace)
	}
	return def, nil
}

func (s *SQLiteStore) lookup(ctx context.Context, namespace string) (NamespaceDef, bool, error) {
	if def, ok := s.catalog.Get(namespace); ok {
		return def, true, nil
	}
	def, found, err := s.load(ctx, namespace)
	if found {
		s.catalog.Add(namespace, def)
	}
	return def, found, err
}

// load reads a catalog entry from the database, bypassing the cache.
func (s *SQLiteStore) load(ctx context.Context, namespace string) (NamespaceDef, bool, error) {
	var layout, cmp, sub string
	err := s.db.QueryRowContext(ctx, `SELECT layout, comparator, sub_comparator FROM `+NamespaceTable+` WHERE name = ?`, namespace).
		Scan(&layout, &cmp, &sub)
	if errors.Is(err, sql.ErrNoRows) {
		return NamespaceDef{}, false, nil
	}
	if err != nil {
		return NamespaceDef{}, false, unavailable("lookup", namespace, err)
	}
	return NamespaceDef{Name: namespace, Layout: Layout(layout), Comparator: Comparator(cmp), SubComparator: Comparator(sub)}, true, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, op, namespace string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(op, namespace, err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		if CodeOf(err) != CodeUnknown {
			return err
		}
		return unavailable(op, namespace, err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable(op, namespace, err)
	}
	return nil
}

func unavailable(op, namespace string, err error) error {
	return NewError(CodeUnavailable, op, namespace, err)
}

// Ensure SQLiteStore satisfies the ProvisioningStore interface.
var _ ProvisioningStore = (*SQLiteStore)(nil)
