// Package pebblestore implements column.Store on a Pebble LSM. Rows live
// under a namespace-hashed key prefix and super columns are encoded so that
// key order equals super column name order, which lets Slice run as a
// bounded iterator scan.
package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/colindex/column"
)

// DefaultCatalogCacheSize bounds the number of namespace definitions kept in
// memory.
const DefaultCatalogCacheSize = column.DefaultCatalogCacheSize

const memDir = "colindex"

// Store is a column.ProvisioningStore backed by Pebble.
type Store struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
	catalog   *lru.Cache[string, column.NamespaceDef]
	provision sync.Mutex
}

// Open opens (or creates) a Pebble database at path. An empty path opens an
// in-memory instance. cacheSize <= 0 selects DefaultCatalogCacheSize.
func Open(path string, cacheSize int) (*Store, error) {
	opts := &pebble.Options{}
	writeOpts := pebble.Sync
	dir := path
	if path == "" {
		opts.FS = vfs.NewMem()
		writeOpts = pebble.NoSync
		dir = memDir
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %q: %w", path, err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCatalogCacheSize
	}
	catalog, err := lru.New[string, column.NamespaceDef](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pebblestore: catalog cache: %w", err)
	}
	return &Store{db: db, writeOpts: writeOpts, catalog: catalog}, nil
}

// Provision registers namespace definitions in the catalog.
func (s *Store) Provision(_ context.Context, defs ...column.NamespaceDef) error {
	s.provision.Lock()
	defer s.provision.Unlock()
	for _, def := range defs {
		existing, found, err := s.lookup(def.Name)
		if err != nil {
			return err
		}
		if err := column.CheckProvision(def, existing, found); err != nil {
			return err
		}
		if found {
			continue
		}
		if err := s.db.Set(catalogKey(def.Name), encodeDef(def), s.writeOpts); err != nil {
			return unavailable("provision", def.Name, err)
		}
		s.catalog.Add(def.Name, def)
	}
	return nil
}

// Namespaces lists every provisioned namespace ordered by name.
func (s *Store) Namespaces(_ context.Context) ([]column.NamespaceDef, error) {
	prefix := []byte{catalogPrefix}
	it := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	var out []column.NamespaceDef
	for it.First(); it.Valid(); it.Next() {
		def, err := decodeDef(string(it.Key()[1:]), it.Value())
		if err != nil {
			_ = it.Close()
			return nil, unavailable("namespaces", "", err)
		}
		out = append(out, def)
	}
	if err := it.Close(); err != nil {
		return nil, unavailable("namespaces", "", err)
	}
	return out, nil
}

// Get reads a single column value.
func (s *Store) Get(_ context.Context, namespace, row string, path column.ColumnPath) (string, bool, error) {
	def, err := s.resolve("get", namespace, row)
	if err != nil {
		return "", false, err
	}
	if err := column.CheckGetPath(def, path); err != nil {
		return "", false, err
	}
	prefix := rowPrefix(namespace, row)
	if def.Layout == column.Super {
		prefix = superPrefix(prefix, path.SuperColumn)
	}
	value, closer, err := s.db.Get(columnKey(prefix, path.Column))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", namespace, err)
	}
	out := string(value)
	_ = closer.Close()
	return out, true, nil
}

// GetRow reads every column of a standard-layout row.
func (s *Store) GetRow(_ context.Context, namespace, row string) (column.Columns, bool, error) {
	def, err := s.resolve("get_row", namespace, row)
	if err != nil {
		return nil, false, err
	}
	if err := column.CheckLayout("get_row", def, column.Standard); err != nil {
		return nil, false, err
	}
	prefix := rowPrefix(namespace, row)
	it := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	cols := column.Columns{}
	for it.First(); it.Valid(); it.Next() {
		cols[string(it.Key()[len(prefix):])] = string(it.Value())
	}
	if err := it.Close(); err != nil {
		return nil, false, unavailable("get_row", namespace, err)
	}
	if len(cols) == 0 {
		return nil, false, nil
	}
	return cols, true, nil
}

// Insert upserts columns into a standard-layout row in one batch.
func (s *Store) Insert(_ context.Context, namespace, row string, cols column.Columns) error {
	def, err := s.resolve("insert", namespace, row)
	if err != nil {
		return err
	}
	if err := column.CheckLayout("insert", def, column.Standard); err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	prefix := rowPrefix(namespace, row)
	batch := s.db.NewBatch()
	defer batch.Close()
	for name, value := range cols {
		if err := batch.Set(columnKey(prefix, name), []byte(value), nil); err != nil {
			return unavailable("insert", namespace, err)
		}
	}
	if err := batch.Commit(s.writeOpts); err != nil {
		return unavailable("insert", namespace, err)
	}
	return nil
}

// InsertSuper upserts super columns into a super-layout row in one batch.
func (s *Store) InsertSuper(_ context.Context, namespace, row string, supers ...column.SuperColumn) error {
	def, err := s.resolve("insert_super", namespace, row)
	if err != nil {
		return err
	}
	if err := column.CheckLayout("insert_super", def, column.Super); err != nil {
		return err
	}
	if len(supers) == 0 {
		return nil
	}
	prefix := rowPrefix(namespace, row)
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, sc := range supers {
		if sc.Name == "" {
			return column.NewError(column.CodeInvalidArgument, "insert_super", namespace, errors.New("empty super column name"))
		}
		sp := superPrefix(prefix, sc.Name)
		for name, value := range sc.Columns {
			if err := batch.Set(columnKey(sp, name), []byte(value), nil); err != nil {
				return unavailable("insert_super", namespace, err)
			}
		}
	}
	if err := batch.Commit(s.writeOpts); err != nil {
		return unavailable("insert_super", namespace, err)
	}
	return nil
}

// Slice returns super columns of a row ordered by name.
func (s *Store) Slice(_ context.Context, namespace, row string, r column.SliceRange) ([]column.SuperColumn, error) {
	def, err := s.resolve("slice", namespace, row)
	if err != nil {
		return nil, err
	}
	if err := column.CheckLayout("slice", def, column.Super); err != nil {
		return nil, err
	}
	prefix := rowPrefix(namespace, row)
	opts := &pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)}
	if r.After != "" {
		after := superPrefix(prefix, r.After)
		if r.Reversed {
			opts.UpperBound = after
		} else {
			opts.LowerBound = upperBound(after)
		}
	}

	it := s.db.NewIter(opts)
	var out []column.SuperColumn
	step := it.Next
	valid := it.First()
	if r.Reversed {
		step = it.Prev
		valid = it.Last()
	}
	for ; valid; valid = step() {
		name, rest, err := splitEscaped(it.Key()[len(prefix):])
		if err != nil {
			_ = it.Close()
			return nil, unavailable("slice", namespace, err)
		}
		if n := len(out); n == 0 || out[n-1].Name != name {
			if r.Count > 0 && n == r.Count {
				break
			}
			out = append(out, column.SuperColumn{Name: name, Columns: column.Columns{}})
		}
		out[len(out)-1].Columns[string(rest)] = string(it.Value())
	}
	if err := it.Close(); err != nil {
		return nil, unavailable("slice", namespace, err)
	}
	return out, nil
}

// Remove deletes the data addressed by path.
func (s *Store) Remove(_ context.Context, namespace, row string, path column.ColumnPath) error {
	def, err := s.resolve("remove", namespace, row)
	if err != nil {
		return err
	}
	if err := column.CheckRemovePath(def, path); err != nil {
		return err
	}
	prefix := rowPrefix(namespace, row)
	switch {
	case path.IsRow():
		err = s.db.DeleteRange(prefix, upperBound(prefix), s.writeOpts)
	case def.Layout == column.Standard:
		err = s.db.Delete(columnKey(prefix, path.Column), s.writeOpts)
	case path.Column == "":
		sp := superPrefix(prefix, path.SuperColumn)
		err = s.db.DeleteRange(sp, upperBound(sp), s.writeOpts)
	default:
		err = s.db.Delete(columnKey(superPrefix(prefix, path.SuperColumn), path.Column), s.writeOpts)
	}
	if err != nil {
		return unavailable("remove", namespace, err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) resolve(op, namespace, row string) (column.NamespaceDef, error) {
	if err := column.CheckRow(op, namespace, row); err != nil {
		return column.NamespaceDef{}, err
	}
	def, found, err := s.lookup(namespace)
	if err != nil {
		return column.NamespaceDef{}, err
	}
	if !found {
		return column.NamespaceDef{}, column.MissingNamespace(op, namespace)
	}
	return def, nil
}

func (s *Store) lookup(namespace string) (column.NamespaceDef, bool, error) {
	if def, ok := s.catalog.Get(namespace); ok {
		return def, true, nil
	}
	value, closer, err := s.db.Get(catalogKey(namespace))
	if errors.Is(err, pebble.ErrNotFound) {
		return column.NamespaceDef{}, false, nil
	}
	if err != nil {
		return column.NamespaceDef{}, false, unavailable("lookup", namespace, err)
	}
	def, err := decodeDef(namespace, value)
	_ = closer.Close()
	if err != nil {
		return column.NamespaceDef{}, false, unavailable("lookup", namespace, err)
	}
	s.catalog.Add(namespace, def)
	return def, true, nil
}

func encodeDef(def column.NamespaceDef) []byte {
	return []byte(strings.Join([]string{string(def.Layout), string(def.Comparator), string(def.SubComparator)}, "\x00"))
}

func decodeDef(name string, value []byte) (column.NamespaceDef, error) {
	parts := strings.Split(string(value), "\x00")
	if len(parts) != 3 {
		return column.NamespaceDef{}, fmt.Errorf("malformed catalog entry for %q", name)
	}
	return column.NamespaceDef{
		Name:          name,
		Layout:        column.Layout(parts[0]),
		Comparator:    column.Comparator(parts[1]),
		SubComparator: column.Comparator(parts[2]),
	}, nil
}

func unavailable(op, namespace string, err error) error {
	return column.NewError(column.CodeUnavailable, op, namespace, err)
}

var _ column.ProvisioningStore = (*Store)(nil)
