// Package memstore implements column.Store in process memory. Super-column
// rows are kept in B-trees ordered by super column name, so slices come out
// in comparator order without sorting. It is intended for tests and for
// embedding the index engine where durability is not required.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/google/btree"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viant/colindex/column"
)

const degree = 32

type superItem struct {
	name string
	cols column.Columns
}

func lessSuper(a, b superItem) bool { return a.name < b.name }

type namespace struct {
	def column.NamespaceDef

	mu     sync.RWMutex
	flat   map[string]column.Columns
	supers map[string]*btree.BTreeG[superItem]
}

// Store is an in-memory column.ProvisioningStore.
type Store struct {
	namespaces *xsync.MapOf[string, *namespace]
}

// New returns an empty store with no provisioned namespaces.
func New() *Store {
	return &Store{namespaces: xsync.NewMapOf[string, *namespace]()}
}

// Provision registers namespace definitions.
func (s *Store) Provision(_ context.Context, defs ...column.NamespaceDef) error {
	for _, def := range defs {
		var existing column.NamespaceDef
		ns, found := s.namespaces.Load(def.Name)
		if found {
			existing = ns.def
		}
		if err := column.CheckProvision(def, existing, found); err != nil {
			return err
		}
		s.namespaces.LoadOrStore(def.Name, &namespace{
			def:    def,
			flat:   map[string]column.Columns{},
			supers: map[string]*btree.BTreeG[superItem]{},
		})
	}
	return nil
}

// Namespaces lists every provisioned namespace ordered by name.
func (s *Store) Namespaces(_ context.Context) ([]column.NamespaceDef, error) {
	var out []column.NamespaceDef
	s.namespaces.Range(func(_ string, ns *namespace) bool {
		out = append(out, ns.def)
		return true
	})
	column.SortNamespaces(out)
	return out, nil
}

// Get reads a single column value.
func (s *Store) Get(_ context.Context, name, row string, path column.ColumnPath) (string, bool, error) {
	ns, err := s.resolve("get", name, row)
	if err != nil {
		return "", false, err
	}
	if err := column.CheckGetPath(ns.def, path); err != nil {
		return "", false, err
	}
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	if ns.def.Layout == column.Standard {
		v, ok := ns.flat[row][path.Column]
		return v, ok, nil
	}
	tree := ns.supers[row]
	if tree == nil {
		return "", false, nil
	}
	item, ok := tree.Get(superItem{name: path.SuperColumn})
	if !ok {
		return "", false, nil
	}
	v, ok := item.cols[path.Column]
	return v, ok, nil
}

// GetRow reads every column of a standard-layout row.
func (s *Store) GetRow(_ context.Context, name, row string) (column.Columns, bool, error) {
	ns, err := s.resolve("get_row", name, row)
	if err != nil {
		return nil, false, err
	}
	if err := column.CheckLayout("get_row", ns.def, column.Standard); err != nil {
		return nil, false, err
	}
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	cols, ok := ns.flat[row]
	if !ok {
		return nil, false, nil
	}
	return clone(cols), true, nil
}

// Insert upserts columns into a standard-layout row.
func (s *Store) Insert(_ context.Context, name, row string, cols column.Columns) error {
	ns, err := s.resolve("insert", name, row)
	if err != nil {
		return err
	}
	if err := column.CheckLayout("insert", ns.def, column.Standard); err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	existing := ns.flat[row]
	if existing == nil {
		existing = column.Columns{}
		ns.flat[row] = existing
	}
	for k, v := range cols {
		existing[k] = v
	}
	return nil
}

// InsertSuper upserts super columns into a super-layout row.
func (s *Store) InsertSuper(_ context.Context, name, row string, supers ...column.SuperColumn) error {
	ns, err := s.resolve("insert_super", name, row)
	if err != nil {
		return err
	}
	if err := column.CheckLayout("insert_super", ns.def, column.Super); err != nil {
		return err
	}
	for _, sc := range supers {
		if sc.Name == "" {
			return column.NewError(column.CodeInvalidArgument, "insert_super", name, errors.New("empty super column name"))
		}
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	tree := ns.supers[row]
	if tree == nil {
		tree = btree.NewG[superItem](degree, lessSuper)
		ns.supers[row] = tree
	}
	for _, sc := range supers {
		if len(sc.Columns) == 0 {
			continue
		}
		item, ok := tree.Get(superItem{name: sc.Name})
		if !ok {
			item = superItem{name: sc.Name, cols: column.Columns{}}
		}
		for k, v := range sc.Columns {
			item.cols[k] = v
		}
		tree.ReplaceOrInsert(item)
	}
	if tree.Len() == 0 {
		delete(ns.supers, row)
	}
	return nil
}

// Slice returns super columns of a row ordered by name.
func (s *Store) Slice(_ context.Context, name, row string, r column.SliceRange) ([]column.SuperColumn, error) {
	ns, err := s.resolve("slice", name, row)
	if err != nil {
		return nil, err
	}
	if err := column.CheckLayout("slice", ns.def, column.Super); err != nil {
		return nil, err
	}
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	tree := ns.supers[row]
	if tree == nil {
		return nil, nil
	}

	var out []column.SuperColumn
	visit := func(item superItem) bool {
		if r.After != "" && item.name == r.After {
			return true
		}
		out = append(out, column.SuperColumn{Name: item.name, Columns: clone(item.cols)})
		return r.Count <= 0 || len(out) < r.Count
	}
	switch {
	case r.Reversed && r.After != "":
		tree.DescendLessOrEqual(superItem{name: r.After}, visit)
	case r.Reversed:
		tree.Descend(visit)
	case r.After != "":
		tree.AscendGreaterOrEqual(superItem{name: r.After}, visit)
	default:
		tree.Ascend(visit)
	}
	return out, nil
}

// Remove deletes the data addressed by path.
func (s *Store) Remove(_ context.Context, name, row string, path column.ColumnPath) error {
	ns, err := s.resolve("remove", name, row)
	if err != nil {
		return err
	}
	if err := column.CheckRemovePath(ns.def, path); err != nil {
		return err
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if ns.def.Layout == column.Standard {
		if path.IsRow() {
			delete(ns.flat, row)
			return nil
		}
		if cols := ns.flat[row]; cols != nil {
			delete(cols, path.Column)
			if len(cols) == 0 {
				delete(ns.flat, row)
			}
		}
		return nil
	}

	tree := ns.supers[row]
	switch {
	case tree == nil:
	case path.IsRow():
		delete(ns.supers, row)
	case path.Column == "":
		tree.Delete(superItem{name: path.SuperColumn})
	default:
		if item, ok := tree.Get(superItem{name: path.SuperColumn}); ok {
			delete(item.cols, path.Column)
			if len(item.cols) == 0 {
				tree.Delete(item)
			}
		}
	}
	if tree != nil && tree.Len() == 0 {
		delete(ns.supers, row)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) resolve(op, name, row string) (*namespace, error) {
	if err := column.CheckRow(op, name, row); err != nil {
		return nil, err
	}
	ns, ok := s.namespaces.Load(name)
	if !ok {
		return nil, column.MissingNamespace(op, name)
	}
	return ns, nil
}

func clone(cols column.Columns) column.Columns {
	out := make(column.Columns, len(cols))
	for k, v := range cols {
		out[k] = v
	}
	return out
}

var _ column.ProvisioningStore = (*Store)(nil)
