package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/column/memstore"
)

type doc struct {
	id    string
	attrs map[string]any
}

func (d doc) Key() string { return d.id }

func (d doc) Attribute(name string) (any, bool) {
	v, ok := d.attrs[name]
	return v, ok
}

func newDoc(id string, kv ...any) doc {
	d := doc{id: id, attrs: map[string]any{}}
	for i := 0; i+1 < len(kv); i += 2 {
		d.attrs[kv[i].(string)] = kv[i+1]
	}
	return d
}

// docs plays the primary store.
type docs struct {
	mu   sync.Mutex
	m    map[string]doc
	fail error
}

func newDocs() *docs { return &docs{m: map[string]doc{}} }

func (d *docs) put(recs ...doc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range recs {
		d.m[r.id] = r
	}
}

func (d *docs) drop(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, id)
}

func (d *docs) Load(_ context.Context, key string) (doc, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return doc{}, false, d.fail
	}
	r, ok := d.m[key]
	return r, ok, nil
}

func provision(t *testing.T, defs ...Definition) *memstore.Store {
	t.Helper()
	s := memstore.New()
	for _, def := range defs {
		require.NoError(t, s.Provision(context.Background(), def.Namespaces()...))
	}
	return s
}

func ids(recs []doc) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.id
	}
	return out
}

func seq(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// failingStore fails writes to one namespace.
type failingStore struct {
	*memstore.Store
	namespace string
}

var errInjected = errors.New("injected failure")

func (f *failingStore) Insert(ctx context.Context, ns, row string, cols column.Columns) error {
	if ns == f.namespace {
		return errInjected
	}
	return f.Store.Insert(ctx, ns, row, cols)
}

func (f *failingStore) InsertSuper(ctx context.Context, ns, row string, supers ...column.SuperColumn) error {
	if ns == f.namespace {
		return errInjected
	}
	return f.Store.InsertSuper(ctx, ns, row, supers...)
}
