package index

import (
	"context"
	"fmt"

	"github.com/viant/colindex/column"
	"github.com/viant/colindex/token"
)

// Entry is a raw range index entry.
type Entry struct {
	Token   string
	Primary string
}

// Range maps a composite key to every record written under it, ordered by
// write token.
type Range[R Indexable] struct {
	def    Definition
	store  Store
	loader Loader[R]
	opts   Options
}

// NewRange returns a range index over store. def.Unique must be false.
func NewRange[R Indexable](def Definition, store Store, loader Loader[R], opts ...Option) (*Range[R], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.Unique {
		return nil, fmt.Errorf("%w: %s is unique", ErrInvalidDefinition, def.Namespace())
	}
	return &Range[R]{def: def, store: store, loader: loader, opts: NewOptions(opts...)}, nil
}

func (r *Range[R]) Definition() Definition { return r.def }

// Cursor returns a cursor over the entries of values. Hits are re-checked
// against values so records mutated since they were indexed are dropped.
func (r *Range[R]) Cursor(opts FindOptions, values ...any) (*Cursor[R], error) {
	key, err := r.def.KeyFor(values...)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = r.opts.DefaultLimit
	}
	scan := Scan{
		Namespace:  r.def.Namespace(),
		Row:        key,
		Column:     r.def.Name(),
		StartAfter: opts.StartAfter,
		Limit:      limit,
		BatchSize:  r.opts.BatchSize,
		Reversed:   r.def.Reversed != opts.Reversed,
		Reclaim:    r.opts.HealStale && r.opts.Removal == RemovalTombstone,
		Tokens:     r.def.TokensNamespace(),
	}
	valid := func(rec R) bool { return r.def.Matches(rec, values) }
	return NewCursor[R](r.store, r.loader, scan, valid, r.opts.Logger), nil
}

// Find returns up to opts.Limit records indexed under values.
func (r *Range[R]) Find(ctx context.Context, opts FindOptions, values ...any) (Page[R], error) {
	c, err := r.Cursor(opts, values...)
	if err != nil {
		return Page[R]{}, err
	}
	return c.Fetch(ctx)
}

// Write appends an entry for rec under a fresh token. Earlier entries of
// the same record are kept. With RemovalTombstone the token is also recorded
// in the record's row of TokensNamespace so Remove can find it directly.
func (r *Range[R]) Write(ctx context.Context, rec R) error {
	tok, err := token.New()
	if err != nil {
		return err
	}
	ns := r.def.Namespace()
	key := r.def.Key(rec)
	if r.opts.Removal == RemovalTombstone {
		if err := r.store.Insert(ctx, r.def.TokensNamespace(), rec.Key(), column.Columns{tok: key}); err != nil {
			return err
		}
	}
	entry := column.SuperColumn{Name: tok, Columns: column.Columns{r.def.Name(): rec.Key()}}
	if err := r.store.InsertSuper(ctx, ns, key, entry); err != nil {
		return err
	}
	IndexWrites.WithLabelValues(ns, kindRange).Inc()
	return nil
}

// Remove deletes rec's entries under the composite key of its attributes,
// using the token pointers kept by Write. Entries written without a pointer
// are left to scans. With RemovalFilter it does nothing.
func (r *Range[R]) Remove(ctx context.Context, rec R) error {
	if r.opts.Removal == RemovalFilter {
		return nil
	}
	ns, tokens := r.def.Namespace(), r.def.TokensNamespace()
	key := r.def.Key(rec)
	pointers, found, err := r.store.GetRow(ctx, tokens, rec.Key())
	if err != nil || !found {
		return err
	}
	for tok, indexed := range pointers {
		if indexed != key {
			continue
		}
		if err := r.store.Remove(ctx, ns, key, column.ColumnPath{SuperColumn: tok}); err != nil {
			return err
		}
		if err := r.store.Remove(ctx, tokens, rec.Key(), column.ColumnPath{Column: tok}); err != nil {
			return err
		}
		IndexRemoves.WithLabelValues(ns, kindRange).Inc()
	}
	return nil
}

// Entries lists the raw entries under values in token order, stale ones
// included.
func (r *Range[R]) Entries(ctx context.Context, values ...any) ([]Entry, error) {
	key, err := r.def.KeyFor(values...)
	if err != nil {
		return nil, err
	}
	return r.entries(ctx, key)
}

func (r *Range[R]) entries(ctx context.Context, key string) ([]Entry, error) {
	batch := r.opts.BatchSize
	if batch <= 0 {
		batch = r.opts.DefaultLimit
	}
	var out []Entry
	after := ""
	for {
		scs, err := r.store.Slice(ctx, r.def.Namespace(), key, column.SliceRange{After: after, Count: batch})
		if err != nil {
			return nil, err
		}
		for _, sc := range scs {
			out = append(out, Entry{Token: sc.Name, Primary: sc.Columns[r.def.Name()]})
			after = sc.Name
		}
		if len(scs) < batch {
			return out, nil
		}
	}
}
