package index

import (
	"context"
	"fmt"

	"github.com/viant/colindex/column"
)

// UniqueColumn holds the primary key in a unique index row.
const UniqueColumn = "key"

// Unique maps a composite key to a single primary key. Writes are last
// writer wins; uniqueness is not enforced by the store.
type Unique[R Indexable] struct {
	def    Definition
	store  Store
	loader Loader[R]
	opts   Options
}

// NewUnique returns a unique index over store. def.Unique must be set.
func NewUnique[R Indexable](def Definition, store Store, loader Loader[R], opts ...Option) (*Unique[R], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if !def.Unique {
		return nil, fmt.Errorf("%w: %s is not unique", ErrInvalidDefinition, def.Namespace())
	}
	return &Unique[R]{def: def, store: store, loader: loader, opts: NewOptions(opts...)}, nil
}

func (u *Unique[R]) Definition() Definition { return u.def }

// Find returns the record mapped to values. A mapping whose record no
// longer exists is deleted (when HealStale is set) and reported as not found.
func (u *Unique[R]) Find(ctx context.Context, values ...any) (R, bool, error) {
	var zero R
	key, err := u.def.KeyFor(values...)
	if err != nil {
		return zero, false, err
	}
	ns := u.def.Namespace()
	primary, found, err := u.store.Get(ctx, ns, key, column.ColumnPath{Column: UniqueColumn})
	if err != nil || !found {
		return zero, false, err
	}
	rec, found, err := u.loader.Load(ctx, primary)
	if err != nil {
		return zero, false, err
	}
	if found {
		return rec, true, nil
	}

	if !u.opts.HealStale {
		StaleEntries.WithLabelValues(ns, actionSkipped).Inc()
		return zero, false, nil
	}
	if err := u.store.Remove(ctx, ns, key, column.ColumnPath{}); err != nil {
		return zero, false, err
	}
	StaleEntries.WithLabelValues(ns, actionHealed).Inc()
	u.opts.Logger.InfoCtx(ctx, "healed stale unique entry", "namespace", ns, "key", key, "primary", primary)
	return zero, false, nil
}

// Write maps the composite key of rec to its primary key.
func (u *Unique[R]) Write(ctx context.Context, rec R) error {
	ns := u.def.Namespace()
	if err := u.store.Insert(ctx, ns, u.def.Key(rec), column.Columns{UniqueColumn: rec.Key()}); err != nil {
		return err
	}
	IndexWrites.WithLabelValues(ns, kindUnique).Inc()
	return nil
}

// Remove deletes the mapping for rec's attributes if it still points at
// rec. A mapping taken over by another record is left alone.
func (u *Unique[R]) Remove(ctx context.Context, rec R) error {
	ns := u.def.Namespace()
	key := u.def.Key(rec)
	primary, found, err := u.store.Get(ctx, ns, key, column.ColumnPath{Column: UniqueColumn})
	if err != nil || !found || primary != rec.Key() {
		return err
	}
	if err := u.store.Remove(ctx, ns, key, column.ColumnPath{}); err != nil {
		return err
	}
	IndexRemoves.WithLabelValues(ns, kindUnique).Inc()
	return nil
}
