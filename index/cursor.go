package index

import (
	"context"

	"github.com/viant/colindex/column"
	"github.com/viant/colindex/internal/logging"
)

// Scan parameterises one cursor invocation over the entries of a single
// composite key.
type Scan struct {
	Namespace string
	Row       string
	// Column is the sub-column holding the primary key.
	Column     string
	StartAfter string
	Limit      int
	BatchSize  int
	Reversed   bool
	// Reclaim deletes entries whose record no longer exists.
	Reclaim bool
	// Tokens, when set, is the namespace of per-record token pointers that
	// reclaimed entries are also dropped from.
	Tokens string
}

// Cursor pages through range entries in token order, hydrating each entry
// and dropping those that fail the validity predicate. It keeps fetching
// batches until Limit hits are collected or the entries run out, so stale
// entries never shrink a page.
type Cursor[R Indexable] struct {
	store  Store
	loader Loader[R]
	scan   Scan
	valid  func(R) bool
	logger logging.Logger
}

// NewCursor returns a cursor. A nil valid accepts every hydrated record.
func NewCursor[R Indexable](store Store, loader Loader[R], scan Scan, valid func(R) bool, logger logging.Logger) *Cursor[R] {
	if scan.Limit <= 0 {
		scan.Limit = DefaultLimit
	}
	if scan.BatchSize <= 0 {
		scan.BatchSize = scan.Limit
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Cursor[R]{store: store, loader: loader, scan: scan, valid: valid, logger: logger}
}

// Each streams hits to fn in scan order. It stops after Limit hits, when
// the entries are exhausted, or when fn returns false.
func (c *Cursor[R]) Each(ctx context.Context, fn func(Hit[R]) bool) error {
	after := c.scan.StartAfter
	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := c.store.Slice(ctx, c.scan.Namespace, c.scan.Row, column.SliceRange{
			After:    after,
			Reversed: c.scan.Reversed,
			Count:    c.scan.BatchSize,
		})
		if err != nil {
			return err
		}
		CursorBatches.WithLabelValues(c.scan.Namespace).Inc()
		for _, sc := range batch {
			after = sc.Name
			rec, ok, err := c.resolve(ctx, sc)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			delivered++
			if !fn(Hit[R]{Token: sc.Name, Record: rec}) || delivered == c.scan.Limit {
				return nil
			}
		}
		if len(batch) < c.scan.BatchSize {
			return nil
		}
	}
}

// Fetch collects the hits of one scan into a page.
func (c *Cursor[R]) Fetch(ctx context.Context) (Page[R], error) {
	var page Page[R]
	err := c.Each(ctx, func(h Hit[R]) bool {
		page.Hits = append(page.Hits, h)
		return true
	})
	if err != nil {
		return Page[R]{}, err
	}
	if n := len(page.Hits); n > 0 {
		page.Next = page.Hits[n-1].Token
	}
	return page, nil
}

func (c *Cursor[R]) resolve(ctx context.Context, sc column.SuperColumn) (R, bool, error) {
	var zero R
	ns := c.scan.Namespace
	primary := sc.Columns[c.scan.Column]
	if primary == "" {
		CursorRejected.WithLabelValues(ns, reasonMalformed).Inc()
		return zero, false, nil
	}
	rec, found, err := c.loader.Load(ctx, primary)
	if err != nil {
		return zero, false, err
	}
	if !found {
		CursorRejected.WithLabelValues(ns, reasonMissing).Inc()
		return zero, false, c.stale(ctx, sc.Name, primary)
	}
	if c.valid != nil && !c.valid(rec) {
		CursorRejected.WithLabelValues(ns, reasonMismatch).Inc()
		return zero, false, nil
	}
	return rec, true, nil
}

func (c *Cursor[R]) stale(ctx context.Context, tok, primary string) error {
	ns := c.scan.Namespace
	if !c.scan.Reclaim {
		StaleEntries.WithLabelValues(ns, actionSkipped).Inc()
		c.logger.DebugCtx(ctx, "skipped stale range entry", "namespace", ns, "token", tok, "primary", primary)
		return nil
	}
	if err := c.store.Remove(ctx, ns, c.scan.Row, column.ColumnPath{SuperColumn: tok}); err != nil {
		return err
	}
	if c.scan.Tokens != "" {
		if err := c.store.Remove(ctx, c.scan.Tokens, primary, column.ColumnPath{Column: tok}); err != nil {
			return err
		}
	}
	StaleEntries.WithLabelValues(ns, actionReclaimed).Inc()
	c.logger.DebugCtx(ctx, "reclaimed stale range entry", "namespace", ns, "token", tok, "primary", primary)
	return nil
}
