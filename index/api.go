package index

import (
	"context"
	"errors"

	"github.com/viant/colindex/column"
)

// Indexable is implemented by records that can be indexed.
type Indexable interface {
	// Key returns the record's primary key.
	Key() string
	// Attribute returns the value of a named attribute.
	Attribute(name string) (any, bool)
}

// Loader hydrates records from the primary store.
type Loader[R Indexable] interface {
	Load(ctx context.Context, key string) (R, bool, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[R Indexable] func(ctx context.Context, key string) (R, bool, error)

func (f LoaderFunc[R]) Load(ctx context.Context, key string) (R, bool, error) {
	return f(ctx, key)
}

// Index is the write side shared by unique and range indexes.
type Index[R Indexable] interface {
	Definition() Definition
	// Write records rec under the composite key of its current attributes.
	Write(ctx context.Context, rec R) error
	// Remove drops the entries rec holds under the composite key of the
	// attributes it carries.
	Remove(ctx context.Context, rec R) error
}

// Hit is a validated match of a range scan.
type Hit[R Indexable] struct {
	Token  string
	Record R
}

// Page is the result of one range scan.
type Page[R Indexable] struct {
	Hits []Hit[R]
	// Next is the token of the last hit, to be passed as StartAfter to
	// resume. It is empty when the page has no hits.
	Next string
}

// Records returns the hit records in scan order.
func (p Page[R]) Records() []R {
	out := make([]R, len(p.Hits))
	for i, h := range p.Hits {
		out[i] = h.Record
	}
	return out
}

// FindOptions controls a range lookup.
type FindOptions struct {
	// StartAfter resumes strictly after this token.
	StartAfter string
	// Limit caps the number of hits; <= 0 selects the configured default.
	Limit int
	// Reversed inverts the index's default direction.
	Reversed bool
}

var (
	ErrInvalidDefinition = errors.New("index: invalid definition")
	ErrArity             = errors.New("index: value count does not match attributes")
	ErrDuplicateIndex    = errors.New("index: duplicate index")
)

// Store is the subset of column.Store the indexes use.
type Store interface {
	Get(ctx context.Context, namespace, row string, path column.ColumnPath) (string, bool, error)
	GetRow(ctx context.Context, namespace, row string) (column.Columns, bool, error)
	Insert(ctx context.Context, namespace, row string, cols column.Columns) error
	InsertSuper(ctx context.Context, namespace, row string, supers ...column.SuperColumn) error
	Slice(ctx context.Context, namespace, row string, r column.SliceRange) ([]column.SuperColumn, error)
	Remove(ctx context.Context, namespace, row string, path column.ColumnPath) error
}
