package model

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/viant/colindex/column"
	"github.com/viant/colindex/config"
	"github.com/viant/colindex/index"
	"github.com/viant/colindex/internal/logging"
)

// RelationshipsSuffix names the per-model namespace holding associations.
const RelationshipsSuffix = "Relationships"

// ErrUnknownAccessor is returned for lookups through an accessor name that
// was never declared.
var ErrUnknownAccessor = errors.New("model: unknown accessor")

// Codec converts records to and from primary rows.
type Codec[R index.Indexable] interface {
	Encode(rec R) (column.Columns, error)
	Decode(key string, cols column.Columns) (R, error)
}

// IndexWriteError reports index maintenance that failed after the primary
// write or delete succeeded. It is not retried.
type IndexWriteError struct {
	Model string
	Key   string
	Err   error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("model: %s %s: index maintenance: %v", e.Model, e.Key, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }

// Model is the descriptor of one record type.
type Model[R index.Indexable] struct {
	name          string
	store         column.Store
	codec         Codec[R]
	indexes       *index.Set[R]
	indexOpts     []index.Option
	logger        logging.Logger
	relationships bool
}

type Option func(*settings)

type settings struct {
	logger        logging.Logger
	logOutput     io.Writer
	config        *config.Config
	indexOpts     []index.Option
	relationships bool
}

// WithConfig applies cfg.Index to every index the model declares and, unless
// WithLogger is given, logs at cfg.Log.Level.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) { s.config = cfg }
}

// WithLogOutput sets where the logger built from WithConfig writes.
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) { s.logOutput = w }
}

// WithLogger sets the logger of the model and its indexes.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithIndexOptions applies opts to every index the model declares.
func WithIndexOptions(opts ...index.Option) Option {
	return func(s *settings) { s.indexOpts = append(s.indexOpts, opts...) }
}

// WithRelationships declares the <Model>Relationships namespace, whose row
// is removed together with the record.
func WithRelationships() Option {
	return func(s *settings) { s.relationships = true }
}

// New returns the descriptor of the model called name.
func New[R index.Indexable](name string, store column.Store, codec Codec[R], opts ...Option) (*Model[R], error) {
	if name == "" {
		return nil, fmt.Errorf("model: empty name")
	}
	if store == nil || codec == nil {
		return nil, fmt.Errorf("model: %s: store and codec are required", name)
	}
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	indexOpts := []index.Option{}
	if s.config != nil {
		if s.logger == nil {
			l, err := logging.FromConfig(s.config.Log, s.logOutput)
			if err != nil {
				return nil, fmt.Errorf("model: %s: %w", name, err)
			}
			s.logger = l
		}
		indexOpts = append(indexOpts, index.WithConfig(s.config.Index))
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	indexOpts = append(indexOpts, index.WithLogger(s.logger))
	return &Model[R]{
		name:          name,
		store:         store,
		codec:         codec,
		indexes:       index.NewSet[R](name),
		indexOpts:     append(indexOpts, s.indexOpts...),
		logger:        s.logger,
		relationships: s.relationships,
	}, nil
}

func (m *Model[R]) Name() string { return m.name }

// Indexes returns the registration table.
func (m *Model[R]) Indexes() *index.Set[R] { return m.indexes }

// DeclareOption adjusts an index definition at declaration.
type DeclareOption func(*index.Definition)

// Reversed makes newest-first the default order of a range index.
func Reversed() DeclareOption {
	return func(d *index.Definition) { d.Reversed = true }
}

// Separator sets the separator joining attribute names into the index name.
func Separator(sep string) DeclareOption {
	return func(d *index.Definition) { d.Separator = sep }
}

func (m *Model[R]) definition(unique bool, attributes []string, opts []DeclareOption) index.Definition {
	def := index.Definition{Model: m.name, Attributes: append([]string(nil), attributes...), Unique: unique}
	for _, opt := range opts {
		opt(&def)
	}
	return def
}

// DeclareUnique registers a unique index over attributes and returns its
// typed handle.
func (m *Model[R]) DeclareUnique(attributes []string, opts ...DeclareOption) (*index.Unique[R], error) {
	u, err := index.NewUnique[R](m.definition(true, attributes, opts), m.store, m.loader(), m.indexOpts...)
	if err != nil {
		return nil, err
	}
	if err := m.indexes.AddUnique(u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeclareRange registers a range index over attributes and returns its
// typed handle.
func (m *Model[R]) DeclareRange(attributes []string, opts ...DeclareOption) (*index.Range[R], error) {
	r, err := index.NewRange[R](m.definition(false, attributes, opts), m.store, m.loader(), m.indexOpts...)
	if err != nil {
		return nil, err
	}
	if err := m.indexes.AddRange(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Model[R]) loader() index.Loader[R] {
	return index.LoaderFunc[R](m.Get)
}

// Get reads the record stored under key.
func (m *Model[R]) Get(ctx context.Context, key string) (R, bool, error) {
	var zero R
	cols, found, err := m.store.GetRow(ctx, m.name, key)
	if err != nil || !found {
		return zero, false, err
	}
	rec, err := m.codec.Decode(key, cols)
	if err != nil {
		return zero, false, fmt.Errorf("model: %s %s: decode: %w", m.name, key, err)
	}
	return rec, true, nil
}

// Save writes rec to the primary namespace, then moves its index entries
// from the previously stored version to the new one. A failed primary write
// leaves the indexes untouched; failed index maintenance after a successful
// primary write is returned as *IndexWriteError.
func (m *Model[R]) Save(ctx context.Context, rec R) error {
	key := rec.Key()
	if key == "" {
		return fmt.Errorf("model: %s: empty record key", m.name)
	}
	cols, err := m.codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("model: %s %s: encode: %w", m.name, key, err)
	}
	priorCols, hasPrior, err := m.store.GetRow(ctx, m.name, key)
	if err != nil {
		return err
	}
	var prior R
	if hasPrior {
		if prior, err = m.codec.Decode(key, priorCols); err != nil {
			return fmt.Errorf("model: %s %s: decode: %w", m.name, key, err)
		}
	}

	if err := m.store.Insert(ctx, m.name, key, cols); err != nil {
		return err
	}
	for name := range priorCols {
		if _, ok := cols[name]; ok {
			continue
		}
		if err := m.store.Remove(ctx, m.name, key, column.ColumnPath{Column: name}); err != nil {
			return err
		}
	}

	if err := m.indexes.Reindex(ctx, prior, hasPrior, rec); err != nil {
		m.logger.WarnCtx(ctx, "index write failed after primary write", "model", m.name, "key", key, "error", err)
		return &IndexWriteError{Model: m.name, Key: key, Err: err}
	}
	return nil
}

// Delete removes the record stored under key, its relationships row and its
// index entries. Deleting an absent record is not an error.
func (m *Model[R]) Delete(ctx context.Context, key string) error {
	prior, found, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := m.store.Remove(ctx, m.name, key, column.ColumnPath{}); err != nil {
		return err
	}
	if m.relationships {
		ns := m.name + RelationshipsSuffix
		err := m.store.Remove(ctx, ns, key, column.ColumnPath{})
		switch {
		case column.IsNamespaceMissing(err):
			m.logger.DebugCtx(ctx, "relationships namespace missing", "namespace", ns, "key", key)
		case err != nil:
			return err
		}
	}
	if !found {
		return nil
	}
	if err := m.indexes.Remove(ctx, prior); err != nil {
		m.logger.WarnCtx(ctx, "index remove failed after primary delete", "model", m.name, "key", key, "error", err)
		return &IndexWriteError{Model: m.name, Key: key, Err: err}
	}
	return nil
}

// Accessor returns the index registered under an accessor name such as
// "FindByEmail" or "FindAllByCity".
func (m *Model[R]) Accessor(name string) (index.Index[R], bool) {
	return m.indexes.Lookup(name)
}

// FindBy runs the unique lookup registered as accessor.
func (m *Model[R]) FindBy(ctx context.Context, accessor string, values ...any) (R, bool, error) {
	u, ok := m.indexes.Unique(accessor)
	if !ok {
		var zero R
		return zero, false, fmt.Errorf("%w: %s.%s", ErrUnknownAccessor, m.name, accessor)
	}
	return u.Find(ctx, values...)
}

// FindAllBy runs the range lookup registered as accessor.
func (m *Model[R]) FindAllBy(ctx context.Context, accessor string, opts index.FindOptions, values ...any) (index.Page[R], error) {
	r, ok := m.indexes.Range(accessor)
	if !ok {
		return index.Page[R]{}, fmt.Errorf("%w: %s.%s", ErrUnknownAccessor, m.name, accessor)
	}
	return r.Find(ctx, opts, values...)
}

// Namespaces lists every namespace the model needs: its primary namespace,
// the relationships namespace when declared, then one per index.
func (m *Model[R]) Namespaces() []column.NamespaceDef {
	defs := []column.NamespaceDef{column.StandardNamespace(m.name)}
	if m.relationships {
		defs = append(defs, column.SuperNamespace(m.name+RelationshipsSuffix))
	}
	return append(defs, m.indexes.Namespaces()...)
}

// Provision creates every namespace the model needs.
func (m *Model[R]) Provision(ctx context.Context, p column.Provisioner) error {
	return p.Provision(ctx, m.Namespaces()...)
}
