package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/colindex/column"
)

// Set is the registration table of one model's indexes, keyed by accessor
// name. It is filled while the model is declared and only read afterwards.
type Set[R Indexable] struct {
	model   string
	ordered []Index[R]
	unique  map[string]*Unique[R]
	ranges  map[string]*Range[R]
}

func NewSet[R Indexable](model string) *Set[R] {
	return &Set[R]{model: model, unique: map[string]*Unique[R]{}, ranges: map[string]*Range[R]{}}
}

// AddUnique registers u under its accessor name.
func (s *Set[R]) AddUnique(u *Unique[R]) error {
	if err := s.check(u.Definition()); err != nil {
		return err
	}
	s.unique[u.Definition().Accessor()] = u
	s.ordered = append(s.ordered, u)
	return nil
}

// AddRange registers r under its accessor name.
func (s *Set[R]) AddRange(r *Range[R]) error {
	if err := s.check(r.Definition()); err != nil {
		return err
	}
	s.ranges[r.Definition().Accessor()] = r
	s.ordered = append(s.ordered, r)
	return nil
}

func (s *Set[R]) check(def Definition) error {
	if def.Model != s.model {
		return fmt.Errorf("%w: %s belongs to %s, not %s", ErrInvalidDefinition, def.Namespace(), def.Model, s.model)
	}
	name := def.Accessor()
	if _, ok := s.unique[name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateIndex, s.model, name)
	}
	if _, ok := s.ranges[name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateIndex, s.model, name)
	}
	return nil
}

// Unique looks up a unique index by accessor name, e.g. "FindByEmail".
func (s *Set[R]) Unique(accessor string) (*Unique[R], bool) {
	u, ok := s.unique[accessor]
	return u, ok
}

// Range looks up a range index by accessor name, e.g. "FindAllByCity".
func (s *Set[R]) Range(accessor string) (*Range[R], bool) {
	r, ok := s.ranges[accessor]
	return r, ok
}

// Lookup returns any index by accessor name.
func (s *Set[R]) Lookup(accessor string) (Index[R], bool) {
	if u, ok := s.unique[accessor]; ok {
		return u, true
	}
	if r, ok := s.ranges[accessor]; ok {
		return r, true
	}
	return nil, false
}

// Accessors lists accessor names in declaration order.
func (s *Set[R]) Accessors() []string {
	out := make([]string, len(s.ordered))
	for i, ix := range s.ordered {
		out[i] = ix.Definition().Accessor()
	}
	return out
}

// Indexes returns the indexes in declaration order.
func (s *Set[R]) Indexes() []Index[R] {
	return append([]Index[R](nil), s.ordered...)
}

// Namespaces returns the provisioning definitions of every index.
func (s *Set[R]) Namespaces() []column.NamespaceDef {
	var out []column.NamespaceDef
	for _, ix := range s.ordered {
		out = append(out, ix.Definition().Namespaces()...)
	}
	return out
}

// Write writes rec to every index. All indexes are attempted; failures are
// joined.
func (s *Set[R]) Write(ctx context.Context, rec R) error {
	var errs []error
	for _, ix := range s.ordered {
		if err := ix.Write(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ix.Definition().Namespace(), err))
		}
	}
	return errors.Join(errs...)
}

// Remove removes rec from every index. All indexes are attempted; failures
// are joined.
func (s *Set[R]) Remove(ctx context.Context, rec R) error {
	var errs []error
	for _, ix := range s.ordered {
		if err := ix.Remove(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ix.Definition().Namespace(), err))
		}
	}
	return errors.Join(errs...)
}

// Reindex moves rec's entries from the state it had before a save (prior,
// when hasPrior) to its current state. Unique mappings whose key did not
// change are overwritten in place; everything else is removed under the
// prior key and written under the new one.
func (s *Set[R]) Reindex(ctx context.Context, prior R, hasPrior bool, rec R) error {
	var errs []error
	for _, ix := range s.ordered {
		def := ix.Definition()
		if hasPrior && !(def.Unique && def.Key(prior) == def.Key(rec)) {
			if err := ix.Remove(ctx, prior); err != nil {
				errs = append(errs, fmt.Errorf("%s: remove: %w", def.Namespace(), err))
			}
		}
		if err := ix.Write(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", def.Namespace(), err))
		}
	}
	return errors.Join(errs...)
}
