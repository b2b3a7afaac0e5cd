package index

import (
	"fmt"

	"github.com/viant/colindex/column"
	"github.com/viant/colindex/composite"
)

// Definition describes one index of a model.
type Definition struct {
	Model      string
	Attributes []string
	Unique     bool
	// Reversed makes newest-first the default range direction.
	Reversed bool
	// Separator joins attribute names into Name. Empty selects
	// composite.DefaultSeparator.
	Separator string
}

// Name is the joined attribute names, e.g. "city_zip".
func (d Definition) Name() string {
	return composite.Join(d.Separator, d.Attributes)
}

// Namespace is the storage namespace, e.g. "UserByCityZip".
func (d Definition) Namespace() string {
	return composite.NamespaceName(d.Model, d.Attributes)
}

// NamespaceDef is the provisioning definition: standard layout for unique
// indexes, super columns named by time tokens for range indexes.
func (d Definition) NamespaceDef() column.NamespaceDef {
	if d.Unique {
		return column.StandardNamespace(d.Namespace())
	}
	return column.SuperNamespace(d.Namespace())
}

// TokensNamespace holds, for a range index, one row per primary key mapping
// each entry token the record owns to the composite key it was written under.
func (d Definition) TokensNamespace() string {
	return d.Namespace() + "Tokens"
}

// Namespaces lists every namespace the index needs: NamespaceDef, plus the
// standard-layout TokensNamespace for range indexes.
func (d Definition) Namespaces() []column.NamespaceDef {
	if d.Unique {
		return []column.NamespaceDef{d.NamespaceDef()}
	}
	return []column.NamespaceDef{d.NamespaceDef(), column.StandardNamespace(d.TokensNamespace())}
}

// Accessor is the lookup name, FindBy<Attrs> or FindAllBy<Attrs>.
func (d Definition) Accessor() string {
	return composite.AccessorName(d.Unique, d.Attributes)
}

// Key encodes rec's current attribute values. Missing attributes encode as
// empty values.
func (d Definition) Key(rec Indexable) string {
	values := make([]any, len(d.Attributes))
	for i, attr := range d.Attributes {
		values[i], _ = rec.Attribute(attr)
	}
	return composite.Encode(values...)
}

// KeyFor encodes query values, one per attribute.
func (d Definition) KeyFor(values ...any) (string, error) {
	if len(values) != len(d.Attributes) {
		return "", fmt.Errorf("%w: %s wants %d, got %d", ErrArity, d.Accessor(), len(d.Attributes), len(values))
	}
	return composite.Encode(values...), nil
}

// Matches reports whether rec still carries values for every attribute.
func (d Definition) Matches(rec Indexable, values []any) bool {
	if len(values) != len(d.Attributes) {
		return false
	}
	for i, attr := range d.Attributes {
		v, _ := rec.Attribute(attr)
		if composite.Format(v) != composite.Format(values[i]) {
			return false
		}
	}
	return true
}

// Validate rejects definitions without a model, without attributes, or with
// empty or repeated attribute names.
func (d Definition) Validate() error {
	if d.Model == "" {
		return fmt.Errorf("%w: empty model name", ErrInvalidDefinition)
	}
	if len(d.Attributes) == 0 {
		return fmt.Errorf("%w: %s: no attributes", ErrInvalidDefinition, d.Model)
	}
	seen := make(map[string]bool, len(d.Attributes))
	for _, attr := range d.Attributes {
		if attr == "" {
			return fmt.Errorf("%w: %s: empty attribute name", ErrInvalidDefinition, d.Model)
		}
		if seen[attr] {
			return fmt.Errorf("%w: %s: attribute %q repeated", ErrInvalidDefinition, d.Model, attr)
		}
		seen[attr] = true
	}
	return nil
}
