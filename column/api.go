package column

import (
	"context"
	"sort"
)

// Columns is a flat row: column name to value.
type Columns map[string]string

// SuperColumn is a named group of columns inside a super-layout row.
type SuperColumn struct {
	Name    string
	Columns Columns
}

// ColumnPath addresses data inside a row. The zero value addresses the whole
// row. In a standard namespace only Column is meaningful; in a super
// namespace SuperColumn selects the group and Column optionally one
// sub-column within it.
type ColumnPath struct {
	SuperColumn string
	Column      string
}

// IsRow reports whether the path addresses a whole row.
func (p ColumnPath) IsRow() bool {
	return p.SuperColumn == "" && p.Column == ""
}

// SliceRange bounds a Slice over the super columns of one row.
type SliceRange struct {
	// After, when non-empty, starts the slice strictly after this super column
	// name in the requested direction.
	After string

	// Reversed returns super columns in descending name order.
	Reversed bool

	// Count limits the number of super columns returned. Count <= 0 means no
	// limit.
	Count int
}

// Layout distinguishes flat rows from rows of super columns.
type Layout string

const (
	Standard Layout = "standard"
	Super    Layout = "super"
)

// Comparator names the ordering applied to column (or super column) names.
type Comparator string

const (
	// UTF8 orders names by their UTF-8 bytes.
	UTF8 Comparator = "utf8"
	// TimeToken orders time-ordered tokens (see package token). Canonical
	// tokens sort chronologically under byte order, so stores honour it the
	// same way as UTF8.
	TimeToken Comparator = "time_token"
)

// NamespaceDef describes a namespace for provisioning purposes.
type NamespaceDef struct {
	Name          string
	Layout        Layout
	Comparator    Comparator
	SubComparator Comparator
}

// StandardNamespace returns the definition of a flat namespace ordered by
// UTF-8 column names.
func StandardNamespace(name string) NamespaceDef {
	return NamespaceDef{Name: name, Layout: Standard, Comparator: UTF8}
}

// SuperNamespace returns the definition of a super-column namespace whose
// super columns are time tokens.
func SuperNamespace(name string) NamespaceDef {
	return NamespaceDef{Name: name, Layout: Super, Comparator: UTF8, SubComparator: TimeToken}
}

// Store is the primary wide-column store API. All operations are
// synchronous; implementations must be safe for concurrent use.
type Store interface {
	// Get reads a single column value. For super namespaces path.SuperColumn
	// and path.Column must both be set.
	Get(ctx context.Context, namespace, row string, path ColumnPath) (string, bool, error)

	// GetRow reads every column of a standard-layout row.
	GetRow(ctx context.Context, namespace, row string) (Columns, bool, error)

	// Insert upserts columns into a standard-layout row.
	Insert(ctx context.Context, namespace, row string, cols Columns) error

	// InsertSuper upserts super columns (merging sub-columns) into a
	// super-layout row.
	InsertSuper(ctx context.Context, namespace, row string, supers ...SuperColumn) error

	// Slice returns super columns of a row ordered by name.
	Slice(ctx context.Context, namespace, row string, r SliceRange) ([]SuperColumn, error)

	// Remove deletes the data addressed by path. Removing absent data is not
	// an error.
	Remove(ctx context.Context, namespace, row string, path ColumnPath) error

	// Close releases resources held by the store.
	Close() error
}

// Provisioner creates namespaces. Provision is idempotent for identical
// definitions.
type Provisioner interface {
	Provision(ctx context.Context, defs ...NamespaceDef) error
	Namespaces(ctx context.Context) ([]NamespaceDef, error)
}

// ProvisioningStore is a Store that can also provision its namespaces. All
// stores in this module implement it.
type ProvisioningStore interface {
	Store
	Provisioner
}

// SortNamespaces orders definitions by name.
func SortNamespaces(defs []NamespaceDef) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
}

// Validate checks a definition before it is provisioned.
func (d NamespaceDef) Validate() error {
	if d.Name == "" {
		return NewError(CodeInvalidArgument, "provision", d.Name, errEmptyNamespace)
	}
	switch d.Layout {
	case Standard, Super:
	default:
		return NewError(CodeInvalidArgument, "provision", d.Name, errUnknownLayout(d.Layout))
	}
	return nil
}
