package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/config"
)

func newSet(t *testing.T, store Store, recs *docs, opts ...Option) (*Set[doc], *Unique[doc], *Range[doc]) {
	t.Helper()
	set := NewSet[doc]("Person")
	u, err := NewUnique[doc](Definition{Model: "Person", Attributes: []string{"email"}, Unique: true}, store, recs, opts...)
	require.NoError(t, err)
	r, err := NewRange[doc](Definition{Model: "Person", Attributes: []string{"city"}}, store, recs, opts...)
	require.NoError(t, err)
	require.NoError(t, set.AddUnique(u))
	require.NoError(t, set.AddRange(r))
	return set, u, r
}

func TestSet_Registration(t *testing.T) {
	set, u, r := newSet(t, provision(t), newDocs())

	assert.Equal(t, []string{"FindByEmail", "FindAllByCity"}, set.Accessors())
	got, ok := set.Unique("FindByEmail")
	assert.True(t, ok)
	assert.Same(t, u, got)
	gotRange, ok := set.Range("FindAllByCity")
	assert.True(t, ok)
	assert.Same(t, r, gotRange)
	_, ok = set.Range("FindByEmail")
	assert.False(t, ok)
	ix, ok := set.Lookup("FindAllByCity")
	assert.True(t, ok)
	assert.Equal(t, "PersonByCity", ix.Definition().Namespace())
	_, ok = set.Lookup("FindByNothing")
	assert.False(t, ok)
	assert.Len(t, set.Indexes(), 2)

	assert.Equal(t, []column.NamespaceDef{
		column.StandardNamespace("PersonByEmail"),
		column.SuperNamespace("PersonByCity"),
		column.StandardNamespace("PersonByCityTokens"),
	}, set.Namespaces())

	dup, err := NewUnique[doc](Definition{Model: "Person", Attributes: []string{"email"}, Unique: true}, provision(t), newDocs())
	require.NoError(t, err)
	assert.ErrorIs(t, set.AddUnique(dup), ErrDuplicateIndex)

	foreign, err := NewRange[doc](Definition{Model: "Pet", Attributes: []string{"city"}}, provision(t), newDocs())
	require.NoError(t, err)
	assert.ErrorIs(t, set.AddRange(foreign), ErrInvalidDefinition)
}

func TestSet_WriteJoinsFailures(t *testing.T) {
	ctx := context.Background()
	base := provision(t,
		Definition{Model: "Person", Attributes: []string{"email"}, Unique: true},
		Definition{Model: "Person", Attributes: []string{"city"}},
	)
	store := &failingStore{Store: base, namespace: "PersonByCity"}
	recs := newDocs()
	set, u, _ := newSet(t, store, recs)

	ann := newDoc("p1", "email", "ann@x", "city", "nyc")
	recs.put(ann)
	err := set.Write(ctx, ann)
	assert.ErrorIs(t, err, errInjected)
	assert.Contains(t, err.Error(), "PersonByCity")

	got, found, err := u.Find(ctx, "ann@x")
	require.NoError(t, err)
	assert.True(t, found, "healthy indexes are still written")
	assert.Equal(t, "p1", got.id)
}

func TestSet_Reindex(t *testing.T) {
	ctx := context.Background()
	store := provision(t,
		Definition{Model: "Person", Attributes: []string{"email"}, Unique: true},
		Definition{Model: "Person", Attributes: []string{"city"}},
	)
	recs := newDocs()
	set, u, r := newSet(t, store, recs)

	before := newDoc("p1", "email", "old@x", "city", "nyc")
	recs.put(before)
	require.NoError(t, set.Reindex(ctx, doc{}, false, before))

	after := newDoc("p1", "email", "new@x", "city", "sf")
	recs.put(after)
	require.NoError(t, set.Reindex(ctx, before, true, after))

	_, found, err := u.Find(ctx, "old@x")
	require.NoError(t, err)
	assert.False(t, found)
	got, found, err := u.Find(ctx, "new@x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "p1", got.id)

	entries, err := r.Entries(ctx, "nyc")
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, err = r.Entries(ctx, "sf")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, set.Remove(ctx, after))
	_, found, err = u.Find(ctx, "new@x")
	require.NoError(t, err)
	assert.False(t, found)
	entries, err = r.Entries(ctx, "sf")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOptions(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, DefaultLimit, o.DefaultLimit)
	assert.Equal(t, RemovalTombstone, o.Removal)
	assert.True(t, o.HealStale)
	assert.NotNil(t, o.Logger)

	cfg := config.Default().Index
	cfg.DefaultLimit = 7
	cfg.BatchSize = 3
	cfg.RangeRemoval = config.RemovalFilter
	heal := false
	cfg.HealStale = &heal
	o = NewOptions(WithConfig(cfg))
	assert.Equal(t, 7, o.DefaultLimit)
	assert.Equal(t, 3, o.BatchSize)
	assert.Equal(t, RemovalFilter, o.Removal)
	assert.False(t, o.HealStale)

	_, err := ParseRemovalPolicy("sometimes")
	assert.Error(t, err)
	assert.Equal(t, "filter", RemovalFilter.String())
}
