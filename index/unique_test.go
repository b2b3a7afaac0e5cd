package index

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
)

func TestUnique_FindAfterWrite(t *testing.T) {
	ctx := context.Background()
	def := Definition{Model: "UniqFind", Attributes: []string{"email"}, Unique: true}
	store := provision(t, def)
	recs := newDocs()
	u, err := NewUnique[doc](def, store, recs)
	require.NoError(t, err)

	ann := newDoc("u1", "email", "ann@x")
	recs.put(ann)
	writes := testutil.ToFloat64(IndexWrites.WithLabelValues(def.Namespace(), kindUnique))
	require.NoError(t, u.Write(ctx, ann))
	assert.Equal(t, writes+1, testutil.ToFloat64(IndexWrites.WithLabelValues(def.Namespace(), kindUnique)))

	got, found, err := u.Find(ctx, "ann@x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", got.Key())

	_, found, err = u.Find(ctx, "bob@x")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = u.Find(ctx, "ann@x", "extra")
	assert.ErrorIs(t, err, ErrArity)
}

func TestUnique_HealsDanglingEntry(t *testing.T) {
	ctx := context.Background()
	def := Definition{Model: "UniqHeal", Attributes: []string{"email"}, Unique: true}
	store := provision(t, def)
	recs := newDocs()
	u, err := NewUnique[doc](def, store, recs)
	require.NoError(t, err)

	ann := newDoc("u1", "email", "ann@x")
	recs.put(ann)
	require.NoError(t, u.Write(ctx, ann))
	recs.drop("u1")

	healed := testutil.ToFloat64(StaleEntries.WithLabelValues(def.Namespace(), actionHealed))
	_, found, err := u.Find(ctx, "ann@x")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, healed+1, testutil.ToFloat64(StaleEntries.WithLabelValues(def.Namespace(), actionHealed)))

	key, _ := def.KeyFor("ann@x")
	_, found, err = store.Get(ctx, def.Namespace(), key, column.ColumnPath{Column: UniqueColumn})
	require.NoError(t, err)
	assert.False(t, found, "dangling mapping should be deleted")
}

func TestUnique_KeepsDanglingEntryWithoutHealing(t *testing.T) {
	ctx := context.Background()
	def := Definition{Model: "UniqNoHeal", Attributes: []string{"email"}, Unique: true}
	store := provision(t, def)
	recs := newDocs()
	u, err := NewUnique[doc](def, store, recs, WithHealStale(false))
	require.NoError(t, err)

	require.NoError(t, u.Write(ctx, newDoc("u1", "email", "ann@x")))
	_, found, err := u.Find(ctx, "ann@x")
	require.NoError(t, err)
	assert.False(t, found)

	key, _ := def.KeyFor("ann@x")
	v, found, err := store.Get(ctx, def.Namespace(), key, column.ColumnPath{Column: UniqueColumn})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", v)
}

func TestUnique_RemoveOnlyOwnMapping(t *testing.T) {
	ctx := context.Background()
	def := Definition{Model: "UniqRemove", Attributes: []string{"email"}, Unique: true}
	store := provision(t, def)
	recs := newDocs()
	u, err := NewUnique[doc](def, store, recs)
	require.NoError(t, err)

	first := newDoc("u1", "email", "shared@x")
	second := newDoc("u2", "email", "shared@x")
	recs.put(first, second)
	require.NoError(t, u.Write(ctx, first))
	require.NoError(t, u.Write(ctx, second))

	require.NoError(t, u.Remove(ctx, first))
	got, found, err := u.Find(ctx, "shared@x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u2", got.Key(), "last writer wins and keeps its mapping")

	require.NoError(t, u.Remove(ctx, second))
	_, found, err = u.Find(ctx, "shared@x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnique_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	def := Definition{Model: "UniqErr", Attributes: []string{"email"}, Unique: true}
	u, err := NewUnique[doc](def, provision(t), newDocs())
	require.NoError(t, err)

	_, _, err = u.Find(ctx, "ann@x")
	assert.True(t, column.IsNamespaceMissing(err), "%v", err)
	err = u.Write(ctx, newDoc("u1", "email", "ann@x"))
	assert.True(t, column.IsNamespaceMissing(err), "%v", err)
}

func TestNewUnique_RejectsRangeDefinition(t *testing.T) {
	_, err := NewUnique[doc](Definition{Model: "User", Attributes: []string{"city"}}, provision(t), newDocs())
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	_, err = NewRange[doc](Definition{Model: "User", Attributes: []string{"email"}, Unique: true}, provision(t), newDocs())
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}
