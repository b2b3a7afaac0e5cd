// Package columntest holds the behavioural contract every column.Store
// implementation in this module must satisfy.
package columntest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) column.ProvisioningStore

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Provision", func(t *testing.T) { testProvision(t, newStore(t)) })
	t.Run("NamespaceMissing", func(t *testing.T) { testNamespaceMissing(t, newStore(t)) })
	t.Run("Standard", func(t *testing.T) { testStandard(t, newStore(t)) })
	t.Run("Super", func(t *testing.T) { testSuper(t, newStore(t)) })
	t.Run("Slice", func(t *testing.T) { testSlice(t, newStore(t)) })
	t.Run("LayoutMismatch", func(t *testing.T) { testLayoutMismatch(t, newStore(t)) })
	t.Run("InvalidArgument", func(t *testing.T) { testInvalidArgument(t, newStore(t)) })
}

func testProvision(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()

	users := column.StandardNamespace("User")
	byEmail := column.StandardNamespace("UserByEmail")
	byCity := column.SuperNamespace("UserByCity")
	require.NoError(t, s.Provision(ctx, users, byEmail, byCity))
	require.NoError(t, s.Provision(ctx, users), "provisioning is idempotent")

	defs, err := s.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []column.NamespaceDef{users, byCity, byEmail}, defs)

	err = s.Provision(ctx, column.SuperNamespace("User"))
	assert.Equal(t, column.CodeLayoutMismatch, column.CodeOf(err))

	err = s.Provision(ctx, column.NamespaceDef{Name: "Broken", Layout: "wide"})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
}

func testNamespaceMissing(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()

	_, _, err := s.Get(ctx, "Nope", "r", column.ColumnPath{Column: "c"})
	assert.True(t, column.IsNamespaceMissing(err), "get: %v", err)
	_, _, err = s.GetRow(ctx, "Nope", "r")
	assert.True(t, column.IsNamespaceMissing(err), "get_row: %v", err)
	err = s.Insert(ctx, "Nope", "r", column.Columns{"c": "v"})
	assert.True(t, column.IsNamespaceMissing(err), "insert: %v", err)
	err = s.InsertSuper(ctx, "Nope", "r", column.SuperColumn{Name: "s", Columns: column.Columns{"c": "v"}})
	assert.True(t, column.IsNamespaceMissing(err), "insert_super: %v", err)
	_, err = s.Slice(ctx, "Nope", "r", column.SliceRange{})
	assert.True(t, column.IsNamespaceMissing(err), "slice: %v", err)
	err = s.Remove(ctx, "Nope", "r", column.ColumnPath{})
	assert.True(t, column.IsNamespaceMissing(err), "remove: %v", err)
	assert.ErrorIs(t, err, column.ErrNotProvisioned)
}

func testStandard(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx, column.StandardNamespace("User")))

	_, found, err := s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Insert(ctx, "User", "u1", column.Columns{"email": "a@x", "name": "Ann"}))
	require.NoError(t, s.Insert(ctx, "User", "u1", column.Columns{"name": "Anna"}))
	require.NoError(t, s.Insert(ctx, "User", "u2", column.Columns{"email": "b@x"}))

	v, found, err := s.Get(ctx, "User", "u1", column.ColumnPath{Column: "name"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Anna", v)

	_, found, err = s.Get(ctx, "User", "u1", column.ColumnPath{Column: "age"})
	require.NoError(t, err)
	assert.False(t, found)

	row, found, err := s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, column.Columns{"email": "a@x", "name": "Anna"}, row)

	require.NoError(t, s.Remove(ctx, "User", "u1", column.ColumnPath{Column: "email"}))
	row, _, err = s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	assert.Equal(t, column.Columns{"name": "Anna"}, row)

	require.NoError(t, s.Remove(ctx, "User", "u1", column.ColumnPath{}))
	_, found, err = s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, s.Remove(ctx, "User", "u1", column.ColumnPath{}), "removing absent row")

	row, found, err = s.GetRow(ctx, "User", "u2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, column.Columns{"email": "b@x"}, row)
}

func testSuper(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx, column.SuperNamespace("UserByCity")))

	require.NoError(t, s.InsertSuper(ctx, "UserByCity", "nyc",
		column.SuperColumn{Name: "t1", Columns: column.Columns{"city": "u1"}},
		column.SuperColumn{Name: "t2", Columns: column.Columns{"city": "u2"}},
	))
	require.NoError(t, s.InsertSuper(ctx, "UserByCity", "nyc",
		column.SuperColumn{Name: "t1", Columns: column.Columns{"extra": "x"}}))

	v, found, err := s.Get(ctx, "UserByCity", "nyc", column.ColumnPath{SuperColumn: "t2", Column: "city"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u2", v)

	all, err := s.Slice(ctx, "UserByCity", "nyc", column.SliceRange{})
	require.NoError(t, err)
	assert.Equal(t, []column.SuperColumn{
		{Name: "t1", Columns: column.Columns{"city": "u1", "extra": "x"}},
		{Name: "t2", Columns: column.Columns{"city": "u2"}},
	}, all)

	require.NoError(t, s.Remove(ctx, "UserByCity", "nyc", column.ColumnPath{SuperColumn: "t1", Column: "extra"}))
	require.NoError(t, s.Remove(ctx, "UserByCity", "nyc", column.ColumnPath{SuperColumn: "t2"}))
	all, err = s.Slice(ctx, "UserByCity", "nyc", column.SliceRange{})
	require.NoError(t, err)
	assert.Equal(t, []column.SuperColumn{{Name: "t1", Columns: column.Columns{"city": "u1"}}}, all)

	require.NoError(t, s.Remove(ctx, "UserByCity", "nyc", column.ColumnPath{}))
	all, err = s.Slice(ctx, "UserByCity", "nyc", column.SliceRange{})
	require.NoError(t, err)
	assert.Empty(t, all)

	all, err = s.Slice(ctx, "UserByCity", "nowhere", column.SliceRange{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testSlice(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx, column.SuperNamespace("Events")))

	names := []string{"a", "b", "c", "d", "e"}
	for _, n := range []string{"c", "a", "e", "b", "d"} {
		require.NoError(t, s.InsertSuper(ctx, "Events", "row", column.SuperColumn{Name: n, Columns: column.Columns{"v": n}}))
	}
	require.NoError(t, s.InsertSuper(ctx, "Events", "other", column.SuperColumn{Name: "z", Columns: column.Columns{"v": "z"}}))

	nameOf := func(scs []column.SuperColumn) []string {
		out := make([]string, 0, len(scs))
		for _, sc := range scs {
			out = append(out, sc.Name)
		}
		return out
	}
	var cases = []struct {
		r    column.SliceRange
		want []string
	}{
		{column.SliceRange{}, names},
		{column.SliceRange{Count: 2}, []string{"a", "b"}},
		{column.SliceRange{After: "b", Count: 2}, []string{"c", "d"}},
		{column.SliceRange{After: "e"}, []string{}},
		{column.SliceRange{Reversed: true}, []string{"e", "d", "c", "b", "a"}},
		{column.SliceRange{Reversed: true, After: "d", Count: 2}, []string{"c", "b"}},
		{column.SliceRange{Reversed: true, After: "a"}, []string{}},
		{column.SliceRange{After: "bb"}, []string{"c", "d", "e"}},
	}
	for _, c := range cases {
		got, err := s.Slice(ctx, "Events", "row", c.r)
		require.NoError(t, err)
		assert.Equal(t, c.want, nameOf(got), "range %+v", c.r)
	}
}

func testLayoutMismatch(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx, column.StandardNamespace("Flat"), column.SuperNamespace("Deep")))

	err := s.InsertSuper(ctx, "Flat", "r", column.SuperColumn{Name: "s", Columns: column.Columns{"c": "v"}})
	assert.Equal(t, column.CodeLayoutMismatch, column.CodeOf(err))
	_, err = s.Slice(ctx, "Flat", "r", column.SliceRange{})
	assert.Equal(t, column.CodeLayoutMismatch, column.CodeOf(err))
	err = s.Insert(ctx, "Deep", "r", column.Columns{"c": "v"})
	assert.Equal(t, column.CodeLayoutMismatch, column.CodeOf(err))
	_, _, err = s.GetRow(ctx, "Deep", "r")
	assert.Equal(t, column.CodeLayoutMismatch, column.CodeOf(err))
}

func testInvalidArgument(t *testing.T, s column.ProvisioningStore) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx, column.StandardNamespace("Flat"), column.SuperNamespace("Deep")))

	err := s.Insert(ctx, "Flat", "", column.Columns{"c": "v"})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
	_, _, err = s.Get(ctx, "Flat", "r", column.ColumnPath{})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
	_, _, err = s.Get(ctx, "Deep", "r", column.ColumnPath{SuperColumn: "s"})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
	err = s.Remove(ctx, "Deep", "r", column.ColumnPath{Column: "c"})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
	err = s.Remove(ctx, "Flat", "r", column.ColumnPath{SuperColumn: "s"})
	assert.Equal(t, column.CodeInvalidArgument, column.CodeOf(err))
}
