package pebblestore

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/column/columntest"
)

func TestStore_Contract(t *testing.T) {
	columntest.Run(t, func(t *testing.T) column.ProvisioningStore {
		s, err := Open("", 0)
		require.NoError(t, err)
		return s
	})
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir, 4)
	require.NoError(t, err)
	require.NoError(t, s.Provision(ctx, column.StandardNamespace("User"), column.SuperNamespace("UserByCity")))
	require.NoError(t, s.Insert(ctx, "User", "u1", column.Columns{"name": "Ann"}))
	require.NoError(t, s.InsertSuper(ctx, "UserByCity", "nyc", column.SuperColumn{Name: "t1", Columns: column.Columns{"UserByCity": "u1"}}))
	require.NoError(t, s.Close())

	s, err = Open(dir, 4)
	require.NoError(t, err)
	defer s.Close()
	defs, err := s.Namespaces(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
	row, found, err := s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, column.Columns{"name": "Ann"}, row)
	slice, err := s.Slice(ctx, "UserByCity", "nyc", column.SliceRange{})
	require.NoError(t, err)
	require.Len(t, slice, 1)
	assert.Equal(t, "t1", slice[0].Name)
}

func TestKeys_EscapedSuperNamesKeepOrder(t *testing.T) {
	names := []string{"", "a", "a\x00", "a\x00b", "ab", "b"}
	prefix := rowPrefix("ns", "row")
	for i := 1; i < len(names); i++ {
		lo := string(superPrefix(prefix, names[i-1]))
		hi := string(superPrefix(prefix, names[i]))
		assert.Less(t, lo, hi, "%q < %q", names[i-1], names[i])
	}
	for _, name := range names {
		key := columnKey(superPrefix(prefix, name), "col")
		got, rest, err := splitEscaped(key[len(prefix):])
		require.NoError(t, err)
		assert.Equal(t, name, got)
		assert.Equal(t, "col", string(rest))
	}
	_, _, err := splitEscaped([]byte("abc"))
	assert.Error(t, err)
}

func TestKeys_UpperBound(t *testing.T) {
	assert.Equal(t, []byte("ac"), upperBound([]byte("ab")))
	assert.Equal(t, []byte("b"), upperBound([]byte{'a', 0xFF}))
	assert.Nil(t, upperBound([]byte{0xFF, 0xFF}))
}

func TestStore_Collector(t *testing.T) {
	s, err := Open("", 0)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 6, testutil.CollectAndCount(s.Collector()))
}
