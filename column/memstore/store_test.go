package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/column/columntest"
)

func TestStore_Contract(t *testing.T) {
	columntest.Run(t, func(t *testing.T) column.ProvisioningStore { return New() })
}

func TestStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Provision(ctx, column.StandardNamespace("User"), column.SuperNamespace("Log")))
	require.NoError(t, s.Insert(ctx, "User", "u1", column.Columns{"name": "Ann"}))
	require.NoError(t, s.InsertSuper(ctx, "Log", "r", column.SuperColumn{Name: "t1", Columns: column.Columns{"k": "v"}}))

	row, _, err := s.GetRow(ctx, "User", "u1")
	require.NoError(t, err)
	row["name"] = "mutated"
	slice, err := s.Slice(ctx, "Log", "r", column.SliceRange{})
	require.NoError(t, err)
	slice[0].Columns["k"] = "mutated"

	v, _, err := s.Get(ctx, "User", "u1", column.ColumnPath{Column: "name"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)
	v, _, err = s.Get(ctx, "Log", "r", column.ColumnPath{SuperColumn: "t1", Column: "k"})
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
