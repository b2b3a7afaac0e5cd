package column_test

import (
	"context"
	"testing"

	"github.com/viant/colindex/column"
	"github.com/viant/colindex/column/columntest"
	"github.com/viant/colindex/engine"
)

// TestSQLiteStore_Contract runs the shared store contract against a fresh
// in-memory database per subtest.
func TestSQLiteStore_Contract(t *testing.T) {
	columntest.Run(t, func(t *testing.T) column.ProvisioningStore {
		db, err := engine.Open(":memory:")
		if err != nil {
			t.Fatalf("engine.Open(:memory:) failed: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })

		store, err := column.NewSQLiteStore(context.Background(), db, 0)
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		return store
	})
}

// TestSQLiteStore_CatalogSharedAcrossStores verifies that a namespace
// provisioned through one store handle is visible to another handle on the
// same database, i.e. the catalog cache is only an accelerator.
func TestSQLiteStore_CatalogSharedAcrossStores(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	first, err := column.NewSQLiteStore(ctx, db, 1)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	second, err := column.NewSQLiteStore(ctx, db, 1)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := first.Provision(ctx, column.StandardNamespace("A"), column.StandardNamespace("B")); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	for _, ns := range []string{"A", "B", "A"} {
		if err := second.Insert(ctx, ns, "r", column.Columns{"c": ns}); err != nil {
			t.Fatalf("Insert(%s) through second store failed: %v", ns, err)
		}
	}
	v, found, err := first.Get(ctx, "B", "r", column.ColumnPath{Column: "c"})
	if err != nil || !found || v != "B" {
		t.Fatalf("Get(B) = %q, %v, %v; want B, true, nil", v, found, err)
	}
}

func TestNewSQLiteStore_NilDB(t *testing.T) {
	if _, err := column.NewSQLiteStore(context.Background(), nil, 0); err == nil {
		t.Fatalf("NewSQLiteStore(nil) expected error")
	}
}
