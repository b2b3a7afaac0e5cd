package column

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/viant/colindex/engine"
)

// TestSQLiteStore_RegisterAfterConcurrentInsert covers a provisioner whose
// lookup missed a namespace another store inserted in the meantime.
func TestSQLiteStore_RegisterAfterConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	first, err := NewSQLiteStore(ctx, db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	second, err := NewSQLiteStore(ctx, db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := first.Provision(ctx, StandardNamespace("User")); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	if err := second.register(ctx, SuperNamespace("User")); CodeOf(err) != CodeLayoutMismatch {
		t.Fatalf("register(super User) = %v; want layout mismatch", err)
	}
	if err := second.register(ctx, StandardNamespace("User")); err != nil {
		t.Fatalf("register(standard User) = %v; want nil", err)
	}
	if def, ok := second.catalog.Get("User"); !ok || def.Layout != Standard {
		t.Fatalf("catalog entry = %+v, %v; want standard User", def, ok)
	}
}

func TestSQLiteStore_ConcurrentProvision(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(filepath.Join(t.TempDir(), "provision.sqlite"))
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		store, err := NewSQLiteStore(ctx, db, 0)
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		wg.Add(1)
		go func(i int, store *SQLiteStore) {
			defer wg.Done()
			errs[i] = store.Provision(ctx, StandardNamespace("User"), SuperNamespace("UserByCity"))
		}(i, store)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: Provision failed: %v", i, err)
		}
	}
}
