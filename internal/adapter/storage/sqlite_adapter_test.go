package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteAdapter {
	t.Helper()

	a, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "stock.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSQLiteAdapter_SetAndGet(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()

	got, err := a.SetStock(ctx, "p1", 12)
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if got != 12 {
		t.Errorf("expected 12, got %d", got)
	}

	stored, err := a.GetStock(ctx, "p1")
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stored != 12 {
		t.Errorf("expected stored 12, got %d", stored)
	}
}

func TestSQLiteAdapter_SetClampsNegative(t *testing.T) {
	a := newTestSQLite(t)

	got, err := a.SetStock(context.Background(), "p1", -4)
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}

func TestSQLiteAdapter_DeltaClampsAtZero(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()

	a.SetStock(ctx, "p1", 2)

	got, err := a.ApplyDelta(ctx, "p1", -5)
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}

func TestSQLiteAdapter_DeltaSequence(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()

	a.SetStock(ctx, "p1", 10)

	for i, want := range []int{9, 8, 7} {
		got, err := a.ApplyDelta(ctx, "p1", -1)
		if err != nil {
			t.Fatalf("delta %d: %v", i, err)
		}
		if got != want {
			t.Errorf("delta %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestSQLiteAdapter_MissingItemReadsZero(t *testing.T) {
	a := newTestSQLite(t)

	got, err := a.GetStock(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
