package store

import (
	"testing"

	"github.com/flashmart/stock-sync/internal/core/domain"
)

func TestLoad_SeedsDisplayAndConfirmed(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 7})

	it, ok := s.Get("p1")
	if !ok {
		t.Fatal("expected item p1")
	}
	if it.DisplayStock != 7 || it.ConfirmedStock != 7 {
		t.Errorf("expected 7/7, got %d/%d", it.DisplayStock, it.ConfirmedStock)
	}
}

func TestSetDisplay_DoesNotTouchConfirmed(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 4})

	s.SetDisplay("p1", 9)

	it, _ := s.Get("p1")
	if it.DisplayStock != 9 {
		t.Errorf("expected display 9, got %d", it.DisplayStock)
	}
	if it.ConfirmedStock != 4 {
		t.Errorf("expected confirmed 4, got %d", it.ConfirmedStock)
	}
}

func TestSetDisplay_ClampsNegative(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 4})

	s.SetDisplay("p1", -3)

	it, _ := s.Get("p1")
	if it.DisplayStock != 0 {
		t.Errorf("expected display 0, got %d", it.DisplayStock)
	}
}

func TestSetDisplay_UnknownIDCreatesRecord(t *testing.T) {
	s := NewItemStore()

	s.SetDisplay("new", 3)

	it, ok := s.Get("new")
	if !ok {
		t.Fatal("expected record to be created")
	}
	if it.DisplayStock != 3 || it.ConfirmedStock != 0 {
		t.Errorf("expected 3/0, got %d/%d", it.DisplayStock, it.ConfirmedStock)
	}
}

func TestCommit_SetsBothValues(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 4})
	s.SetDisplay("p1", 9)

	s.Commit("p1", 8)

	it, _ := s.Get("p1")
	if it.DisplayStock != 8 || it.ConfirmedStock != 8 {
		t.Errorf("expected 8/8, got %d/%d", it.DisplayStock, it.ConfirmedStock)
	}
}

func TestRevert_RestoresConfirmed(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 4})
	s.SetDisplay("p1", 9)

	s.Revert("p1")

	it, _ := s.Get("p1")
	if it.DisplayStock != 4 {
		t.Errorf("expected display 4 after revert, got %d", it.DisplayStock)
	}
}

func TestRemove(t *testing.T) {
	s := NewItemStore()
	s.Load(domain.Item{ID: "p1", ConfirmedStock: 4})

	s.Remove("p1")

	if _, ok := s.Get("p1"); ok {
		t.Error("expected p1 to be removed")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestParseStock(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"5", 5},
		{" 12 ", 12},
		{"-3", 0},
		{"abc", 0},
		{"", 0},
		{"7.9", 7},
	}
	for _, c := range cases {
		if got := domain.ParseStock(c.raw); got != c.want {
			t.Errorf("ParseStock(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}
