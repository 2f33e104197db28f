package ring

import (
	"errors"
	"testing"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := db.New("sqlite", "file:test_"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	return NewRegistry(store)
}

func intPtr(v int) *int { return &v }

func TestRegistry_AddAppendsAtEnd(t *testing.T) {
	reg := newTestRegistry(t)

	for _, id := range []string{"a.example.com", "b.example.com"} {
		if _, err := reg.Add(model.Site{ID: id, Name: id, URL: "https://" + id + "/"}, nil); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}

	site, err := reg.Add(model.Site{ID: "c.example.com", Name: "Charlie", URL: "https://c.example.com/"}, nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if site.Position != 2 {
		t.Errorf("expected new member at position 2, got %d", site.Position)
	}
}

func TestRegistry_AddAtPosition(t *testing.T) {
	reg := newTestRegistry(t)

	for _, id := range []string{"a.example.com", "b.example.com"} {
		if _, err := reg.Add(model.Site{ID: id, Name: id, URL: "https://" + id + "/"}, nil); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}

	if _, err := reg.Add(model.Site{ID: "c.example.com", Name: "Charlie", URL: "https://c.example.com/"}, intPtr(1)); err != nil {
		t.Fatalf("Add at position failed: %v", err)
	}

	sites, err := reg.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a.example.com", "c.example.com", "b.example.com"}
	for i, id := range want {
		if sites[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, sites[i].ID)
		}
	}
}

func TestRegistry_AddDuplicate(t *testing.T) {
	reg := newTestRegistry(t)

	if _, err := reg.Add(model.Site{ID: "a.example.com", Name: "Alpha", URL: "https://a.example.com/"}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := reg.Add(model.Site{ID: "a.example.com", Name: "Alpha again", URL: "https://a.example.com/"}, nil); !errors.Is(err, ErrSiteExists) {
		t.Fatalf("expected ErrSiteExists, got: %v", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := newTestRegistry(t)

	if _, err := reg.Add(model.Site{ID: "a.example.com", Name: "Alpha", URL: "https://a.example.com/"}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	site, err := reg.Get("a.example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if site.Name != "Alpha" {
		t.Errorf("expected Alpha, got %s", site.Name)
	}

	if _, err := reg.Get("ghost.example.com"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got: %v", err)
	}
}

func TestRegistry_Reorder(t *testing.T) {
	reg := newTestRegistry(t)

	for _, id := range []string{"a.example.com", "b.example.com", "c.example.com"} {
		if _, err := reg.Add(model.Site{ID: id, Name: id, URL: "https://" + id + "/"}, nil); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}

	if err := reg.Reorder([]string{"c.example.com", "a.example.com", "b.example.com"}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	sites, err := reg.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if sites[0].ID != "c.example.com" {
		t.Errorf("expected c.example.com first, got %s", sites[0].ID)
	}
}

func TestRegistry_ReorderRejectsBadSets(t *testing.T) {
	reg := newTestRegistry(t)

	for _, id := range []string{"a.example.com", "b.example.com"} {
		if _, err := reg.Add(model.Site{ID: id, Name: id, URL: "https://" + id + "/"}, nil); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}

	cases := [][]string{
		{"a.example.com"},                                        // missing member
		{"a.example.com", "b.example.com", "c.example.com"},      // extra member
		{"a.example.com", "a.example.com"},                       // duplicate
		{"a.example.com", "ghost.example.com"},                   // unknown member
	}
	for _, ids := range cases {
		if err := reg.Reorder(ids); !errors.Is(err, ErrInvalidReorder) {
			t.Errorf("Reorder(%v): expected ErrInvalidReorder, got: %v", ids, err)
		}
	}

	// Failed reorders leave the ring untouched.
	sites, err := reg.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if sites[0].ID != "a.example.com" || sites[1].ID != "b.example.com" {
		t.Fatalf("expected original order preserved, got %v", sites)
	}
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	reg := newTestRegistry(t)

	if _, err := reg.Add(model.Site{ID: "a.example.com", Name: "Alpha", URL: "https://a.example.com/"}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Remove("a.example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := reg.Remove("a.example.com"); err != nil {
		t.Fatalf("expected second Remove to be a no-op, got: %v", err)
	}

	sites, err := reg.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sites) != 0 {
		t.Fatalf("expected empty ring, got %v", sites)
	}
}
