package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		err := s.Save(Entry{
			Text:      fmt.Sprintf("entry %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	entries, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Text != "entry 2" || entries[2].Text != "entry 0" {
		t.Errorf("order = [%s, %s, %s], want newest first", entries[0].Text, entries[1].Text, entries[2].Text)
	}
	if entries[0].ID == uuid.Nil {
		t.Error("saved entry missing generated ID")
	}
}

func TestSaveTrimsAndDropsEmpty(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(Entry{Text: "  hello  "}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(Entry{Text: "   "}); err != nil {
		t.Fatalf("Save empty: %v", err)
	}

	entries, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1 (whitespace-only dropped)", len(entries))
	}
	if entries[0].Text != "hello" {
		t.Errorf("text = %q, want trimmed", entries[0].Text)
	}
}

func TestEvictionCap(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < MaxEntries+5; i++ {
		err := s.Save(Entry{
			Text:      fmt.Sprintf("entry %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	entries, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Fatalf("len = %d, want %d", len(entries), MaxEntries)
	}
	if entries[0].Text != fmt.Sprintf("entry %d", MaxEntries+4) {
		t.Errorf("newest = %q", entries[0].Text)
	}
	if entries[len(entries)-1].Text != "entry 5" {
		t.Errorf("oldest = %q, want entry 5 (0-4 evicted)", entries[len(entries)-1].Text)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	id := uuid.New()
	if err := s.Save(Entry{ID: id, Text: "keep me not"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(Entry{Text: "keep me", CreatedAt: time.Now().Add(time.Second)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries, _ := s.Recent(0)
	if len(entries) != 1 || entries[0].Text != "keep me" {
		t.Errorf("entries = %v, want only the kept entry", entries)
	}

	if err := s.Delete(uuid.New()); err != nil {
		t.Errorf("Delete unknown id: %v", err)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)

	s.Save(Entry{Text: "one"})
	s.Save(Entry{Text: "two", CreatedAt: time.Now().Add(time.Second)})
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d after Clear, want 0", len(entries))
	}
}
