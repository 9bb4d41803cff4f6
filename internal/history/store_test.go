package history

import (
	"testing"
	"time"
)

func entry(cmd string, ts int64) Entry {
	return Entry{Command: cmd, Timestamp: time.Unix(ts, 0)}
}

func TestNewStoreClampsCapacity(t *testing.T) {
	s := NewStore(0)
	if s.Cap() != 1 {
		t.Errorf("expected capacity 1, got %d", s.Cap())
	}

	s = NewStore(100)
	if s.Cap() != 100 {
		t.Errorf("expected capacity 100, got %d", s.Cap())
	}
}

func TestStoreAppendEvictsOldest(t *testing.T) {
	s := NewStore(3)
	s.Append(entry("a", 1))
	s.Append(entry("b", 2))
	s.Append(entry("c", 3))
	s.Append(entry("d", 4))

	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}

	got := s.Entries()
	want := []string{"b", "c", "d"}
	for i, w := range want {
		if got[i].Command != w {
			t.Errorf("entry %d: expected %q, got %q", i, w, got[i].Command)
		}
	}
}

func TestStoreEntriesReturnsCopy(t *testing.T) {
	s := NewStore(5)
	s.Append(entry("original", 1))

	snapshot := s.Entries()
	snapshot[0].Command = "mutated"

	if got := s.Entries()[0].Command; got != "original" {
		t.Errorf("store was mutated through snapshot: got %q", got)
	}
}

func TestStoreReplaceAll(t *testing.T) {
	s := NewStore(2)
	s.Append(entry("old", 1))

	s.ReplaceAll([]Entry{entry("a", 1), entry("b", 2), entry("c", 3)})

	if s.Len() != 2 {
		t.Fatalf("expected 2 entries after replace, got %d", s.Len())
	}

	got := s.Entries()
	if got[0].Command != "b" || got[1].Command != "c" {
		t.Errorf("expected newest entries [b c], got [%s %s]", got[0].Command, got[1].Command)
	}
}

func TestStoreReplaceAllEmpty(t *testing.T) {
	s := NewStore(2)
	s.Append(entry("old", 1))

	s.ReplaceAll(nil)

	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}

func TestStorePreservesInsertionOrder(t *testing.T) {
	s := NewStore(10)
	commands := []string{"first", "second", "third"}
	for i, cmd := range commands {
		s.Append(entry(cmd, int64(i)))
	}

	got := s.Entries()
	for i, want := range commands {
		if got[i].Command != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Command)
		}
	}
}
