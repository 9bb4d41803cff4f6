package history

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a single executed command with its timestamp.
type Entry struct {
	Command   string
	Timestamp time.Time
}

// Store holds a bounded, ordered window of history entries, oldest first.
// Once the capacity is reached, appending evicts the oldest entry.
// Safe for concurrent use: the reload path and the UI read path touch it
// from different goroutines.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	max     int

	// path is the source file when the store was built by LoadFile.
	// Immutable after construction.
	path string

	// reload collapses concurrent Reload calls into a single file read.
	reload singleflight.Group
}

// NewStore creates an empty store holding at most max entries.
// A max below 1 is treated as 1.
func NewStore(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{
		entries: make([]Entry, 0, max),
		max:     max,
	}
}

// Append adds an entry, evicting the oldest one when the store is full.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.max {
		n := copy(s.entries, s.entries[1:])
		s.entries = s.entries[:n]
	}
	s.entries = append(s.entries, e)
}

// Entries returns a snapshot copy in insertion order, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cap returns the configured capacity.
func (s *Store) Cap() int {
	return s.max
}

// Path returns the source file the store was loaded from, if any.
func (s *Store) Path() string {
	return s.path
}

// ReplaceAll swaps the contents wholesale, keeping only the newest max
// entries when the input is larger than the capacity.
func (s *Store) ReplaceAll(entries []Entry) {
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	s.entries = append(s.entries, entries...)
}
