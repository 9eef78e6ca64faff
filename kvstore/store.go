package kvstore

import (
	"bytes"
	"sort"
	"sync"
	"time"
)

// Entry is a stored value with its retention deadline.
type Entry struct {
	Key       []byte
	Value     []byte
	ExpiresAt time.Time // Zero means the entry never expires
	Deleted   bool      // Only meaningful in Apply batches
}

// Expired reports whether the entry's lifetime has ended at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

func (e *Entry) clone() *Entry {
	return &Entry{
		Key:       append([]byte(nil), e.Key...),
		Value:     append([]byte(nil), e.Value...),
		ExpiresAt: e.ExpiresAt,
		Deleted:   e.Deleted,
	}
}

// Store persists entries. Stores do not interpret expiry: they return
// expired entries until pruned, and the ChangeSet hides them from readers
// unless it was begun WithRetainExpired.
type Store interface {
	// Get returns the entry for key or ErrNotFound.
	Get(key []byte) (*Entry, error)

	// List returns all entries whose key starts with prefix, in key order.
	List(prefix []byte) ([]*Entry, error)

	// Apply writes a batch atomically. Entries with Deleted set are removed.
	Apply(entries []*Entry) error

	// Prune removes entries expired at now and returns how many were removed.
	Prune(now time.Time) (int, error)

	// Close releases the store.
	Close() error
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]*Entry)}
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// Get returns the entry for key.
func (s *MemStore) Get(key []byte) (*Entry, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return e.clone(), nil
}

// List returns entries under prefix in key order.
func (s *MemStore) List(prefix []byte) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for k, e := range s.entries {
		if bytes.HasPrefix([]byte(k), prefix) {
			result = append(result, e.clone())
		}
	}
	sortEntries(result)
	return result, nil
}

// Apply writes the batch under a single lock.
func (s *MemStore) Apply(entries []*Entry) error {
	for _, e := range entries {
		if len(e.Key) == 0 {
			return ErrEmptyKey
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e.Deleted {
			delete(s.entries, string(e.Key))
			continue
		}
		s.entries[string(e.Key)] = e.clone()
	}
	return nil
}

// Prune removes expired entries.
func (s *MemStore) Prune(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// Len returns the number of stored entries, expired ones included.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key, entries[j].Key) < 0
	})
}
