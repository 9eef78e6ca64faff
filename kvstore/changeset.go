package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// DefaultMinTTL is the lifetime given to entries created by a change set.
const DefaultMinTTL = 24 * time.Hour

// ChangeSet buffers reads and writes against a Store and applies the writes
// in one batch on Commit. Reads see the change set's own pending writes.
// All lifetime calculations use a single timestamp taken by Begin.
//
// A ChangeSet is not safe for concurrent use.
type ChangeSet struct {
	store   Store
	now     time.Time
	minTTL  time.Duration
	retain  bool
	pending map[string]*Entry
	done    bool
}

// Option configures a ChangeSet.
type Option func(*ChangeSet)

// WithClock sets the time source used to stamp the change set.
func WithClock(now func() time.Time) Option {
	return func(c *ChangeSet) { c.now = now() }
}

// WithMinTTL sets the lifetime given to newly created entries.
func WithMinTTL(d time.Duration) Option {
	return func(c *ChangeSet) {
		if d > 0 {
			c.minTTL = d
		}
	}
}

// WithRetainExpired keeps expired entries visible. Lifetimes then only
// decide when ExtendTTL moves an expiry; an expired entry read through the
// change set is still returned and the next ExtendTTL restores it. Stores
// used this way must not be pruned.
func WithRetainExpired() Option {
	return func(c *ChangeSet) { c.retain = true }
}

// Begin starts a change set over s.
func Begin(s Store, opts ...Option) *ChangeSet {
	c := &ChangeSet{
		store:   s,
		now:     time.Now(),
		minTTL:  DefaultMinTTL,
		pending: make(map[string]*Entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Now returns the timestamp the change set evaluates expiry against.
func (c *ChangeSet) Now() time.Time { return c.now }

func (c *ChangeSet) lookup(key []byte) (*Entry, error) {
	if c.done {
		return nil, ErrClosed
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if e, ok := c.pending[string(key)]; ok {
		if e.Deleted {
			return nil, ErrNotFound
		}
		return e, nil
	}
	e, err := c.store.Get(key)
	if err != nil {
		return nil, err
	}
	if !c.retain && e.Expired(c.now) {
		return nil, ErrNotFound
	}
	return e, nil
}

// Get returns a copy of the live value for key.
func (c *ChangeSet) Get(key []byte) ([]byte, error) {
	e, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), e.Value...), nil
}

// Has reports whether key holds a live value.
func (c *ChangeSet) Has(key []byte) (bool, error) {
	_, err := c.lookup(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Put stages a value. An existing live entry keeps its lifetime; a new or
// expired entry lives for the minimum TTL.
func (c *ChangeSet) Put(key, value []byte) error {
	expires := c.now.Add(c.minTTL)
	existing, err := c.lookup(key)
	switch {
	case err == nil && !existing.Expired(c.now):
		expires = existing.ExpiresAt
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}
	c.pending[string(key)] = &Entry{
		Key:       append([]byte(nil), key...),
		Value:     append([]byte(nil), value...),
		ExpiresAt: expires,
	}
	return nil
}

// Delete stages the removal of key. Deleting an absent key is not an error.
func (c *ChangeSet) Delete(key []byte) error {
	if c.done {
		return ErrClosed
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	c.pending[string(key)] = &Entry{Key: append([]byte(nil), key...), Deleted: true}
	return nil
}

// ExtendTTL extends the lifetime of key to extendTo from now when its
// remaining lifetime is below threshold. Entries that never expire are left
// alone.
func (c *ChangeSet) ExtendTTL(key []byte, threshold, extendTo time.Duration) error {
	if threshold < 0 || extendTo < threshold {
		return fmt.Errorf("%w: threshold %s, extend to %s", ErrInvalidTTL, threshold, extendTo)
	}
	e, err := c.lookup(key)
	if err != nil {
		return err
	}
	if e.ExpiresAt.IsZero() || e.ExpiresAt.Sub(c.now) >= threshold {
		return nil
	}
	bumped := e.clone()
	bumped.ExpiresAt = c.now.Add(extendTo)
	c.pending[string(key)] = bumped
	return nil
}

// TTL returns the remaining lifetime of key. Zero means no expiry.
func (c *ChangeSet) TTL(key []byte) (time.Duration, error) {
	e, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	if e.ExpiresAt.IsZero() {
		return 0, nil
	}
	return e.ExpiresAt.Sub(c.now), nil
}

// List returns the live entries under prefix in key order, pending writes
// included.
func (c *ChangeSet) List(prefix []byte) ([]*Entry, error) {
	if c.done {
		return nil, ErrClosed
	}
	stored, err := c.store.List(prefix)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*Entry, len(stored))
	for _, e := range stored {
		merged[string(e.Key)] = e
	}
	for k, e := range c.pending {
		if bytes.HasPrefix(e.Key, prefix) {
			merged[k] = e
		}
	}

	result := make([]*Entry, 0, len(merged))
	for _, e := range merged {
		if e.Deleted || (!c.retain && e.Expired(c.now)) {
			continue
		}
		result = append(result, e.clone())
	}
	sortEntries(result)
	return result, nil
}

// Pending returns the number of staged writes.
func (c *ChangeSet) Pending() int { return len(c.pending) }

// Commit applies all staged writes atomically and closes the change set.
func (c *ChangeSet) Commit() error {
	if c.done {
		return ErrClosed
	}
	c.done = true
	if len(c.pending) == 0 {
		return nil
	}
	batch := make([]*Entry, 0, len(c.pending))
	for _, e := range c.pending {
		batch = append(batch, e)
	}
	sortEntries(batch)
	if err := c.store.Apply(batch); err != nil {
		return fmt.Errorf("kvstore: commit: %w", err)
	}
	return nil
}

// Discard drops all staged writes and closes the change set. Discarding a
// closed change set is a no-op.
func (c *ChangeSet) Discard() {
	c.done = true
	c.pending = nil
}
