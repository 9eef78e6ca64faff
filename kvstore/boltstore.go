package kvstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

// expiryPrefixSize is the length of the expiry header stored before each value.
const expiryPrefixSize = 8

// BoltStore persists entries in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("kvstore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", bucketEntries, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// encodeValue prefixes the payload with the expiry as big-endian unix nanos.
// Zero encodes "never expires".
func encodeValue(e *Entry) []byte {
	buf := make([]byte, expiryPrefixSize+len(e.Value))
	var nanos int64
	if !e.ExpiresAt.IsZero() {
		nanos = e.ExpiresAt.UnixNano()
	}
	binary.BigEndian.PutUint64(buf[:expiryPrefixSize], uint64(nanos))
	copy(buf[expiryPrefixSize:], e.Value)
	return buf
}

func decodeValue(key, data []byte) (*Entry, error) {
	if len(data) < expiryPrefixSize {
		return nil, fmt.Errorf("%w: %q has %d bytes", ErrInvalidEntry, key, len(data))
	}
	e := &Entry{
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), data[expiryPrefixSize:]...),
	}
	if nanos := int64(binary.BigEndian.Uint64(data[:expiryPrefixSize])); nanos != 0 {
		e.ExpiresAt = time.Unix(0, nanos)
	}
	return e, nil
}

// Get retrieves an entry by key.
func (s *BoltStore) Get(key []byte) (*Entry, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	var entry *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get(key)
		if data == nil {
			return ErrNotFound
		}
		var err error
		entry, err = decodeValue(key, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries under prefix in key order.
func (s *BoltStore) List(prefix []byte) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			e, err := decodeValue(k, v)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list: %w", err)
	}
	return entries, nil
}

// Apply writes the batch in one bbolt transaction.
func (s *BoltStore) Apply(entries []*Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for _, e := range entries {
			if len(e.Key) == 0 {
				return ErrEmptyKey
			}
			if e.Deleted {
				if err := b.Delete(e.Key); err != nil {
					return fmt.Errorf("boltstore: delete %q: %w", e.Key, err)
				}
				continue
			}
			if err := b.Put(e.Key, encodeValue(e)); err != nil {
				return fmt.Errorf("boltstore: put %q: %w", e.Key, err)
			}
		}
		return nil
	})
}

// Prune removes entries expired at now.
func (s *BoltStore) Prune(now time.Time) (int, error) {
	var n int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		var toDelete [][]byte
		err := b.ForEach(func(k, v []byte) error {
			e, err := decodeValue(k, v)
			if err != nil {
				return err
			}
			if e.Expired(now) {
				toDelete = append(toDelete, e.Key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("boltstore: prune %q: %w", k, err)
			}
		}
		n = len(toDelete)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
