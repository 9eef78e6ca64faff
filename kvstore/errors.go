package kvstore

import "errors"

var (
	// ErrNotFound indicates the key is absent or its entry has expired.
	ErrNotFound = errors.New("kvstore: not found")

	// ErrClosed indicates the change set was already committed or discarded.
	ErrClosed = errors.New("kvstore: change set closed")

	// ErrEmptyKey indicates a zero-length key.
	ErrEmptyKey = errors.New("kvstore: empty key")

	// ErrInvalidEntry indicates a stored entry fails to decode.
	ErrInvalidEntry = errors.New("kvstore: invalid stored entry")

	// ErrInvalidTTL indicates a negative or inverted TTL bound.
	ErrInvalidTTL = errors.New("kvstore: invalid ttl")
)
