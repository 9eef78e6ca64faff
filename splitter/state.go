package splitter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/kvstore"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

// Storage layout. Holder and asset addresses are appended as raw bytes.
var (
	keyConfig       = []byte("config")
	keyShareholders = []byte("shareholders")
	prefixShare     = []byte("share/")
	prefixAlloc     = []byte("alloc/") // alloc/<asset><holder>
	prefixTotal     = []byte("total/") // total/<asset>
)

const (
	configSize = auth.AddressSize + 1 // admin(20) + mutable(1)
	amountSize = 8
	day        = 24 * time.Hour
)

// TTLPolicy controls how far reads and writes extend entry lifetimes.
// Instance entries hold the configuration; persistent entries hold the
// registry, allocations and totals.
type TTLPolicy struct {
	InstanceThreshold   time.Duration
	InstanceExtendTo    time.Duration
	PersistentThreshold time.Duration
	PersistentExtendTo  time.Duration
}

// DefaultTTLPolicy keeps the configuration alive for a week and everything
// else for thirty days, extending once a day of lifetime has been used.
var DefaultTTLPolicy = TTLPolicy{
	InstanceThreshold:   6 * day,
	InstanceExtendTo:    7 * day,
	PersistentThreshold: 29 * day,
	PersistentExtendTo:  30 * day,
}

func shareKey(holder auth.Address) []byte {
	return append(append([]byte(nil), prefixShare...), holder[:]...)
}

func allocPrefix(asset auth.Address) []byte {
	return append(append([]byte(nil), prefixAlloc...), asset[:]...)
}

func allocKey(holder, asset auth.Address) []byte {
	return append(allocPrefix(asset), holder[:]...)
}

func totalKey(asset auth.Address) []byte {
	return append(append([]byte(nil), prefixTotal...), asset[:]...)
}

func encodeAmount(v int64) []byte {
	buf := make([]byte, amountSize)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

func decodeAmount(data []byte) (int64, error) {
	if len(data) != amountSize {
		return 0, fmt.Errorf("%w: amount has %d bytes", ErrInvalidStateData, len(data))
	}
	v := int64(binary.BigEndian.Uint64(data))
	if v < 0 {
		return 0, fmt.Errorf("%w: negative amount %d", ErrInvalidStateData, v)
	}
	return v, nil
}

// state is the typed view of one operation's change set. Every successful
// read or write of an entry extends its lifetime per the policy.
type state struct {
	cs       *kvstore.ChangeSet
	ttl      TTLPolicy
	onCommit []func()
}

// after registers fn to run once the change set has been committed.
func (st *state) after(fn func()) { st.onCommit = append(st.onCommit, fn) }

func (st *state) bumpInstance(key []byte) error {
	return st.cs.ExtendTTL(key, st.ttl.InstanceThreshold, st.ttl.InstanceExtendTo)
}

func (st *state) bumpPersistent(key []byte) error {
	return st.cs.ExtendTTL(key, st.ttl.PersistentThreshold, st.ttl.PersistentExtendTo)
}

// get reads key, returning ok=false when absent, and bumps it when present.
func (st *state) get(key []byte, bump func([]byte) error) ([]byte, bool, error) {
	v, err := st.cs.Get(key)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if err := bump(key); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (st *state) put(key, value []byte, bump func([]byte) error) error {
	if err := st.cs.Put(key, value); err != nil {
		return err
	}
	return bump(key)
}

// --- configuration ---

func (st *state) config() (*Config, error) {
	v, ok, err := st.get(keyConfig, st.bumpInstance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if len(v) != configSize {
		return nil, fmt.Errorf("%w: config has %d bytes", ErrInvalidStateData, len(v))
	}
	cfg := &Config{Mutable: v[auth.AddressSize] == 1}
	copy(cfg.Admin[:], v[:auth.AddressSize])
	return cfg, nil
}

func (st *state) hasConfig() (bool, error) {
	return st.cs.Has(keyConfig)
}

func (st *state) putConfig(cfg *Config) error {
	v := make([]byte, configSize)
	copy(v, cfg.Admin[:])
	if cfg.Mutable {
		v[auth.AddressSize] = 1
	}
	return st.put(keyConfig, v, st.bumpInstance)
}

// --- share registry ---

func (st *state) shareholders() ([]revshare.Entry, error) {
	v, ok, err := st.get(keyShareholders, st.bumpPersistent)
	if err != nil || !ok {
		return nil, err
	}
	entries, err := revshare.DeserializeEntries(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStateData, err)
	}
	return entries, nil
}

func (st *state) weight(holder auth.Address) (uint64, bool, error) {
	v, ok, err := st.get(shareKey(holder), st.bumpPersistent)
	if err != nil || !ok {
		return 0, false, err
	}
	w, err := decodeAmount(v)
	if err != nil {
		return 0, false, err
	}
	return uint64(w), true, nil
}

// --- allocations ---

func (st *state) allocation(holder, asset auth.Address) (int64, error) {
	v, ok, err := st.get(allocKey(holder, asset), st.bumpPersistent)
	if err != nil || !ok {
		return 0, err
	}
	return decodeAmount(v)
}

func (st *state) setAllocation(holder, asset auth.Address, amount int64) error {
	key := allocKey(holder, asset)
	if amount == 0 {
		return st.cs.Delete(key)
	}
	return st.put(key, encodeAmount(amount), st.bumpPersistent)
}

func (st *state) total(asset auth.Address) (int64, error) {
	v, ok, err := st.get(totalKey(asset), st.bumpPersistent)
	if err != nil || !ok {
		return 0, err
	}
	return decodeAmount(v)
}

func (st *state) setTotal(asset auth.Address, amount int64) error {
	key := totalKey(asset)
	if amount == 0 {
		return st.cs.Delete(key)
	}
	return st.put(key, encodeAmount(amount), st.bumpPersistent)
}

// allocations scans every live allocation of asset.
func (st *state) allocations(asset auth.Address) ([]Allocation, error) {
	prefix := allocPrefix(asset)
	entries, err := st.cs.List(prefix)
	if err != nil {
		return nil, err
	}
	result := make([]Allocation, 0, len(entries))
	for _, e := range entries {
		if len(e.Key) != len(prefix)+auth.AddressSize {
			return nil, fmt.Errorf("%w: allocation key %x", ErrInvalidStateData, e.Key)
		}
		amount, err := decodeAmount(e.Value)
		if err != nil {
			return nil, err
		}
		a := Allocation{Asset: asset, Amount: amount}
		copy(a.Holder[:], e.Key[len(prefix):])
		if err := st.bumpPersistent(e.Key); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}
