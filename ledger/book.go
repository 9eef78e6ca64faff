package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/kvstore"
)

const balanceSize = 8

var balancePrefix = []byte("ledger/balance/")

// Book is a Ledger backed by a kvstore.Store. Balance entries never expire.
type Book struct {
	mu    sync.Mutex
	store kvstore.Store
}

// Compile-time interface check.
var _ Ledger = (*Book)(nil)

// NewBook creates a ledger over store.
func NewBook(store kvstore.Store) *Book {
	return &Book{store: store}
}

func balanceKey(asset, owner auth.Address) []byte {
	key := make([]byte, 0, len(balancePrefix)+2*auth.AddressSize)
	key = append(key, balancePrefix...)
	key = append(key, asset[:]...)
	return append(key, owner[:]...)
}

// Balance returns the amount of asset held by owner; unknown accounts hold zero.
func (b *Book) Balance(ctx context.Context, asset, owner auth.Address) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance(asset, owner)
}

func (b *Book) balance(asset, owner auth.Address) (int64, error) {
	e, err := b.store.Get(balanceKey(asset, owner))
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("ledger: read balance: %w", err)
	}
	if len(e.Value) != balanceSize {
		return 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidBalanceData, balanceSize, len(e.Value))
	}
	return int64(binary.BigEndian.Uint64(e.Value)), nil
}

func balanceEntry(asset, owner auth.Address, amount int64) *kvstore.Entry {
	key := balanceKey(asset, owner)
	if amount == 0 {
		return &kvstore.Entry{Key: key, Deleted: true}
	}
	v := make([]byte, balanceSize)
	binary.BigEndian.PutUint64(v, uint64(amount))
	return &kvstore.Entry{Key: key, Value: v}
}

// Mint creates amount of asset in the to account.
func (b *Book) Mint(ctx context.Context, asset, to auth.Address, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bal, err := b.balance(asset, to)
	if err != nil {
		return err
	}
	if bal > math.MaxInt64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}
	return b.store.Apply([]*kvstore.Entry{balanceEntry(asset, to, bal+amount)})
}

// Transfer moves amount of asset between accounts in one store batch.
func (b *Book) Transfer(ctx context.Context, asset, from, to auth.Address, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBal, err := b.balance(asset, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, from, fromBal, amount)
	}
	if from == to {
		return nil
	}
	toBal, err := b.balance(asset, to)
	if err != nil {
		return err
	}
	if toBal > math.MaxInt64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}

	return b.store.Apply([]*kvstore.Entry{
		balanceEntry(asset, from, fromBal-amount),
		balanceEntry(asset, to, toBal+amount),
	})
}
