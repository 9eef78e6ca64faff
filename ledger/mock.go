package ledger

import (
	"context"

	"github.com/bitfsorg/libsplitter-go/auth"
)

// MockLedger is a test double for Ledger.
// All function fields must be set before the corresponding method is called.
type MockLedger struct {
	BalanceFn  func(ctx context.Context, asset, owner auth.Address) (int64, error)
	TransferFn func(ctx context.Context, asset, from, to auth.Address, amount int64) error
}

// Compile-time interface check.
var _ Ledger = (*MockLedger)(nil)

// Balance calls BalanceFn.
func (m *MockLedger) Balance(ctx context.Context, asset, owner auth.Address) (int64, error) {
	return m.BalanceFn(ctx, asset, owner)
}

// Transfer calls TransferFn.
func (m *MockLedger) Transfer(ctx context.Context, asset, from, to auth.Address, amount int64) error {
	return m.TransferFn(ctx, asset, from, to, amount)
}
