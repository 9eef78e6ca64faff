// Package ledger defines the asset ledger the splitter draws balances from
// and instructs to move value, plus a store-backed reference implementation.
package ledger

import (
	"context"

	"github.com/bitfsorg/libsplitter-go/auth"
)

// Ledger holds real balances of assets and executes transfers between
// accounts. The splitter never moves value itself; it only calls Transfer
// after deciding an amount is owed.
type Ledger interface {
	// Balance returns the amount of asset held by owner.
	Balance(ctx context.Context, asset, owner auth.Address) (int64, error)

	// Transfer moves amount of asset from one account to another.
	Transfer(ctx context.Context, asset, from, to auth.Address, amount int64) error
}
