package splitter

import (
	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

// The functions below return the arguments a signed challenge must be bound
// to for each authorized operation, e.g.
//
//	auth.NewChallenge(OpWithdraw, WithdrawArgs(account, asset, holder, amount)...)
//
// account is the splitter's ledger account, so a proof cannot be reused
// against another splitter sharing the same admin or holder.

// LockArgs binds a Lock call.
func LockArgs(account auth.Address) [][]byte {
	return [][]byte{account[:]}
}

// UpdateSharesArgs binds an UpdateShares call.
func UpdateSharesArgs(account auth.Address, shares []revshare.Entry, settle ...auth.Address) [][]byte {
	reg := make([]byte, 0, len(shares)*(auth.AddressSize+amountSize))
	for _, e := range shares {
		reg = append(reg, e.Address[:]...)
		reg = append(reg, encodeAmount(int64(e.Weight))...)
	}
	assets := make([]byte, 0, len(settle)*auth.AddressSize)
	for _, a := range settle {
		assets = append(assets, a[:]...)
	}
	return [][]byte{account[:], reg, assets}
}

// AdminTransferArgs binds an AdminTransfer call.
func AdminTransferArgs(account, asset, recipient auth.Address, amount int64) [][]byte {
	return [][]byte{account[:], asset[:], recipient[:], encodeAmount(amount)}
}

// WithdrawArgs binds a Withdraw call.
func WithdrawArgs(account, asset, holder auth.Address, amount int64) [][]byte {
	return [][]byte{account[:], asset[:], holder[:], encodeAmount(amount)}
}
