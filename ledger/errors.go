package ledger

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive mint or transfer amount.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")

	// ErrInsufficientBalance indicates the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrBalanceOverflow indicates a credit would overflow the recipient balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")

	// ErrInvalidBalanceData indicates a stored balance is malformed.
	ErrInvalidBalanceData = errors.New("ledger: invalid balance data")
)
