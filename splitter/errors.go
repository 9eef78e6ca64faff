package splitter

import (
	"errors"

	"github.com/bitfsorg/libsplitter-go/revshare"
)

var (
	// ErrNotInitialized indicates the splitter has no configuration yet.
	ErrNotInitialized = errors.New("splitter: not initialized")

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.New("splitter: already initialized")

	// ErrLowShareCount indicates a share set with fewer than two holders.
	ErrLowShareCount = revshare.ErrLowShareCount

	// ErrInvalidShareTotal indicates share weights not summing to 10000.
	ErrInvalidShareTotal = revshare.ErrInvalidShareTotal

	// ErrInvalidShareWeight indicates a weight of zero or above 10000.
	ErrInvalidShareWeight = revshare.ErrInvalidWeight

	// ErrDuplicateShareholder indicates a holder listed twice.
	ErrDuplicateShareholder = revshare.ErrDuplicateShareholder

	// ErrZeroTransferAmount indicates an admin transfer of zero or less.
	ErrZeroTransferAmount = errors.New("splitter: transfer amount must be positive")

	// ErrTransferAmountAboveBalance indicates an admin transfer above the held balance.
	ErrTransferAmountAboveBalance = errors.New("splitter: transfer amount above balance")

	// ErrTransferAmountAboveUnusedBalance indicates an admin transfer that
	// would dip into allocated funds.
	ErrTransferAmountAboveUnusedBalance = errors.New("splitter: transfer amount above unused balance")

	// ErrZeroWithdrawalAmount indicates a withdrawal of zero or less.
	ErrZeroWithdrawalAmount = errors.New("splitter: withdrawal amount must be positive")

	// ErrWithdrawalAmountAboveAllocation indicates a withdrawal above the
	// holder's allocation.
	ErrWithdrawalAmountAboveAllocation = errors.New("splitter: withdrawal amount above allocation")

	// ErrUnauthorized indicates the caller failed the identity check.
	ErrUnauthorized = errors.New("splitter: unauthorized")

	// ErrContractLocked indicates a share update after Lock.
	ErrContractLocked = errors.New("splitter: contract is locked")

	// ErrConservationViolated indicates allocations exceed the held balance
	// or disagree with the running total.
	ErrConservationViolated = errors.New("splitter: allocation conservation violated")

	// ErrInvalidStateData indicates a persisted entity fails to decode.
	ErrInvalidStateData = errors.New("splitter: invalid state data")
)
