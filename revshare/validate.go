package revshare

import (
	"fmt"

	"github.com/bitfsorg/libsplitter-go/auth"
)

// ValidateShares checks that entries form a valid share set: between
// MinEntries and MaxEntries distinct shareholders whose weights are each in
// (0, BasisPoints] and sum to exactly BasisPoints.
func ValidateShares(entries []Entry) error {
	switch n := len(entries); {
	case n < MinEntries:
		return fmt.Errorf("%w: got %d", ErrLowShareCount, n)
	case n > MaxEntries:
		return fmt.Errorf("%w: %d > %d", ErrTooManyEntries, n, MaxEntries)
	}

	seen := make(map[auth.Address]struct{}, len(entries))
	for i, e := range entries {
		if e.Weight == 0 || e.Weight > BasisPoints {
			return fmt.Errorf("%w: entry %d has weight %d", ErrInvalidWeight, i, e.Weight)
		}
		if _, ok := seen[e.Address]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateShareholder, e.Address)
		}
		seen[e.Address] = struct{}{}
	}

	// Each weight is at most BasisPoints and there are at most MaxEntries,
	// so the sum cannot overflow.
	if total := TotalWeight(entries); total != BasisPoints {
		return fmt.Errorf("%w: got %d", ErrInvalidShareTotal, total)
	}
	return nil
}
