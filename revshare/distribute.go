package revshare

import (
	"math"
	"math/bits"
)

// ShareOf returns floor(amount * weight / BasisPoints). The product is
// computed in 128 bits, so it never overflows; results that do not fit in
// an int64 saturate. Non-positive amounts have no share.
func ShareOf(amount int64, weight uint64) int64 {
	if amount <= 0 || weight == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(amount), weight)
	if hi >= BasisPoints {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, BasisPoints)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// Split calculates per-shareholder amounts for amount. Each entry receives
// its floored share; entries whose share truncates to zero are omitted.
// The sum of the result never exceeds amount, and the difference stays
// undistributed (see Residual).
func Split(amount int64, entries []Entry) []Distribution {
	distributions := make([]Distribution, 0, len(entries))
	for _, entry := range entries {
		share := ShareOf(amount, entry.Weight)
		if share == 0 {
			continue
		}
		distributions = append(distributions, Distribution{Address: entry.Address, Amount: share})
	}
	return distributions
}

// Residual returns the part of amount not covered by distributions.
func Residual(amount int64, distributions []Distribution) int64 {
	for _, d := range distributions {
		amount -= d.Amount
	}
	return amount
}
