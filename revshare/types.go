package revshare

import "github.com/bitfsorg/libsplitter-go/auth"

const (
	// BasisPoints is the total weight of a valid share set (100.00%).
	BasisPoints = 10000

	// MinEntries is the smallest share set worth splitting.
	MinEntries = 2

	// MaxEntries bounds the size of a share set so distribution cost stays
	// predictable.
	MaxEntries = 200
)

// Entry is a shareholder's record in the registry.
type Entry struct {
	Address auth.Address // Shareholder identity
	Weight  uint64       // Share in basis points, (0, BasisPoints]
}

// Distribution is a single credit produced by a split.
type Distribution struct {
	Address auth.Address
	Amount  int64
}

// FindEntry returns the index and entry for the given address, or -1 if not found.
func FindEntry(entries []Entry, addr auth.Address) (int, *Entry) {
	for i := range entries {
		if entries[i].Address == addr {
			return i, &entries[i]
		}
	}
	return -1, nil
}

// TotalWeight sums the weights of entries, saturating at the uint64 maximum.
func TotalWeight(entries []Entry) uint64 {
	var total uint64
	for _, e := range entries {
		if total+e.Weight < total {
			return ^uint64(0)
		}
		total += e.Weight
	}
	return total
}
