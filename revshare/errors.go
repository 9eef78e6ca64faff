package revshare

import "errors"

var (
	// ErrInvalidRegistryData indicates the serialized registry is malformed.
	ErrInvalidRegistryData = errors.New("revshare: invalid registry data")

	// ErrLowShareCount indicates fewer than MinEntries shareholders.
	ErrLowShareCount = errors.New("revshare: at least two shareholders are required")

	// ErrTooManyEntries indicates more than MaxEntries shareholders.
	ErrTooManyEntries = errors.New("revshare: too many entries")

	// ErrInvalidWeight indicates a weight of zero or above BasisPoints.
	ErrInvalidWeight = errors.New("revshare: invalid share weight")

	// ErrDuplicateShareholder indicates an address appears twice in a share set.
	ErrDuplicateShareholder = errors.New("revshare: duplicate shareholder")

	// ErrInvalidShareTotal indicates the weights do not sum to BasisPoints.
	ErrInvalidShareTotal = errors.New("revshare: shares must sum to 10000")
)
