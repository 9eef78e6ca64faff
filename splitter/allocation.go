package splitter

import (
	"context"
	"fmt"
	"math"

	"github.com/bitfsorg/libsplitter-go/auth"
)

// Allocation is the amount of asset owed to holder.
type Allocation struct {
	Holder auth.Address
	Asset  auth.Address
	Amount int64
}

// AuditReport summarizes the allocation state of one asset.
type AuditReport struct {
	Asset   auth.Address
	Balance int64 // held by the splitter in the asset ledger
	Total   int64 // running total of allocations
	Scanned int64 // sum of allocations found by scan
	Holders int
	Unused  int64
}

// credit adds amount to holder's allocation. A zero amount is a no-op and
// never creates an entry.
func (st *state) credit(holder, asset auth.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative credit %d", ErrConservationViolated, amount)
	}
	if amount == 0 {
		return nil
	}
	cur, err := st.allocation(holder, asset)
	if err != nil {
		return err
	}
	total, err := st.total(asset)
	if err != nil {
		return err
	}
	if cur > math.MaxInt64-amount || total > math.MaxInt64-amount {
		return fmt.Errorf("%w: credit of %d overflows", ErrConservationViolated, amount)
	}
	if err := st.setAllocation(holder, asset, cur+amount); err != nil {
		return err
	}
	return st.setTotal(asset, total+amount)
}

// debit removes amount from holder's allocation, deleting it at zero.
func (st *state) debit(holder, asset auth.Address, amount int64) error {
	if amount <= 0 {
		return ErrZeroWithdrawalAmount
	}
	cur, err := st.allocation(holder, asset)
	if err != nil {
		return err
	}
	if amount > cur {
		return fmt.Errorf("%w: requested %d, allocated %d", ErrWithdrawalAmountAboveAllocation, amount, cur)
	}
	total, err := st.total(asset)
	if err != nil {
		return err
	}
	if total < amount {
		return fmt.Errorf("%w: total %d below debit %d", ErrConservationViolated, total, amount)
	}
	if err := st.setAllocation(holder, asset, cur-amount); err != nil {
		return err
	}
	return st.setTotal(asset, total-amount)
}

// unused returns the held balance and the part of it not owed to anyone.
func (s *Splitter) unused(ctx context.Context, st *state, asset auth.Address) (balance, unused int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	balance, err = s.ledger.Balance(ctx, asset, s.account)
	if err != nil {
		return 0, 0, err
	}
	total, err := st.total(asset)
	if err != nil {
		return 0, 0, err
	}
	if total > balance {
		return 0, 0, fmt.Errorf("%w: allocated %d, balance %d", ErrConservationViolated, total, balance)
	}
	return balance, balance - total, nil
}

// GetAllocation returns what holder may withdraw of asset; zero when nothing
// is owed.
func (s *Splitter) GetAllocation(ctx context.Context, holder, asset auth.Address) (int64, error) {
	var amount int64
	err := s.run(ctx, "get_allocation", nil, func(_ context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		amount, err = st.allocation(holder, asset)
		return err
	})
	return amount, err
}

// TotalAllocated returns the sum of all allocations of asset.
func (s *Splitter) TotalAllocated(ctx context.Context, asset auth.Address) (int64, error) {
	var total int64
	err := s.run(ctx, "total_allocated", nil, func(_ context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		total, err = st.total(asset)
		return err
	})
	return total, err
}

// UnusedBalance returns the part of the held balance of asset that is not
// owed to any holder.
func (s *Splitter) UnusedBalance(ctx context.Context, asset auth.Address) (int64, error) {
	var unused int64
	err := s.run(ctx, "unused_balance", nil, func(ctx context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		_, unused, err = s.unused(ctx, st, asset)
		return err
	})
	return unused, err
}

// Allocations lists every holder owed some of asset, ordered by holder.
func (s *Splitter) Allocations(ctx context.Context, asset auth.Address) ([]Allocation, error) {
	var allocs []Allocation
	err := s.run(ctx, "allocations", nil, func(_ context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		allocs, err = st.allocations(asset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

// Audit recomputes the allocations of asset by scan and checks them against
// the running total and the held balance.
func (s *Splitter) Audit(ctx context.Context, asset auth.Address) (*AuditReport, error) {
	var report *AuditReport
	err := s.run(ctx, "audit", nil, func(ctx context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		allocs, err := st.allocations(asset)
		if err != nil {
			return err
		}
		total, err := st.total(asset)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		balance, err := s.ledger.Balance(ctx, asset, s.account)
		if err != nil {
			return err
		}
		r := &AuditReport{Asset: asset, Balance: balance, Total: total, Holders: len(allocs)}
		for _, a := range allocs {
			r.Scanned += a.Amount
		}
		report = r
		switch {
		case r.Scanned != total:
			return fmt.Errorf("%w: scanned %d, running total %d", ErrConservationViolated, r.Scanned, total)
		case total > balance:
			return fmt.Errorf("%w: allocated %d, balance %d", ErrConservationViolated, total, balance)
		}
		r.Unused = balance - total
		return nil
	})
	return report, err
}
