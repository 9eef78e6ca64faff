package splitter

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libsplitter-go/auth"
)

// AdminTransfer moves amount of asset from the splitter to recipient. Only
// the unused balance can leave this way; allocated funds stay reserved for
// their holders.
func (s *Splitter) AdminTransfer(ctx context.Context, asset, recipient auth.Address, amount int64) error {
	return s.run(ctx, OpAdminTransfer, AdminTransferArgs(s.account, asset, recipient, amount), func(ctx context.Context, st *state) error {
		if _, err := s.requireAdmin(ctx, st); err != nil {
			return err
		}
		if amount <= 0 {
			return ErrZeroTransferAmount
		}
		balance, unused, err := s.unused(ctx, st, asset)
		if err != nil {
			return err
		}
		if amount > balance {
			return fmt.Errorf("%w: requested %d, balance %d", ErrTransferAmountAboveBalance, amount, balance)
		}
		if amount > unused {
			return fmt.Errorf("%w: requested %d, unused %d", ErrTransferAmountAboveUnusedBalance, amount, unused)
		}
		if err := s.ledger.Transfer(ctx, asset, s.account, recipient, amount); err != nil {
			return fmt.Errorf("splitter: admin transfer: %w", err)
		}
		st.after(func() {
			mTransferred.Add(float64(amount))
			s.log.Info().Stringer("asset", asset).Stringer("to", recipient).Int64("amount", amount).Msg("admin transfer")
		})
		return nil
	})
}

// Withdraw pays amount of holder's allocation of asset out to holder. The
// caller must authenticate as holder.
func (s *Splitter) Withdraw(ctx context.Context, asset, holder auth.Address, amount int64) error {
	return s.run(ctx, OpWithdraw, WithdrawArgs(s.account, asset, holder, amount), func(ctx context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		if err := s.auth.RequireAuth(ctx, holder); err != nil {
			s.log.Warn().Err(err).Stringer("holder", holder).Msg("holder authorization rejected")
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		if err := st.debit(holder, asset, amount); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, asset, s.account, holder, amount); err != nil {
			return fmt.Errorf("splitter: withdraw: %w", err)
		}
		st.after(func() {
			mWithdrawn.Add(float64(amount))
			s.log.Info().Stringer("asset", asset).Stringer("holder", holder).Int64("amount", amount).Msg("withdrawn")
		})
		return nil
	})
}
