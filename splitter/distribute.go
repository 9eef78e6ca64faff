package splitter

import (
	"context"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

// DistributionResult describes one distribution of an asset.
type DistributionResult struct {
	Asset    auth.Address
	Balance  int64 // held balance when the distribution ran
	Inflow   int64 // part of Balance not yet owed to anyone
	Credited int64
	Residual int64 // floor remainder of Inflow, left unused
	Credits  []revshare.Distribution
}

// Distribute splits the not-yet-allocated part of the splitter's balance of
// asset among the registered holders by weight. Anyone may call it; calling
// it again without new inflow credits nothing.
func (s *Splitter) Distribute(ctx context.Context, asset auth.Address) (*DistributionResult, error) {
	var result *DistributionResult
	err := s.run(ctx, OpDistribute, nil, func(ctx context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		result, err = s.distribute(ctx, st, asset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Splitter) distribute(ctx context.Context, st *state, asset auth.Address) (*DistributionResult, error) {
	balance, inflow, err := s.unused(ctx, st, asset)
	if err != nil {
		return nil, err
	}
	entries, err := st.shareholders()
	if err != nil {
		return nil, err
	}

	credits := revshare.Split(inflow, entries)
	for _, c := range credits {
		if err := st.credit(c.Address, asset, c.Amount); err != nil {
			return nil, err
		}
	}

	r := &DistributionResult{
		Asset:    asset,
		Balance:  balance,
		Inflow:   inflow,
		Credits:  credits,
		Residual: revshare.Residual(inflow, credits),
	}
	r.Credited = inflow - r.Residual
	if skipped := len(entries) - len(credits); skipped > 0 {
		s.log.Debug().Stringer("asset", asset).Int("skipped", skipped).Msg("zero credits skipped")
	}
	st.after(func() {
		mCredited.Add(float64(r.Credited))
		s.log.Info().
			Stringer("asset", asset).
			Int64("inflow", r.Inflow).
			Int64("credited", r.Credited).
			Int64("residual", r.Residual).
			Msg("distributed")
	})
	return r, nil
}
