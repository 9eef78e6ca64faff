package splitter

import (
	"context"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

// replaceShares drops every stored weight and writes entries as the new
// registry. entries must already be validated.
func (st *state) replaceShares(entries []revshare.Entry) error {
	old, err := st.cs.List(prefixShare)
	if err != nil {
		return err
	}
	for _, e := range old {
		if err := st.cs.Delete(e.Key); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := st.put(shareKey(e.Address), encodeAmount(int64(e.Weight)), st.bumpPersistent); err != nil {
			return err
		}
	}
	data, err := revshare.SerializeEntries(entries)
	if err != nil {
		return err
	}
	return st.put(keyShareholders, data, st.bumpPersistent)
}

// UpdateShares replaces the share registry. Assets named in settle are
// distributed under the outgoing weights first, in the same atomic step,
// so value accrued before the change is split the old way.
func (s *Splitter) UpdateShares(ctx context.Context, shares []revshare.Entry, settle ...auth.Address) error {
	return s.run(ctx, OpUpdateShares, UpdateSharesArgs(s.account, shares, settle...), func(ctx context.Context, st *state) error {
		cfg, err := s.requireAdmin(ctx, st)
		if err != nil {
			return err
		}
		if !cfg.Mutable {
			return ErrContractLocked
		}
		if err := revshare.ValidateShares(shares); err != nil {
			return err
		}
		for _, asset := range settle {
			if _, err := s.distribute(ctx, st, asset); err != nil {
				return err
			}
		}
		if err := st.replaceShares(shares); err != nil {
			return err
		}
		st.after(func() {
			s.log.Info().Int("holders", len(shares)).Int("settled", len(settle)).Msg("shares updated")
		})
		return nil
	})
}

// GetWeight returns holder's weight in basis points. ok is false when the
// holder is not registered.
func (s *Splitter) GetWeight(ctx context.Context, holder auth.Address) (weight uint64, ok bool, err error) {
	err = s.run(ctx, "get_weight", nil, func(_ context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		weight, ok, err = st.weight(holder)
		return err
	})
	return weight, ok, err
}

// ListEntries returns the registry in the order it was last written.
func (s *Splitter) ListEntries(ctx context.Context) ([]revshare.Entry, error) {
	var entries []revshare.Entry
	err := s.run(ctx, "list_entries", nil, func(_ context.Context, st *state) error {
		if _, err := st.config(); err != nil {
			return err
		}
		var err error
		entries, err = st.shareholders()
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
