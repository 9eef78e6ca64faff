package splitter

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

// Initialize creates the configuration and the initial share registry. It
// can succeed only once per store.
func (s *Splitter) Initialize(ctx context.Context, admin auth.Address, shares []revshare.Entry, mutable bool) error {
	return s.run(ctx, OpInitialize, nil, func(ctx context.Context, st *state) error {
		exists, err := st.hasConfig()
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInitialized
		}
		if err := revshare.ValidateShares(shares); err != nil {
			return err
		}
		if err := st.putConfig(&Config{Admin: admin, Mutable: mutable}); err != nil {
			return err
		}
		if err := st.replaceShares(shares); err != nil {
			return err
		}
		st.after(func() {
			s.log.Info().
				Stringer("admin", admin).
				Int("holders", len(shares)).
				Bool("mutable", mutable).
				Msg("initialized")
		})
		return nil
	})
}

// requireAdmin loads the configuration and checks the caller is its admin.
func (s *Splitter) requireAdmin(ctx context.Context, st *state) (*Config, error) {
	cfg, err := st.config()
	if err != nil {
		return nil, err
	}
	if err := s.auth.RequireAuth(ctx, cfg.Admin); err != nil {
		op, _ := auth.OperationFrom(ctx)
		s.log.Warn().Err(err).Str("op", op).Msg("admin authorization rejected")
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return cfg, nil
}

// Lock freezes the share registry. Locking a locked splitter succeeds.
func (s *Splitter) Lock(ctx context.Context) error {
	return s.run(ctx, OpLock, LockArgs(s.account), func(ctx context.Context, st *state) error {
		cfg, err := s.requireAdmin(ctx, st)
		if err != nil {
			return err
		}
		if !cfg.Mutable {
			return nil
		}
		cfg.Mutable = false
		if err := st.putConfig(cfg); err != nil {
			return err
		}
		st.after(func() { s.log.Info().Msg("share registry locked") })
		return nil
	})
}

// IsLocked reports whether the share registry can no longer be updated.
func (s *Splitter) IsLocked(ctx context.Context) (bool, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return false, err
	}
	return !cfg.Mutable, nil
}

// GetConfig returns the current configuration.
func (s *Splitter) GetConfig(ctx context.Context) (*Config, error) {
	var cfg *Config
	err := s.run(ctx, "get_config", nil, func(_ context.Context, st *state) error {
		var err error
		cfg, err = st.config()
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
