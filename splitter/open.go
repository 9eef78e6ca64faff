package splitter

import (
	"errors"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/config"
	"github.com/bitfsorg/libsplitter-go/kvstore"
	"github.com/bitfsorg/libsplitter-go/ledger"
	"github.com/bitfsorg/libsplitter-go/logging"
)

// Open builds a Splitter from cfg: a bbolt store at cfg.DBPath(), a
// signature authorizer honouring cfg.ChallengeTTL, the configured logger and
// TTL policy. opts are applied last. Close releases the store and log file.
func Open(cfg config.Config, l ledger.Ledger, account auth.Address, opts ...Option) (*Splitter, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	log, logCloser, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	store, err := kvstore.OpenBoltStore(cfg.DBPath())
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	authz := auth.NewSignatureAuthorizer(store, auth.WithChallengeTTL(cfg.ChallengeTTL))
	s := New(store, l, authz, account, append([]Option{WithLogger(log), WithConfig(cfg)}, opts...)...)
	s.closers = append(s.closers, store, logCloser)
	return s, nil
}

// Close releases resources acquired by Open. It is a no-op for a Splitter
// built with New.
func (s *Splitter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
