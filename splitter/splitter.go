// Package splitter implements a revenue-splitting ledger. Funds held by the
// splitter's account in an external asset ledger are divided among a fixed
// set of weighted shareholders; each holder withdraws its own allocation,
// and an admin may move only the part of the balance nobody is owed.
package splitter

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/config"
	"github.com/bitfsorg/libsplitter-go/kvstore"
	"github.com/bitfsorg/libsplitter-go/ledger"
)

// Operation names, bound into signed challenges by callers.
const (
	OpInitialize    = "initialize"
	OpDistribute    = "distribute"
	OpUpdateShares  = "update_shares"
	OpLock          = "lock"
	OpAdminTransfer = "admin_transfer"
	OpWithdraw      = "withdraw"
)

// Config is the splitter's administrative configuration.
type Config struct {
	Admin   auth.Address
	Mutable bool
}

// Splitter is the accounting engine. All methods are safe for concurrent
// use; operations are serialized and each one either commits all of its
// writes or none of them.
type Splitter struct {
	mu      sync.Mutex
	store   kvstore.Store
	ledger  ledger.Ledger
	auth    auth.Authorizer
	account auth.Address
	log     zerolog.Logger
	ttl     TTLPolicy
	now     func() time.Time
	closers []io.Closer
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Splitter) { s.log = l.With().Str("component", "splitter").Logger() }
}

// WithTTLPolicy overrides DefaultTTLPolicy.
func WithTTLPolicy(p TTLPolicy) Option {
	return func(s *Splitter) { s.ttl = p }
}

// WithConfig derives the TTL policy from a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Splitter) {
		s.ttl = TTLPolicy{
			InstanceThreshold:   cfg.InstanceThreshold(),
			InstanceExtendTo:    cfg.InstanceTTL,
			PersistentThreshold: cfg.PersistentThreshold(),
			PersistentExtendTo:  cfg.PersistentTTL,
		}
	}
}

// WithClock sets the time source used for entry lifetimes.
func WithClock(now func() time.Time) Option {
	return func(s *Splitter) { s.now = now }
}

// New returns a Splitter persisting to store. account is the splitter's own
// holder address in ledger; authorizer checks admin and holder identities.
func New(store kvstore.Store, l ledger.Ledger, authorizer auth.Authorizer, account auth.Address, opts ...Option) *Splitter {
	s := &Splitter{
		store:   store,
		ledger:  l,
		auth:    authorizer,
		account: account,
		log:     zerolog.Nop(),
		ttl:     DefaultTTLPolicy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Account returns the splitter's address in the asset ledger.
func (s *Splitter) Account() auth.Address { return s.account }

// run executes fn inside a fresh change set under the splitter lock and
// commits only if fn succeeds. Post-commit hooks run after a successful
// commit. args are the call's arguments as bound into signed challenges.
func (s *Splitter) run(ctx context.Context, op string, args [][]byte, fn func(ctx context.Context, st *state) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { observe(op, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	st := &state{
		cs:  kvstore.Begin(s.store, kvstore.WithClock(s.now), kvstore.WithRetainExpired()),
		ttl: s.ttl,
	}
	defer st.cs.Discard()

	if err := fn(auth.WithOperation(ctx, op, args...), st); err != nil {
		return err
	}
	if err := st.cs.Commit(); err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("commit failed")
		return err
	}
	for _, hook := range st.onCommit {
		hook()
	}
	return nil
}
