package splitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsplitter-go/auth"
	"github.com/bitfsorg/libsplitter-go/kvstore"
	"github.com/bitfsorg/libsplitter-go/ledger"
	"github.com/bitfsorg/libsplitter-go/revshare"
)

func makeAddr(seed byte) auth.Address {
	var addr auth.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

var (
	admin    = makeAddr(0xAD)
	holderA  = makeAddr(0xA1)
	holderB  = makeAddr(0xB2)
	holderC  = makeAddr(0xC3)
	outsider = makeAddr(0x0F)
	account  = makeAddr(0x5C)
	token    = makeAddr(0x70)
)

func sharesAB() []revshare.Entry {
	return []revshare.Entry{
		{Address: holderA, Weight: 8050},
		{Address: holderB, Weight: 1950},
	}
}

type fixture struct {
	s     *Splitter
	store *kvstore.MemStore
	book  *ledger.Book
	authz *auth.MockAuthorizer
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: kvstore.NewMemStore(),
		book:  ledger.NewBook(kvstore.NewMemStore()),
		authz: auth.NewMockAuthorizer(admin, holderA, holderB, holderC),
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.s = New(f.store, f.book, f.authz, account, WithClock(func() time.Time { return f.now }))
	return f
}

// initialized returns a fixture initialized with sharesAB.
func initialized(t *testing.T, mutable bool) *fixture {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.s.Initialize(context.Background(), admin, sharesAB(), mutable))
	return f
}

func (f *fixture) fund(t *testing.T, amount int64) {
	t.Helper()
	require.NoError(t, f.book.Mint(context.Background(), token, account, amount))
}

func (f *fixture) balance(t *testing.T, owner auth.Address) int64 {
	t.Helper()
	bal, err := f.book.Balance(context.Background(), token, owner)
	require.NoError(t, err)
	return bal
}

func (f *fixture) allocation(t *testing.T, holder auth.Address) int64 {
	t.Helper()
	amount, err := f.s.GetAllocation(context.Background(), holder, token)
	require.NoError(t, err)
	return amount
}

// snapshot copies every stored entry for before/after comparisons.
func (f *fixture) snapshot(t *testing.T) []*kvstore.Entry {
	t.Helper()
	entries, err := f.store.List(nil)
	require.NoError(t, err)
	return entries
}

// --- Initialize ---

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	f := initialized(t, true)

	cfg, err := f.s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, cfg.Admin)
	assert.True(t, cfg.Mutable)

	entries, err := f.s.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, sharesAB(), entries)

	w, ok, err := f.s.GetWeight(ctx, holderA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(8050), w)

	_, ok, err = f.s.GetWeight(ctx, outsider)
	require.NoError(t, err)
	assert.False(t, ok)

	locked, err := f.s.IsLocked(ctx)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestInitialize_Twice(t *testing.T) {
	f := initialized(t, true)
	err := f.s.Initialize(context.Background(), outsider, sharesAB(), false)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	cfg, err := f.s.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, admin, cfg.Admin)
}

func TestInitialize_InvalidShares(t *testing.T) {
	tests := []struct {
		name   string
		shares []revshare.Entry
		want   error
	}{
		{"empty", nil, ErrLowShareCount},
		{"single holder", []revshare.Entry{{Address: holderA, Weight: 10000}}, ErrLowShareCount},
		{"sum below", []revshare.Entry{{Address: holderA, Weight: 5000}, {Address: holderB, Weight: 4999}}, ErrInvalidShareTotal},
		{"sum above", []revshare.Entry{{Address: holderA, Weight: 5000}, {Address: holderB, Weight: 5001}}, ErrInvalidShareTotal},
		{"zero weight", []revshare.Entry{{Address: holderA, Weight: 10000}, {Address: holderB, Weight: 0}}, ErrInvalidShareWeight},
		{"duplicate", []revshare.Entry{{Address: holderA, Weight: 5000}, {Address: holderA, Weight: 5000}}, ErrDuplicateShareholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.s.Initialize(context.Background(), admin, tt.shares, true)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.Len(), "failed initialize must not persist anything")

			_, err = f.s.GetConfig(context.Background())
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestInitialize_RevshareSentinelsMatch(t *testing.T) {
	f := newFixture(t)
	err := f.s.Initialize(context.Background(), admin, []revshare.Entry{{Address: holderA, Weight: 10000}}, true)
	assert.ErrorIs(t, err, ErrLowShareCount)
	assert.ErrorIs(t, err, revshare.ErrLowShareCount)
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, 100)

	ops := map[string]func() error{
		"distribute": func() error { _, err := f.s.Distribute(ctx, token); return err },
		"update":     func() error { return f.s.UpdateShares(ctx, sharesAB()) },
		"lock":       func() error { return f.s.Lock(ctx) },
		"is_locked":  func() error { _, err := f.s.IsLocked(ctx); return err },
		"transfer":   func() error { return f.s.AdminTransfer(ctx, token, admin, 1) },
		"withdraw":   func() error { return f.s.Withdraw(ctx, token, holderA, 1) },
		"config":     func() error { _, err := f.s.GetConfig(ctx); return err },
		"weight":     func() error { _, _, err := f.s.GetWeight(ctx, holderA); return err },
		"entries":    func() error { _, err := f.s.ListEntries(ctx); return err },
		"allocation": func() error { _, err := f.s.GetAllocation(ctx, holderA, token); return err },
		"total":      func() error { _, err := f.s.TotalAllocated(ctx, token); return err },
		"unused":     func() error { _, err := f.s.UnusedBalance(ctx, token); return err },
		"list":       func() error { _, err := f.s.Allocations(ctx, token); return err },
		"audit":      func() error { _, err := f.s.Audit(ctx, token); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrNotInitialized)
		})
	}
	assert.Equal(t, int64(100), f.balance(t, account))
}

func TestCancelledContext(t *testing.T) {
	f := initialized(t, true)
	f.fund(t, 1000)
	before := f.snapshot(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.s.Distribute(ctx, token)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.s.Withdraw(ctx, token, holderA, 1), context.Canceled)
	assert.ErrorIs(t, f.s.Initialize(ctx, admin, sharesAB(), true), context.Canceled)
	assert.Equal(t, before, f.snapshot(t))
}

// --- TTL ---

func TestTTL_WritesUsePolicy(t *testing.T) {
	f := initialized(t, true)

	cfg, err := f.store.Get(keyConfig)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(DefaultTTLPolicy.InstanceExtendTo), cfg.ExpiresAt)

	share, err := f.store.Get(shareKey(holderA))
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(DefaultTTLPolicy.PersistentExtendTo), share.ExpiresAt)
}

func TestTTL_ReadsExtendLifetime(t *testing.T) {
	ctx := context.Background()
	f := initialized(t, true)
	start := f.now

	// Within the threshold nothing moves.
	f.now = start.Add(12 * time.Hour)
	_, err := f.s.GetConfig(ctx)
	require.NoError(t, err)
	cfg, err := f.store.Get(keyConfig)
	require.NoError(t, err)
	assert.Equal(t, start.Add(7*day), cfg.ExpiresAt)

	// Past it the entry is extended from now.
	f.now = start.Add(2 * day)
	_, err = f.s.GetConfig(ctx)
	require.NoError(t, err)
	cfg, err = f.store.Get(keyConfig)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(7*day), cfg.ExpiresAt)

	_, _, err = f.s.GetWeight(ctx, holderB)
	require.NoError(t, err)
	share, err := f.store.Get(shareKey(holderB))
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(30*day), share.ExpiresAt)
}

// --- Idle periods ---

func TestIdle_ConfigOutlivesTTL(t *testing.T) {
	ctx := context.Background()
	f := initialized(t, false)

	for _, idle := range []time.Duration{8 * day, 365 * day} {
		f.now = f.now.Add(idle)

		err := f.s.Initialize(ctx, outsider, sharesAB(), true)
		assert.ErrorIs(t, err, ErrAlreadyInitialized)

		cfg, err := f.s.GetConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, admin, cfg.Admin)
		assert.False(t, cfg.Mutable)

		assert.ErrorIs(t, f.s.UpdateShares(ctx, sharesAB()), ErrContractLocked)
		entries, err := f.s.ListEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, sharesAB(), entries)
	}
}

func TestIdle_UntouchedAllocationSurvives(t *testing.T) {
	ctx := context.Background()
	f := initialized(t, true)
	f.fund(t, 1_000_000)
	_, err := f.s.Distribute(ctx, token)
	require.NoError(t, err)

	// Only holderA and the running total are touched for 50 days.
	for i := 0; i < 10; i++ {
		f.now = f.now.Add(5 * day)
		assert.Equal(t, int64(805_000), f.allocation(t, holderA))
		_, err := f.s.TotalAllocated(ctx, token)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(195_000), f.allocation(t, holderB))
	report, err := f.s.Audit(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), report.Scanned)
}

func TestIdle_NothingTouchedPastEveryTTL(t *testing.T) {
	ctx := context.Background()
	f := initialized(t, true)
	f.fund(t, 1000)
	_, err := f.s.Distribute(ctx, token)
	require.NoError(t, err)

	f.now = f.now.Add(100 * day)

	// Allocated funds stay reserved.
	err = f.s.AdminTransfer(ctx, token, outsider, 1)
	assert.ErrorIs(t, err, ErrTransferAmountAboveUnusedBalance)
	unused, err := f.s.UnusedBalance(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, unused)

	res, err := f.s.Distribute(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, res.Inflow)

	report, err := f.s.Audit(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), report.Total)
	assert.Equal(t, int64(1000), report.Scanned)

	require.NoError(t, f.s.Withdraw(ctx, token, holderB, 195))
	assert.Equal(t, int64(195), f.balance(t, holderB))
	assert.Equal(t, int64(805), f.allocation(t, holderA))
}

func TestIdle_AccessRestoresLifetime(t *testing.T) {
	ctx := context.Background()
	f := distributed(t)
	f.now = f.now.Add(100 * day)

	assert.Equal(t, int64(195), f.allocation(t, holderB))
	e, err := f.store.Get(allocKey(holderB, token))
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(DefaultTTLPolicy.PersistentExtendTo), e.ExpiresAt)

	_, err = f.s.GetConfig(ctx)
	require.NoError(t, err)
	e, err = f.store.Get(keyConfig)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(DefaultTTLPolicy.InstanceExtendTo), e.ExpiresAt)
}
