package auth

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"

	"github.com/bitfsorg/libsplitter-go/kvstore"
)

const (
	// DefaultChallengeTTL is how long after issue a challenge is accepted.
	DefaultChallengeTTL = 24 * time.Hour

	// MaxClockSkew is how far in the future a challenge may be dated.
	MaxClockSkew = time.Minute
)

var usedPrefix = []byte("auth/used/")

// SignatureAuthorizer accepts a caller as an address when the context carries
// a proof signed by a key hashing to that address. Each challenge can be
// used once; consumed challenges are recorded in the store.
type SignatureAuthorizer struct {
	mu    sync.Mutex
	store kvstore.Store
	ttl   time.Duration
	now   func() time.Time
}

// Compile-time interface check.
var _ Authorizer = (*SignatureAuthorizer)(nil)

// SignatureOption configures a SignatureAuthorizer.
type SignatureOption func(*SignatureAuthorizer)

// WithChallengeTTL sets how long after issue a challenge is accepted.
func WithChallengeTTL(d time.Duration) SignatureOption {
	return func(a *SignatureAuthorizer) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithNow sets the authorizer's time source.
func WithNow(now func() time.Time) SignatureOption {
	return func(a *SignatureAuthorizer) { a.now = now }
}

// NewSignatureAuthorizer creates an authorizer recording challenges in store.
func NewSignatureAuthorizer(store kvstore.Store, opts ...SignatureOption) *SignatureAuthorizer {
	a := &SignatureAuthorizer{
		store: store,
		ttl:   DefaultChallengeTTL,
		now:   time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ChallengeTTL returns how long after issue a challenge is accepted.
func (a *SignatureAuthorizer) ChallengeTTL() time.Duration { return a.ttl }

// RequireAuth verifies the first proof in ctx whose key matches addr: the
// signature, the challenge's age and its binding to the operation and
// arguments recorded by WithOperation. The challenge is then spent.
func (a *SignatureAuthorizer) RequireAuth(ctx context.Context, addr Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	proof, pub, err := findProof(ctx, addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	c, err := parseChallenge(proof.Challenge)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	sig, err := ec.ParseDERSignature(proof.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrUnauthorized, ErrBadSignature, err)
	}
	if !sig.Verify(bsvhash.Sha256(proof.Challenge), pub) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, ErrBadSignature)
	}

	now := a.now()
	if now.Sub(c.issued) > a.ttl || c.issued.After(now.Add(MaxClockSkew)) {
		return fmt.Errorf("%w: %w: issued %s", ErrUnauthorized, ErrStaleChallenge, c.issued.UTC().Format(time.RFC3339))
	}

	if op, ok := operationFrom(ctx); ok {
		if c.op != op.name {
			return fmt.Errorf("%w: %w: want %q, got %q", ErrUnauthorized, ErrWrongOperation, op.name, c.op)
		}
		if !bytes.Equal(c.digest, op.digest) {
			return fmt.Errorf("%w: %w: arguments differ", ErrUnauthorized, ErrWrongOperation)
		}
	}

	return a.consume(proof.Challenge)
}

// findProof returns the proof whose public key hashes to addr.
func findProof(ctx context.Context, addr Address) (Proof, *ec.PublicKey, error) {
	for _, p := range ProofsFrom(ctx) {
		pub, err := ec.PublicKeyFromBytes(p.PublicKey)
		if err != nil {
			continue
		}
		if AddressFromPubKey(pub) == addr {
			return p, pub, nil
		}
	}
	return Proof{}, nil, fmt.Errorf("%w %s", ErrNoProof, addr)
}

// consume records the challenge digest, failing if it was seen before. The
// record outlives the window in which the challenge is fresh.
func (a *SignatureAuthorizer) consume(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := append(append([]byte(nil), usedPrefix...), bsvhash.Sha256(data)...)
	cs := kvstore.Begin(a.store, kvstore.WithClock(a.now), kvstore.WithMinTTL(a.ttl+2*MaxClockSkew))
	defer cs.Discard()

	seen, err := cs.Has(key)
	if err != nil {
		return fmt.Errorf("auth: check challenge: %w", err)
	}
	if seen {
		return fmt.Errorf("%w: %w", ErrUnauthorized, ErrReplayedChallenge)
	}
	if err := cs.Put(key, []byte{1}); err != nil {
		return fmt.Errorf("auth: record challenge: %w", err)
	}
	if err := cs.Commit(); err != nil {
		return fmt.Errorf("auth: record challenge: %w", err)
	}
	return nil
}

// MockAuthorizer is a test double for Authorizer. When Fn is set it decides
// every call; otherwise AllowAll or membership in Allowed decides.
type MockAuthorizer struct {
	Fn       func(ctx context.Context, addr Address) error
	AllowAll bool
	Allowed  map[Address]bool
}

// Compile-time interface check.
var _ Authorizer = (*MockAuthorizer)(nil)

// NewMockAuthorizer returns a mock that authorizes only addrs.
func NewMockAuthorizer(addrs ...Address) *MockAuthorizer {
	m := &MockAuthorizer{Allowed: make(map[Address]bool, len(addrs))}
	for _, a := range addrs {
		m.Allowed[a] = true
	}
	return m
}

// Allow adds addr to the allowed set.
func (m *MockAuthorizer) Allow(addr Address) {
	if m.Allowed == nil {
		m.Allowed = make(map[Address]bool)
	}
	m.Allowed[addr] = true
}

// Revoke removes addr from the allowed set.
func (m *MockAuthorizer) Revoke(addr Address) { delete(m.Allowed, addr) }

func (m *MockAuthorizer) RequireAuth(ctx context.Context, addr Address) error {
	if m.Fn != nil {
		return m.Fn(ctx, addr)
	}
	if m.AllowAll || m.Allowed[addr] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, addr)
}
