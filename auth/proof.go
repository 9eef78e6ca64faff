package auth

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/google/uuid"
)

// Proof is a signature by a key over a one-time challenge.
type Proof struct {
	PublicKey []byte // Compressed secp256k1 public key
	Challenge []byte // Challenge issued by NewChallenge
	Signature []byte // DER signature over SHA256(Challenge)
}

// NewChallenge returns a fresh challenge for op with the given arguments,
// issued now.
func NewChallenge(op string, args ...[]byte) []byte {
	return NewChallengeAt(op, time.Now(), args...)
}

// NewChallengeAt returns a challenge issued at the given time. The layout is
// op/issued-unix-nanos/hex(ArgsDigest(args))/nonce.
func NewChallengeAt(op string, issued time.Time, args ...[]byte) []byte {
	return []byte(op + "/" +
		strconv.FormatInt(issued.UnixNano(), 10) + "/" +
		hex.EncodeToString(ArgsDigest(args...)) + "/" +
		uuid.NewString())
}

type challenge struct {
	op     string
	issued time.Time
	digest []byte
}

func parseChallenge(data []byte) (challenge, error) {
	parts := bytes.Split(data, []byte("/"))
	if len(parts) != 4 || len(parts[0]) == 0 || len(parts[3]) == 0 {
		return challenge{}, fmt.Errorf("%w: want 4 fields", ErrMalformedChallenge)
	}
	nanos, err := strconv.ParseInt(string(parts[1]), 10, 64)
	if err != nil {
		return challenge{}, fmt.Errorf("%w: issue time: %w", ErrMalformedChallenge, err)
	}
	digest, err := hex.DecodeString(string(parts[2]))
	if err != nil {
		return challenge{}, fmt.Errorf("%w: digest: %w", ErrMalformedChallenge, err)
	}
	return challenge{op: string(parts[0]), issued: time.Unix(0, nanos), digest: digest}, nil
}

// Sign produces a proof that priv controls AddressFromPubKey(priv.PubKey()).
func Sign(priv *ec.PrivateKey, challenge []byte) (Proof, error) {
	if priv == nil {
		return Proof{}, fmt.Errorf("%w: private key", ErrNilParam)
	}
	sig, err := priv.Sign(bsvhash.Sha256(challenge))
	if err != nil {
		return Proof{}, fmt.Errorf("auth: sign challenge: %w", err)
	}
	return Proof{
		PublicKey: priv.PubKey().Compressed(),
		Challenge: append([]byte(nil), challenge...),
		Signature: sig.Serialize(),
	}, nil
}

type proofsKey struct{}

// WithProofs attaches proofs to ctx, appending to any already present.
func WithProofs(ctx context.Context, proofs ...Proof) context.Context {
	existing := ProofsFrom(ctx)
	all := make([]Proof, 0, len(existing)+len(proofs))
	all = append(all, existing...)
	all = append(all, proofs...)
	return context.WithValue(ctx, proofsKey{}, all)
}

// ProofsFrom returns the proofs attached to ctx.
func ProofsFrom(ctx context.Context) []Proof {
	proofs, _ := ctx.Value(proofsKey{}).([]Proof)
	return proofs
}
