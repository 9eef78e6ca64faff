package auth

import "errors"

var (
	// ErrUnauthorized indicates the caller did not prove control of the identity.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrNoProof indicates the context carries no proof for the identity.
	ErrNoProof = errors.New("auth: no proof for address")

	// ErrBadSignature indicates a proof signature does not verify.
	ErrBadSignature = errors.New("auth: signature verification failed")

	// ErrReplayedChallenge indicates the challenge was already consumed.
	ErrReplayedChallenge = errors.New("auth: challenge already used")

	// ErrWrongOperation indicates the challenge was issued for a different
	// operation or different arguments.
	ErrWrongOperation = errors.New("auth: challenge does not match operation")

	// ErrStaleChallenge indicates the challenge is older than the challenge
	// TTL or issued in the future.
	ErrStaleChallenge = errors.New("auth: challenge expired")

	// ErrMalformedChallenge indicates a challenge not produced by NewChallenge.
	ErrMalformedChallenge = errors.New("auth: malformed challenge")

	// ErrInvalidAddress indicates an address string is malformed.
	ErrInvalidAddress = errors.New("auth: invalid address")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("auth: required parameter is nil")
)
