package auth

import (
	"context"
	"encoding/binary"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// Authorizer checks that the caller of the current operation controls an
// identity. Implementations read whatever evidence they need from ctx.
type Authorizer interface {
	// RequireAuth returns nil if the caller proved control of addr, or an
	// error wrapping ErrUnauthorized otherwise.
	RequireAuth(ctx context.Context, addr Address) error
}

type operationKey struct{}

type operation struct {
	name   string
	digest []byte
}

// WithOperation records the operation being authorized and the arguments it
// will run with. Signature based authorizers only accept challenges issued
// for that operation and those exact arguments.
func WithOperation(ctx context.Context, op string, args ...[]byte) context.Context {
	return context.WithValue(ctx, operationKey{}, operation{name: op, digest: ArgsDigest(args...)})
}

// OperationFrom returns the operation name recorded by WithOperation.
func OperationFrom(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operationKey{}).(operation)
	return op.name, ok
}

func operationFrom(ctx context.Context) (operation, bool) {
	op, ok := ctx.Value(operationKey{}).(operation)
	return op, ok
}

// ArgsDigest returns SHA256 over the length-prefixed arguments. No arguments
// hash the empty input.
func ArgsDigest(args ...[]byte) []byte {
	var buf []byte
	for _, a := range args {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(a)))
		buf = append(buf, a...)
	}
	return bsvhash.Sha256(buf)
}
