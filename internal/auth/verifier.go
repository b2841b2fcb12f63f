// Package auth implements the access gate: resolving a bearer credential
// into a caller identity with an admin flag.  Verification is pluggable
// so the fixed sentinel tokens used in development and the real JWT
// verification can coexist behind one interface.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when a credential cannot be resolved to an
// identity.  The middleware translates it into HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the resolved caller of a request.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Verifier resolves a bearer credential into an identity or fails with
// ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// Chain tries each verifier in order and returns the first identity.
// It fails only when every verifier rejects the credential.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, credential string) (Identity, error) {
	for _, v := range c {
		if id, err := v.Verify(ctx, credential); err == nil {
			return id, nil
		}
	}
	return Identity{}, ErrUnauthorized
}
