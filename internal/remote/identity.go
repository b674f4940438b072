package remote

import (
	"context"
	"fmt"
)

// Identity is the authenticated caller every remote call is scoped to.
type Identity struct {
	Subject string
	Token   string
}

// IdentityProvider resolves the ambient caller identity. Resolution happens
// before any network I/O; a failure short-circuits the call with ErrAuth.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func(ctx context.Context) (Identity, error)

func (f IdentityFunc) Identity(ctx context.Context) (Identity, error) { return f(ctx) }

// StaticIdentity is a fixed bearer token, typically from configuration.
type StaticIdentity struct {
	Subject string
	Token   string
}

func (s StaticIdentity) Identity(context.Context) (Identity, error) {
	if s.Token == "" {
		return Identity{}, fmt.Errorf("%w: no token configured", ErrAuth)
	}
	return Identity{Subject: s.Subject, Token: s.Token}, nil
}
