package api

import (
	"context"
)

type keyType string

const identityKey keyType = "identity"

// Identity is the authenticated caller.
type Identity struct {
	ID    string
	Roles []string
}

func (i Identity) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range i.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ctxWithIdentity adds the caller identity to the context
func ctxWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity retrieves the caller identity, if authentication ran
func ctxGetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
