// Package auth authenticates users with Steam OpenID and carries the
// resulting identity in a signed session cookie.
package auth

import "context"

// Identity is the stable external user the tracking core keys ownership on.
type Identity struct {
	SteamID     string
	DisplayName string
	Avatar      string
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the request's identity, or nil when unauthenticated.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
