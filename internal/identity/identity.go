// Package identity carries the owner of a request through a context.
package identity

import "context"

// DefaultOwner is used while the calendar serves a single demo user.
const DefaultOwner = "demo-user"

type ownerKey struct{}

func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

func Owner(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	return id, ok && id != ""
}
