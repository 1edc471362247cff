package wazero

import (
	"context"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var guestNameKey = &contextKey{name: "guest_name"}

// WithGuestName adds the guest name to the context. The adapter includes it
// in the attributes of every failure it logs.
func WithGuestName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, guestNameKey, name)
}

// GuestNameFromContext retrieves the guest name from the context.
func GuestNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(guestNameKey).(string)
	return name, ok
}

// guestName extracts the guest name from ctx, falling back to the module name.
func guestName(ctx context.Context, mod Module) string {
	if name, ok := GuestNameFromContext(ctx); ok {
		return name
	}
	if named, ok := mod.(interface{ Name() string }); ok && named.Name() != "" {
		return named.Name()
	}
	return "unknown"
}
