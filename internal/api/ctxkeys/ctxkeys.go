// Shared context keys for the API layer. Lives in a leaf package so api,
// middleware, and handlers can all import it without cycles.
package ctxkeys

import "context"

// Key is the named type for all API context keys. context.Value compares both
// type and value, so a named type cannot collide with plain string keys.
type Key string

const (
	// WorkspaceID is the context key for the active workspace.
	// Injected by AuthMiddleware from JWT claims, read by all handlers.
	WorkspaceID Key = "workspace_id"

	// UserID is the context key for the authenticated user.
	UserID Key = "user_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}
