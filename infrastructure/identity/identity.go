// Package identity resolves the calling user from the request context.
package identity

import "context"

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// ContextIdentity reads the authenticated user from the context, as set by
// the HTTP auth middleware.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}
	return ""
}
