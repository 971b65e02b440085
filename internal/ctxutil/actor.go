// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the invoking user ID.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// InvocationKey is the context key for the per-command invocation ID.
type InvocationKey struct{}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithInvocationID returns a context tagged with a command invocation ID.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, InvocationKey{}, id)
}

// InvocationFromContext returns the invocation ID, or empty string if not set.
func InvocationFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(InvocationKey{}).(string); ok {
		return v
	}
	return ""
}
