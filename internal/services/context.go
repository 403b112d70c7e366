package services

import "context"

type contextKey string

const (
	treeIDKey    contextKey = "tree_id"
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "request_id"
)

// WithTreeID annotates context with the tree record identifier.
func WithTreeID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, treeIDKey, id)
}

// TreeIDFromContext extracts the tree record identifier if present.
func TreeIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(treeIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithActor annotates context with the acting user identifier.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting user identifier if present.
func ActorFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
