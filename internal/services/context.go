package services

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	remotePathKey contextKey = "remote_path"
)

// WithRequestID annotates context with a sync-pass correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRemotePath annotates context with the remote entry being processed.
func WithRemotePath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, remotePathKey, path)
}

// RemotePathFromContext extracts the remote entry path if present.
func RemotePathFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(remotePathKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
