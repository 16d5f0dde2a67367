package authkit

import "context"

type clientOriginContextKey struct{}

// WithClientOrigin attaches the caller's origin (an IP address or
// device identifier) to ctx. The Gateway combines it with the
// username to form the rate-limit key and records it in audit events.
// An absent origin still rate-limits per username alone.
func WithClientOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, clientOriginContextKey{}, origin)
}

func clientOriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	origin, _ := ctx.Value(clientOriginContextKey{}).(string)
	return origin
}

type sessionContextKey struct{}

// WithSessionContext attaches the client-context identifier that
// selects the session slot (a device ID, a browser session cookie, or
// any stable per-client key). Logins carrying different identifiers
// hold independent snapshots; an absent identifier selects the
// default slot.
func WithSessionContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, id)
}

func sessionContextFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(sessionContextKey{}).(string)
	return id
}
