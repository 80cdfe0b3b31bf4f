// internal/pkg/reqctx/reqctx.go
package reqctx

import "context"

type contextKey string

const clientLocationKey contextKey = "client_location"

// WithClientLocation records the UI location the request came from, so
// an auth failure can send the user back there after re-login
func WithClientLocation(ctx context.Context, location string) context.Context {
	if location == "" {
		return ctx
	}
	return context.WithValue(ctx, clientLocationKey, location)
}

// ClientLocation returns the recorded UI location, "" when unknown
func ClientLocation(ctx context.Context) string {
	if v, ok := ctx.Value(clientLocationKey).(string); ok {
		return v
	}
	return ""
}
