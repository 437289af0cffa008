package kit

import "context"

// Transport names the surface a resolve call arrived on. It is logged with
// every endpoint call.
type Transport string

const (
	TransportHTTP Transport = "http"
	TransportMCP  Transport = "mcp"
)

type ctxKey int

const (
	transportKey ctxKey = iota
	requestIDKey
)

// WithTransport tags ctx with the surface serving the call.
func WithTransport(ctx context.Context, t Transport) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// TransportOf reports the surface ctx was tagged with, TransportHTTP if none.
func TransportOf(ctx context.Context) Transport {
	if t, ok := ctx.Value(transportKey).(Transport); ok {
		return t
	}
	return TransportHTTP
}

// WithRequestID attaches the id used to correlate a resolve call's log
// lines and history rows.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDOf(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
