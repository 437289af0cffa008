package kit

import "context"

// Endpoint is one registry action (resolve a value, run a batch, describe
// the vocabulary). The HTTP router and the MCP tools call the same set.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware decorates an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain applies mws around an Endpoint, mws[0] outermost. With no
// middlewares it returns the Endpoint unchanged.
func Chain(mws ...Middleware) Middleware {
	return func(ep Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			ep = mws[i](ep)
		}
		return ep
	}
}
