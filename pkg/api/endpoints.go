package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/coo-registry/pkg/kit"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// Shared request/response types used by both HTTP and MCP transports.

// MaxBatchValues bounds one batch request.
const MaxBatchValues = 10000

var errTooManyValues = errors.New("too many values")

type resolveReq struct {
	Value resolve.Value
}

type batchReq struct {
	Values []resolve.Value
}

type endpoints struct {
	resolve    kit.Endpoint
	batch      kit.Endpoint
	vocabulary kit.Endpoint
}

func newEndpoints(e *resolve.Engine, logger *slog.Logger) endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	return endpoints{
		resolve:    wrap("resolve", resolveEndpoint(e)),
		batch:      wrap("resolve_batch", batchEndpoint(e)),
		vocabulary: wrap("vocabulary", vocabularyEndpoint(e)),
	}
}

func resolveEndpoint(e *resolve.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		return e.Resolve(req.Value), nil
	}
}

func batchEndpoint(e *resolve.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*batchReq)
		if len(req.Values) > MaxBatchValues {
			return nil, fmt.Errorf("%w (max %d, got %d)", errTooManyValues, MaxBatchValues, len(req.Values))
		}
		return e.RunBatch(req.Values), nil
	}
}

func vocabularyEndpoint(e *resolve.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return e.Info(), nil
	}
}
