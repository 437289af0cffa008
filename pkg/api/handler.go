package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/coo-registry/pkg/kit"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

const maxBodyBytes = 1 << 20

// Options configures the router. A nil Gatherer disables /metrics.
type Options struct {
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
}

// NewRouter returns an http.Handler with all resolution API routes.
func NewRouter(e *resolve.Engine, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{endpoints: newEndpoints(e, logger), engine: e}

	mux.HandleFunc("POST /v1/resolve/batch", h.handleBatch)
	mux.HandleFunc("GET /v1/resolve/{value}", h.handleResolve)
	mux.HandleFunc("GET /v1/vocabulary", h.handleVocabulary)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return cors(mux)
}

type handler struct {
	endpoints
	engine *resolve.Engine
}

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	resp, err := h.resolve(withRequestID(r), &resolveReq{Value: resolve.Of(r.PathValue("value"))})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type httpBatchRequest struct {
	Values []resolve.Value `json:"values"`
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.batch(withRequestID(r), &batchReq{Values: req.Values})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, errTooManyValues) {
			code = http.StatusRequestEntityTooLarge
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.vocabulary(withRequestID(r), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status      string `json:"status"`
	Bundle      string `json:"bundle"`
	Version     string `json:"version,omitempty"`
	Identifiers int    `json:"identifiers"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := h.engine.Info()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Bundle:      info.ID,
		Version:     info.Version,
		Identifiers: info.Identifiers,
	})
}

// withRequestID carries a client supplied X-Request-ID into the endpoint.
func withRequestID(r *http.Request) context.Context {
	ctx := kit.WithTransport(r.Context(), kit.TransportHTTP)
	if id := r.Header.Get("X-Request-ID"); id != "" {
		ctx = kit.WithRequestID(ctx, id)
	}
	return ctx
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
