package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/coo-registry/pkg/kit"
	"github.com/hazyhaar/coo-registry/pkg/metrics"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

func newTestEngine(t *testing.T, opts ...resolve.Option) *resolve.Engine {
	t.Helper()
	b, err := vocab.NewBundle(&vocab.Manifest{ID: "test-coo", Version: "2024.1"},
		[]string{"France", "Viet Nam", "Germany", "Unknown"},
		map[string]string{"vietnam": "Viet Nam", "deutschland": "Germany"},
		nil)
	require.NoError(t, err)
	e, err := resolve.NewEngineFromBundle(b, opts...)
	require.NoError(t, err)
	return e
}

type recordJSON struct {
	Raw          *string `json:"raw_value"`
	FirstSegment *string `json:"first_segment"`
	Resolved     string  `json:"resolved_value"`
	Method       string  `json:"method"`
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestResolve(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})

	tests := []struct {
		path     string
		resolved string
		method   string
	}{
		{"/v1/resolve/France", "France", "exact"},
		{"/v1/resolve/The%20Vietnam", "Viet Nam", "normalised"},
		{"/v1/resolve/Made%20in%20Vietnam", "Unknown", "no_match"},
		{"/v1/resolve/Asia", "Unknown", "regional"},
		{"/v1/resolve/Germany%2C%20Bavaria", "Germany", "exact"},
		{"/v1/resolve/Atlantis", "Unknown", "no_match"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var got recordJSON
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.resolved, got.Resolved)
			assert.Equal(t, tt.method, got.Method)
		})
	}
}

func TestResolve_EscapedSlashIsKept(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})
	rec := get(t, h, "/v1/resolve/France%2FGermany")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recordJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Raw)
	assert.Equal(t, "France/Germany", *got.Raw)
	assert.Equal(t, "France", got.Resolved)
}

func TestBatch(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})

	body := `{"values": ["vietnam", null, "France", "vietnam", "Europe", ""]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/resolve/batch", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Records []recordJSON `json:"records"`
		Summary struct {
			Total        int            `json:"total"`
			Matched      int            `json:"matched_count"`
			Unknown      int            `json:"unknown_count"`
			MethodCounts map[string]int `json:"method_counts"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got.Records, 5)
	assert.Equal(t, "France", got.Records[0].Resolved)
	assert.Equal(t, "Viet Nam", got.Records[1].Resolved)
	assert.Equal(t, "", *got.Records[2].Raw)
	assert.Equal(t, "Europe", *got.Records[3].Raw)
	assert.Nil(t, got.Records[4].Raw)
	assert.Equal(t, "null", got.Records[4].Method)

	assert.Equal(t, 5, got.Summary.Total)
	assert.Equal(t, 2, got.Summary.Matched)
	assert.Equal(t, 3, got.Summary.Unknown)
	assert.Equal(t, 1, got.Summary.MethodCounts["alias"])
	assert.Equal(t, 0, got.Summary.MethodCounts["normalised"])
}

func TestBatch_Errors(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/resolve/batch", strings.NewReader(body)))
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post("{not json").Code)

	values := make([]string, MaxBatchValues+1)
	for i := range values {
		values[i] = "x"
	}
	data, err := json.Marshal(map[string]any{"values": values})
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(string(data)).Code)

	huge := `{"values": ["` + strings.Repeat("a", maxBodyBytes) + `"]}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(huge).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/resolve/batch", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestResolve_BatchIsAValue(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})
	rec := get(t, h, "/v1/resolve/batch")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recordJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Raw)
	assert.Equal(t, "batch", *got.Raw)
	assert.Equal(t, "no_match", got.Method)
	assert.Equal(t, "Unknown", got.Resolved)
}

func TestVocabularyAndHealth(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})

	rec := get(t, h, "/v1/vocabulary")
	require.Equal(t, http.StatusOK, rec.Code)
	var info resolve.BundleInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "test-coo", info.ID)
	assert.Equal(t, 4, info.Identifiers)
	assert.Equal(t, 2, info.Aliases)
	assert.Equal(t, len(vocab.DefaultRegionalTerms), info.Regional)

	rec = get(t, h, "/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test-coo", health.Bundle)
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestEngine(t, resolve.WithMetrics(metrics.New(reg)))

	assert.Equal(t, http.StatusNotFound, get(t, NewRouter(e, Options{}), "/metrics").Code)

	h := NewRouter(e, Options{Gatherer: reg})
	require.Equal(t, http.StatusOK, get(t, h, "/v1/resolve/France").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `coo_resolutions_total{method="exact"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(newTestEngine(t), Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/resolve/batch", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestDecodeResolveBatch(t *testing.T) {
	decoded, err := decodeResolveBatch(toolRequest(map[string]any{
		"values": "Germany, Bavaria\r\n\nvietnam\n  \n",
	}))
	require.NoError(t, err)
	req := decoded.Request.(*batchReq)
	assert.Equal(t, []resolve.Value{resolve.Of("Germany, Bavaria"), resolve.Of("vietnam")}, req.Values)

	_, err = decodeResolveBatch(toolRequest(map[string]any{"values": 3}))
	assert.Error(t, err)
}

func TestMCPTools(t *testing.T) {
	ep := newEndpoints(newTestEngine(t), nil)
	handle := kit.MCPHandler(ep.resolve, decodeResolveCountry)

	res, err := handle(context.Background(), toolRequest(map[string]any{"value": "The Deutschland"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var got recordJSON
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, "Germany", got.Resolved)
	assert.Equal(t, "normalised", got.Method)

	res, err = handle(context.Background(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
