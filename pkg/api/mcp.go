package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/coo-registry/pkg/kit"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// RegisterMCPTools registers the resolution tools on the server.
func RegisterMCPTools(srv *server.MCPServer, e *resolve.Engine, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ep := newEndpoints(e, logger)

	kit.RegisterMCPTool(srv, mcp.NewTool("resolve_country",
		mcp.WithDescription("Resolve one free-text country-of-origin value to a canonical country identifier, or Unknown."),
		mcp.WithString("value", mcp.Required(), mcp.Description("The raw value, e.g. \"Germany, Bavaria\"")),
	), ep.resolve, decodeResolveCountry)

	kit.RegisterMCPTool(srv, mcp.NewTool("resolve_batch",
		mcp.WithDescription(fmt.Sprintf("Resolve up to %d raw values and return the deduplicated mapping with a summary.", MaxBatchValues)),
		mcp.WithString("values", mcp.Required(), mcp.Description("Raw values, one per line. Commas are kept as part of a value.")),
	), ep.batch, decodeResolveBatch)

	kit.RegisterMCPTool(srv, mcp.NewTool("vocabulary_info",
		mcp.WithDescription("Describe the loaded country bundle (id, version, source, entry counts)."),
	), ep.vocabulary, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func decodeResolveCountry(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	value, ok := req.GetArguments()["value"].(string)
	if !ok {
		return nil, fmt.Errorf("value must be a string")
	}
	return &kit.MCPDecodeResult{Request: &resolveReq{Value: resolve.Of(value)}}, nil
}

// decodeResolveBatch splits on newlines; blank lines are skipped.
func decodeResolveBatch(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	raw, ok := req.GetArguments()["values"].(string)
	if !ok {
		return nil, fmt.Errorf("values must be a string")
	}
	var values []resolve.Value
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		values = append(values, resolve.Of(line))
	}
	return &kit.MCPDecodeResult{Request: &batchReq{Values: values}}, nil
}
