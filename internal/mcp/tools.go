package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", retriever.DefaultTopK)
	if limit < 1 || limit > retriever.MaxTopK {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", retriever.MaxTopK), map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	resp, err := s.retriever.Search(ctx, retriever.SearchRequest{Query: query, TopK: limit})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"path":        r.SourcePath,
			"chunk_index": r.ChunkIndex,
			"text":        r.Text,
			"score":       r.Score,
			"stale":       r.Stale,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":       query,
		"results":     results,
		"duration_ms": resp.Duration.Milliseconds(),
	})), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	includeFiles := getBoolDefault(args, "include_files", false)

	files, err := s.tracker.ListFiles(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list tracked files", map[string]interface{}{
			"error": err.Error(),
		})
	}
	pending, err := s.tracker.ListPendingPurges(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list pending purges", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var indexed, failed, other int
	var chunks int
	for _, f := range files {
		switch f.Status {
		case types.StatusIndexed:
			indexed++
		case types.StatusFailed:
			failed++
		default:
			other++
		}
		chunks += len(f.ChunkIDs)
	}

	response := map[string]interface{}{
		"files_total":    len(files),
		"files_indexed":  indexed,
		"files_failed":   failed,
		"files_pending":  other,
		"chunks_total":   chunks,
		"pending_purges": len(pending),
	}

	if includeFiles {
		listing := make([]map[string]interface{}, 0, len(files))
		for _, f := range files {
			entry := map[string]interface{}{
				"path":   f.Path,
				"status": string(f.Status),
				"chunks": len(f.ChunkIDs),
			}
			if f.FailReason != "" {
				entry["fail_reason"] = f.FailReason
			}
			listing = append(listing, entry)
		}
		response["files"] = listing
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handlePurgePending handles the purge_pending tool invocation
func (s *Server) handlePurgePending(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	purged, err := s.engine.PurgePending(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "purge failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"purged": purged,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
