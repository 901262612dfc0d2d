// Package mcp implements the Model Context Protocol (MCP) server for ragwatch.
//
// The server exposes three tools to MCP clients:
//   - search_documents: query the document index with natural language
//   - index_status: report per-file indexing state and pending cleanup
//   - purge_pending: retry vector-store deletions that failed earlier
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is typically started via the mcp command:
//
//	ragwatch mcp
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: search_documents
//
//	Request:
//	{
//	  "name": "search_documents",
//	  "arguments": {"query": "notes about goroutines", "limit": 5}
//	}
//
//	Response: ranked chunks with source path, score, and a stale flag for
//	results whose source file is failed or no longer tracked.
//
// # Tool: index_status
//
//	Request:
//	{
//	  "name": "index_status",
//	  "arguments": {"include_files": true}
//	}
//
//	Response: counts by status, total chunks, pending purge count, and
//	optionally the per-file listing with failure reasons.
//
// # Tool: purge_pending
//
//	Request:
//	{
//	  "name": "purge_pending",
//	  "arguments": {}
//	}
//
//	Response: the number of chunk IDs removed from the vector store.
package mcp
