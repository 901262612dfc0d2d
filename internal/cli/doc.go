// Package cli defines the ragwatch command tree: watch (continuous sync),
// scan (one-shot reconcile), query, chat, status, db, and mcp. Commands
// share a config file, a .env-aware environment, and a stderr logger so
// stdout stays clean for output and the MCP protocol.
package cli
