package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/internal/syncer"
	"github.com/sechaba/ragwatch/internal/tracker"
)

const (
	// ServerName is the MCP server name
	ServerName = "ragwatch"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the document index over the Model Context Protocol so
// editors and agents can query it
type Server struct {
	mcp       *server.MCPServer
	retriever *retriever.Retriever
	tracker   tracker.Tracker
	engine    *syncer.Engine
	logger    *log.Logger
}

// NewServer creates an MCP server over already-constructed components
func NewServer(r *retriever.Retriever, tr tracker.Tracker, eng *syncer.Engine, logger *log.Logger) *Server {
	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		retriever: r,
		tracker:   tr,
		engine:    eng,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio and blocks until the client disconnects
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio", "name", ServerName)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
	s.mcp.AddTool(purgePendingTool(), s.handlePurgePending)
}
