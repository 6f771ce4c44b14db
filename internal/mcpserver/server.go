package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docchat/docchat/internal/chat"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server   *mcp.Server
	sessions *SessionStore
}

// Config holds server dependencies.
type Config struct {
	Pipeline *chat.Pipeline
	Embedder chat.QueryEmbedder
	Store    chat.SearchStore
	Counter  Counter
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "docchat-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)
	sessions := NewSessionStore()

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_corpus",
		Description: "Ask a question answered from the indexed document corpus. Supports multi-turn conversations via the session parameter.",
	}, makeAskHandler(cfg.Pipeline, sessions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_corpus",
		Description: "Semantic search over the indexed corpus. Returns raw scored chunks without answer generation.",
	}, makeSearchHandler(cfg.Embedder, cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get the number of indexed chunks in the vector store.",
	}, makeStatusHandler(cfg.Counter))

	return &Server{
		server:   server,
		sessions: sessions,
	}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
