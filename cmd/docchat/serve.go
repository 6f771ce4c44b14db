package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/mcpserver"
)

var (
	serveHTTP bool
	serveTopK int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over the indexed corpus",
	Long: `Exposes the query pipeline as MCP tools (ask_corpus, search_corpus,
index_status). Default transport is stdio with a background health
endpoint; --http serves MCP over HTTP for remote clients.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve MCP over HTTP instead of stdio")
	serveCmd.Flags().IntVar(&serveTopK, "top-k", 5, "number of chunks retrieved per question")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	port := getEnv("PORT", "8080")

	store, err := newQdrantStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	client, embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	model := newChatModel(client)

	pipeline, err := chat.NewPipeline(model, embedder, store, serveTopK, slog.Default())
	if err != nil {
		return err
	}

	server := mcpserver.NewServer(&mcpserver.Config{
		Pipeline: pipeline,
		Embedder: embedder,
		Store:    store,
		Counter:  store,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	addr := "0.0.0.0:" + port

	if serveHTTP {
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		return http.ListenAndServe(addr, mux)
	}

	// Stdio mode: health endpoint still runs in the background for local
	// checks.
	go func() {
		log.Printf("Starting health server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	log.Println("Starting docchat MCP server (stdio mode)...")
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
