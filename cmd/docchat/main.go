// Package main provides the docchat CLI: corpus ingestion, an interactive
// grounded chat loop, and an MCP server surface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/embedding"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Conversational question answering over a document corpus",
	Long: `docchat ingests a document corpus into a vector index and answers
multi-turn questions grounded in the indexed content.

Environment variables:
  OPENAI_API_KEY OpenAI API key for embeddings and generation (required)
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  GITHUB_TOKEN   GitHub token for corpus loading (optional)`,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEmbedder builds the shared OpenAI client and the embedder on top of
// it. The same client also serves the chat model.
func newEmbedder() (*embedding.Client, *embedding.Embedder, error) {
	client, err := embedding.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return client, embedding.NewEmbedder(client, 0), nil
}

// newChatModel builds the chat model on the shared OpenAI client.
func newChatModel(client *embedding.Client) *llm.ChatModel {
	return llm.NewChatModel(client.Client(), getEnv("DOCCHAT_CHAT_MODEL", ""))
}

// newQdrantStore connects to qdrant and ensures the collection exists.
func newQdrantStore(cmd *cobra.Command) (*storage.QdrantStore, error) {
	host := getEnv("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)

	fmt.Fprintf(cmd.OutOrStdout(), "Connecting to Qdrant at %s:%d...\n", host, port)
	store, err := storage.NewQdrantStore(host, port)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := store.EnsureCollection(cmd.Context()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return store, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
