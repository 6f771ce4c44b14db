package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client used for embedding generation. One client
// is created at startup and shared for the whole process lifetime; the
// same underlying client also serves the chat model.
type Client struct {
	client *openai.Client
}

// NewClient creates the OpenAI client. It fails fast when OPENAI_API_KEY
// is not set so misconfiguration surfaces before any pipeline work.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment
	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for reuse by the chat model.
func (c *Client) Client() *openai.Client {
	return c.client
}
