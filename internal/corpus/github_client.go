package corpus

import (
	"os"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// GitHubClient wraps the GitHub API client with rate limiting support.
type GitHubClient struct {
	*github.Client
}

// NewGitHubClient creates a GitHub client with automatic rate limit
// handling. When GITHUB_TOKEN is set the client authenticates for higher
// limits; anonymous access works for public repositories.
func NewGitHubClient() (*GitHubClient, error) {
	// Handles both primary rate limits and secondary (abuse detection)
	// limits with automatic waiting.
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, err
	}

	ghClient := github.NewClient(rateLimiter)

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &GitHubClient{Client: ghClient}, nil
}
