package corpus

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/docchat/docchat/internal/domain"
)

// GitHubLoader loads markdown documents from a directory of a GitHub
// repository. SourceID is "owner/repo/path".
type GitHubLoader struct {
	client   *GitHubClient
	owner    string
	repo     string
	basePath string
	norm     *Normalizer
}

// NewGitHubLoader creates a loader over owner/repo rooted at basePath.
func NewGitHubLoader(client *GitHubClient, owner, repo, basePath string) *GitHubLoader {
	return &GitHubLoader{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
		norm:     NewNormalizer(),
	}
}

// Load lists all markdown files under the base path and fetches each one
// as a normalized Document.
func (l *GitHubLoader) Load(ctx context.Context) ([]domain.Document, error) {
	paths, err := l.listMarkdown(ctx, l.basePath, "")
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, rel := range paths {
		doc, err := l.fetch(ctx, rel)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// listMarkdown recursively collects .md paths relative to the base path.
func (l *GitHubLoader) listMarkdown(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var out []string

	_, dirContents, _, err := l.client.Repositories.GetContents(ctx, l.owner, l.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}

		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if strings.HasSuffix(*item.Name, ".md") {
				out = append(out, itemRelPath)
			}
		case "dir":
			itemFullPath := path.Join(fullPath, *item.Name)
			sub, err := l.listMarkdown(ctx, itemFullPath, itemRelPath)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	return out, nil
}

// fetch retrieves and normalizes one markdown file.
func (l *GitHubLoader) fetch(ctx context.Context, relativePath string) (domain.Document, error) {
	fullPath := path.Join(l.basePath, relativePath)

	fileContent, _, _, err := l.client.Repositories.GetContents(ctx, l.owner, l.repo, fullPath, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return domain.Document{}, fmt.Errorf("no file content returned for %s", fullPath)
	}

	raw, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to decode content of %s: %w", fullPath, err)
	}

	text, err := l.norm.PlainText(raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("normalize %s: %w", fullPath, err)
	}
	title, err := l.norm.Title(raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract title of %s: %w", fullPath, err)
	}

	return domain.Document{
		SourceID: path.Join(l.owner, l.repo, fullPath),
		Title:    title,
		Text:     text,
	}, nil
}
