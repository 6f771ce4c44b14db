// Package corpus loads documents from a local directory or a GitHub
// repository and normalizes them into the plain text the ingestion
// pipeline consumes. Markdown is handled natively; everything else is
// read as plain text.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docchat/docchat/internal/domain"
)

// DirLoader loads .md and .txt files from a directory tree. SourceID is
// the path relative to the root.
type DirLoader struct {
	root string
	norm *Normalizer
}

// NewDirLoader creates a loader over the given directory.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{
		root: root,
		norm: NewNormalizer(),
	}
}

// Load walks the directory and returns one Document per supported file.
func (l *DirLoader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(l.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		text := string(raw)
		var title string
		if ext == ".md" {
			text, err = l.norm.PlainText(raw)
			if err != nil {
				return fmt.Errorf("normalize %s: %w", path, err)
			}
			title, err = l.norm.Title(raw)
			if err != nil {
				return fmt.Errorf("extract title of %s: %w", path, err)
			}
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			rel = path
		}

		docs = append(docs, domain.Document{
			SourceID: filepath.ToSlash(rel),
			Title:    title,
			Text:     text,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}

	return docs, nil
}
