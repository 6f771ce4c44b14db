package corpus

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Normalizer converts markdown sources into the plain text handed to the
// chunker, and extracts title/outline metadata for ingestion reporting.
type Normalizer struct {
	parser goldmark.Markdown
}

// NewNormalizer creates a Normalizer backed by a goldmark parser.
func NewNormalizer() *Normalizer {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Normalizer{
		parser: md,
	}
}

// PlainText strips markdown structure from source: heading markers, list
// bullets, emphasis, and link syntax are dropped while the readable text
// and code block contents survive. Blocks are separated by blank lines.
func (n *Normalizer) PlainText(source []byte) (string, error) {
	reader := text.NewReader(source)
	doc := n.parser.Parser().Parse(reader)

	var buf bytes.Buffer
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		// Blank line between top-level blocks.
		if node.Type() == ast.TypeBlock && node.Kind() != ast.KindDocument && buf.Len() > 0 {
			if !bytes.HasSuffix(buf.Bytes(), []byte("\n\n")) {
				buf.WriteString("\n\n")
			}
		}

		switch node.Kind() {
		case ast.KindText:
			t := node.(*ast.Text)
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case ast.KindCodeBlock, ast.KindFencedCodeBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				buf.Write(seg.Value(source))
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Outline returns the H1/H2 section titles of the document in order.
// Empty for documents without headers.
func (n *Normalizer) Outline(source []byte) ([]string, error) {
	reader := text.NewReader(source)
	doc := n.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	var titles []string
	collectTitles(tree.Items, &titles)
	return titles, nil
}

// Title returns the document's first top-level heading, or "" when the
// document has none.
func (n *Normalizer) Title(source []byte) (string, error) {
	titles, err := n.Outline(source)
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return "", nil
	}
	return titles[0], nil
}

func collectTitles(items toc.Items, out *[]string) {
	for _, item := range items {
		*out = append(*out, string(item.Title))
		if len(item.Items) > 0 {
			collectTitles(item.Items, out)
		}
	}
}
