// Package chunker splits document text into overlapping fixed-size
// segments. Boundaries are byte positions and do not respect sentence or
// paragraph structure.
package chunker

import (
	"fmt"

	"github.com/docchat/docchat/internal/domain"
)

const (
	// DefaultChunkSize is the segment length used when callers pass no
	// explicit chunking parameters.
	DefaultChunkSize = 1000

	// DefaultOverlap is the shared context between consecutive segments.
	DefaultOverlap = 200
)

// Split scans the document left to right emitting segments of at most size
// bytes, each starting size-overlap bytes after the previous one. The final
// segment is truncated to the remaining text; a segment that would add no
// new text beyond the previous one is not emitted. An empty document yields
// zero chunks.
//
// Size, overlap, and chunk offsets are all byte counts, not rune counts.
// A window edge may fall inside a multi-byte rune; the overlap region of
// the next chunk carries the intact rune. Offsets for a given document and
// parameters are identical across runs.
//
// Returns a *domain.ConfigError when size or overlap is out of range.
func Split(doc domain.Document, size, overlap int) ([]domain.Chunk, error) {
	if size <= 0 {
		return nil, &domain.ConfigError{Param: "chunkSize", Reason: fmt.Sprintf("must be positive, got %d", size)}
	}
	if overlap < 0 || overlap >= size {
		return nil, &domain.ConfigError{Param: "overlap", Reason: fmt.Sprintf("must satisfy 0 <= overlap < chunkSize, got %d", overlap)}
	}

	text := doc.Text
	step := size - overlap

	var chunks []domain.Chunk
	for offset := 0; offset < len(text); offset += step {
		end := offset + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, domain.Chunk{
			SourceID: doc.SourceID,
			Text:     text[offset:end],
			Offset:   offset,
			Length:   end - offset,
		})
		if end == len(text) {
			break
		}
	}

	return chunks, nil
}
