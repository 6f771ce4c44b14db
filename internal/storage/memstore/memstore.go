// Package memstore provides an in-process vector store with the same
// upsert/query contract as the qdrant backend. It backs tests and the
// zero-dependency "--store memory" mode; nothing persists across restarts.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docchat/docchat/internal/domain"
	"github.com/docchat/docchat/internal/storage"
)

// Store keeps indexed vectors in a map keyed by stable ID and ranks
// queries by cosine similarity.
type Store struct {
	dim     int
	mtx     sync.RWMutex
	records map[string]storage.IndexedVector
}

// New creates an empty store. The dimension is fixed per instance and
// every upserted or queried vector must match it.
func New(dim int) *Store {
	return &Store{
		dim:     dim,
		records: make(map[string]storage.IndexedVector),
	}
}

// Upsert stores vectors by ID, overwriting existing entries with the same
// key.
func (s *Store) Upsert(ctx context.Context, vectors []storage.IndexedVector) error {
	for i, v := range vectors {
		if len(v.Embedding) != s.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				storage.ErrDimensionMismatch, i, len(v.Embedding), s.dim)
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, v := range vectors {
		cpy := make([]float32, len(v.Embedding))
		copy(cpy, v.Embedding)
		v.Embedding = cpy
		s.records[v.ID] = v
	}

	return nil
}

// Query returns up to topK records ordered by descending cosine
// similarity. Fewer matches than topK is not an error.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) (domain.RetrievalResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			storage.ErrDimensionMismatch, len(vector), s.dim)
	}
	if topK < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	hits := make(domain.RetrievalResult, 0, len(s.records))
	for _, rec := range s.records {
		hits = append(hits, domain.ScoredChunk{
			Text:     rec.Text,
			SourceID: rec.SourceID,
			Score:    cosineSimilarity(vector, rec.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}

	return hits, nil
}

// Count returns the number of stored vectors.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return uint64(len(s.records)), nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
