//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store against a local qdrant and ensures the
// collection exists. Skips when qdrant is not running.
func setupTestStore(t *testing.T) *QdrantStore {
	store, err := NewQdrantStore("localhost", 6334)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	err = store.EnsureCollection(context.Background())
	require.NoError(t, err, "Failed to ensure collection")

	return store
}

func testVector(fill float32) []float32 {
	v := make([]float32, VectorDimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestUpsertQueryRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	vectors := []IndexedVector{
		{
			ID:        "test/roundtrip.md#0",
			Embedding: testVector(0.1),
			Text:      "Round trip chunk content",
			SourceID:  "test/roundtrip.md",
		},
	}

	err := store.Upsert(ctx, vectors)
	require.NoError(t, err, "Failed to upsert vectors")

	hits, err := store.Query(ctx, testVector(0.1), 5)
	require.NoError(t, err, "Failed to query")
	require.NotEmpty(t, hits)

	assert.Equal(t, "Round trip chunk content", hits[0].Text)
	assert.Equal(t, "test/roundtrip.md", hits[0].SourceID)
	assert.Greater(t, hits[0].Score, 0.9, "identical vector should score near 1")
}

func TestUpsertIdempotent(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	vectors := []IndexedVector{
		{ID: "test/idem.md#0", Embedding: testVector(0.2), Text: "chunk a", SourceID: "test/idem.md"},
		{ID: "test/idem.md#800", Embedding: testVector(0.3), Text: "chunk b", SourceID: "test/idem.md"},
	}

	require.NoError(t, store.Upsert(ctx, vectors))
	before, err := store.Count(ctx)
	require.NoError(t, err)

	// Same stable IDs again: count must not change.
	require.NoError(t, store.Upsert(ctx, vectors))
	after, err := store.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after, "re-upsert with same IDs must not duplicate")
}

func TestDimensionValidation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	err := store.Upsert(ctx, []IndexedVector{
		{ID: "test/dim.md#0", Embedding: make([]float32, 8), Text: "x", SourceID: "test/dim.md"},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = store.Query(ctx, make([]float32, 8), 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
